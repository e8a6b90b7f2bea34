package modal

import (
	"github.com/mjibson/go-dsp/fft"
)

// Convolve performs linear convolution of a and b via zero-padded FFT
// multiplication, mirroring a single fftconvolve call: the output has
// length len(a)+len(b)-1.
func Convolve(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	n := len(a) + len(b) - 1
	size := nextPow2(n)

	fa := make([]complex128, size)
	fb := make([]complex128, size)
	for i, v := range a {
		fa[i] = complex(v, 0)
	}
	for i, v := range b {
		fb[i] = complex(v, 0)
	}

	fa = fft.FFT(fa)
	fb = fft.FFT(fb)

	prod := make([]complex128, size)
	for i := range prod {
		prod[i] = fa[i] * fb[i]
	}

	res := fft.IFFT(prod)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = real(res[i])
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
