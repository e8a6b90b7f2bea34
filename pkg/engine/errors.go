package engine

import "errors"

// ErrConfigInvalid is returned by New/Reset when construction parameters
// violate their invariants. It is fatal: the engine is not usable.
var ErrConfigInvalid = errors.New("engine: invalid configuration")

// ErrMissingMaterialData is returned by New when the mode bank cannot
// supply data for a required material/size pair. It is fatal.
var ErrMissingMaterialData = errors.New("engine: missing material mode data")

// ErrUnknownObject marks a per-frame event whose primary object, or whose
// secondary object in an object-object collision, has no cached static
// record. OnFrame catches it internally and
// silently skips the event; it is never returned to the caller.
var ErrUnknownObject = errors.New("engine: unknown object")

// ErrSynthesisEmpty marks a per-frame event where modal synthesis had
// nothing to render. OnFrame catches it internally, logs it when
// Config.Logging is set, and skips the event.
var ErrSynthesisEmpty = errors.New("engine: synthesis produced no samples")

// ErrScrapeTermination marks a scrape pair whose relative slide has
// stopped. OnFrame catches it internally, deletes the pair's state, and
// emits no command.
var ErrScrapeTermination = errors.New("engine: scrape pair terminated")
