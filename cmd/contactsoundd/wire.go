package main

import (
	"encoding/json"
	"fmt"

	"github.com/opd-ai/contactsound/pkg/telemetry"
)

// wireFrame is the JSON shape one telemetry tick is sent/received as over
// the JSONL feed or websocket endpoint. It exists only in this command: the
// engine and telemetry packages stay transport-agnostic.
type wireFrame struct {
	Records []wireRecord `json:"records"`
}

type wireRecord struct {
	Kind string `json:"kind"`

	ObjectID  int `json:"object_id,omitempty"`
	ObjectIDA int `json:"object_id_a,omitempty"`
	ObjectIDB int `json:"object_id_b,omitempty"`
	RobotID   int `json:"robot_id,omitempty"`
	JointID   int `json:"joint_id,omitempty"`

	Name string  `json:"name,omitempty"`
	Mass float64 `json:"mass,omitempty"`

	Category string `json:"category,omitempty"`

	Velocity        telemetry.Vec3  `json:"velocity,omitempty"`
	AngularVelocity telemetry.Vec3  `json:"angular_velocity,omitempty"`
	Sleeping        bool            `json:"sleeping,omitempty"`
	Joints          map[int]float64 `json:"joints,omitempty"`

	State         string          `json:"state,omitempty"`
	RelativeVel   telemetry.Vec3  `json:"relative_vel,omitempty"`
	AngularVel    telemetry.Vec3  `json:"angular_vel,omitempty"`
	Normals       []telemetry.Vec3 `json:"normals,omitempty"`
	ContactPoints []telemetry.Vec3 `json:"contact_points,omitempty"`
	Impulse       float64          `json:"impulse,omitempty"`
}

func parseState(s string) (telemetry.CollisionState, error) {
	switch s {
	case "enter", "":
		return telemetry.Enter, nil
	case "stay":
		return telemetry.Stay, nil
	case "exit":
		return telemetry.Exit, nil
	default:
		return 0, fmt.Errorf("wire: unknown collision state %q", s)
	}
}

func (wr wireRecord) toRecord() (telemetry.Record, error) {
	switch wr.Kind {
	case "rigid_body":
		return telemetry.RigidBody{
			ObjectID:        wr.ObjectID,
			Velocity:        wr.Velocity,
			AngularVelocity: wr.AngularVelocity,
			Sleeping:        wr.Sleeping,
		}, nil
	case "robot_joint_velocity":
		return telemetry.RobotJointVelocity{
			RobotID:  wr.RobotID,
			JointID:  wr.JointID,
			Velocity: wr.Velocity,
		}, nil
	case "static_rigid_body":
		return telemetry.StaticRigidBody{
			ObjectID: wr.ObjectID,
			Name:     wr.Name,
			Mass:     wr.Mass,
		}, nil
	case "static_robot":
		return telemetry.StaticRobot{
			RobotID: wr.RobotID,
			Joints:  wr.Joints,
		}, nil
	case "segmentation":
		return telemetry.Segmentation{
			ObjectID: wr.ObjectID,
			Category: wr.Category,
		}, nil
	case "collision":
		state, err := parseState(wr.State)
		if err != nil {
			return nil, err
		}
		return telemetry.Collision{
			ObjectIDA:     wr.ObjectIDA,
			ObjectIDB:     wr.ObjectIDB,
			State:         state,
			RelativeVel:   wr.RelativeVel,
			AngularVel:    wr.AngularVel,
			Normals:       wr.Normals,
			ContactPoints: wr.ContactPoints,
			Impulse:       wr.Impulse,
		}, nil
	case "environment_collision":
		state, err := parseState(wr.State)
		if err != nil {
			return nil, err
		}
		return telemetry.EnvironmentCollision{
			ObjectID:      wr.ObjectID,
			State:         state,
			RelativeVel:   wr.RelativeVel,
			AngularVel:    wr.AngularVel,
			Normals:       wr.Normals,
			ContactPoints: wr.ContactPoints,
			Impulse:       wr.Impulse,
		}, nil
	default:
		return nil, fmt.Errorf("wire: unknown record kind %q", wr.Kind)
	}
}

// decodeFrame parses one JSONL line into a telemetry.Frame.
func decodeFrame(line []byte) (telemetry.Frame, error) {
	var wf wireFrame
	if err := json.Unmarshal(line, &wf); err != nil {
		return nil, fmt.Errorf("wire: invalid frame: %w", err)
	}
	frame := make(telemetry.Frame, 0, len(wf.Records))
	for _, wr := range wf.Records {
		rec, err := wr.toRecord()
		if err != nil {
			return nil, err
		}
		frame = append(frame, rec)
	}
	return frame, nil
}
