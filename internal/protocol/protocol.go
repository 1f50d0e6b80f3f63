// Package protocol encodes and decodes the simulator's JSON messages.
//
// Inbound messages have the shape {"Type": ..., "Content": ...} and are
// validated against an embedded JSON Schema before decoding. Outbound
// messages use lower-case keys: {"type": ..., "content": ...}.
package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/sensor"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformed wraps every decoding and validation failure.
var ErrMalformed = errors.New("protocol: malformed message")

// Kind is the inbound message type.
type Kind string

const (
	KindSensor       Kind = "sensor"
	KindSimControl   Kind = "sim_control"
	KindAgentControl Kind = "agent_control"
)

// Simulation control values.
const (
	ControlReady = "connection_ready"
	ControlHold  = "on_hold"
	ControlStart = "start"
	ControlError = "error"
)

// Message is a decoded inbound message. Exactly one of Sensor, Control and
// Directive is set, according to Kind.
type Message struct {
	Kind      Kind
	Sensor    *SensorUpdate
	Control   string
	Directive string
}

// SensorUpdate is a sparse ray patch plus the full agent state.
type SensorUpdate struct {
	Rays  []sensor.RayUpdate
	State sensor.AgentState
}

//go:embed inbound.schema.json
var inboundSchema string

const schemaURL = "inbound.schema.json"

// Decoder validates and decodes inbound messages. It is safe for concurrent
// use.
type Decoder struct {
	schema *jsonschema.Schema
}

// NewDecoder compiles the inbound schema.
func NewDecoder() (*Decoder, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader([]byte(inboundSchema))); err != nil {
		return nil, fmt.Errorf("protocol: add schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("protocol: compile schema: %w", err)
	}
	return &Decoder{schema: s}, nil
}

type envelope struct {
	Type    Kind            `json:"Type"`
	Content json.RawMessage `json:"Content"`
}

// Decode validates data and decodes it. Errors wrap ErrMalformed.
func (d *Decoder) Decode(data []byte) (Message, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := d.schema.Validate(doc); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	msg := Message{Kind: env.Type}
	var err error
	switch env.Type {
	case KindSensor:
		msg.Sensor, err = decodeSensor(env.Content)
	case KindSimControl:
		err = json.Unmarshal(env.Content, &msg.Control)
	case KindAgentControl:
		err = json.Unmarshal(env.Content, &msg.Directive)
	}
	if err != nil {
		return Message{}, fmt.Errorf("%w: %s: %w", ErrMalformed, env.Type, err)
	}
	return msg, nil
}

// hitFlag accepts both 0/1 and booleans.
type hitFlag bool

func (h *hitFlag) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true", "1":
		*h = true
	case "false", "0", "null":
		*h = false
	default:
		return fmt.Errorf("invalid hit flag %s", b)
	}
	return nil
}

func decodeSensor(content json.RawMessage) (*SensorUpdate, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(content, &parts); err != nil {
		return nil, err
	}
	var raw [][]json.RawMessage
	if err := json.Unmarshal(parts[0], &raw); err != nil {
		return nil, fmt.Errorf("perception: %w", err)
	}
	u := &SensorUpdate{Rays: make([]sensor.RayUpdate, 0, len(raw))}
	for i, r := range raw {
		var ru sensor.RayUpdate
		if err := json.Unmarshal(r[0], &ru.Index); err != nil {
			return nil, fmt.Errorf("ray %d: index: %w", i, err)
		}
		var hit hitFlag
		if err := json.Unmarshal(r[1], &hit); err != nil {
			return nil, fmt.Errorf("ray %d: %w", i, err)
		}
		ru.Hit = bool(hit)
		if len(r) > 2 {
			if err := json.Unmarshal(r[2], &ru.Object); err != nil {
				return nil, fmt.Errorf("ray %d: object: %w", i, err)
			}
		}
		u.Rays = append(u.Rays, ru)
	}
	if err := json.Unmarshal(parts[1], &u.State); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	return u, nil
}

type outbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// EncodeAction encodes a motion command.
func EncodeAction(cmd goal.Command) ([]byte, error) {
	return json.Marshal(outbound{Type: "action", Content: string(cmd)})
}

// EncodeInitialParams encodes the agent parameters sent once after
// connecting. The simulator expects the parameters as a JSON string.
func EncodeInitialParams(params any) ([]byte, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode initial params: %w", err)
	}
	return json.Marshal(outbound{Type: "initial_params", Content: string(b)})
}
