package behavior

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
)

// Status is the result of a tick. Running, Success and Failure share their
// values with go-behaviortree; Invalid is the state of a node that is not
// part of an active activation.
type Status int

const (
	Invalid Status = 0
	Running        = Status(bt.Running)
	Success        = Status(bt.Success)
	Failure        = Status(bt.Failure)
)

func (s Status) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case Running:
		return "running"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name, for logs and trace records.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for _, v := range []Status{Invalid, Running, Success, Failure} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("behavior: unknown status %q", b)
}

// Done reports whether s is a terminal verdict.
func (s Status) Done() bool { return s == Success || s == Failure }
