package goal

import (
	"slices"
	"strconv"
	"strings"
)

// Command is an outbound action string understood by the simulator.
type Command string

// Primitive motion commands.
const (
	MoveForward  Command = "mf"
	MoveBackward Command = "mb"
	Stop         Command = "stop"
	StopMoving   Command = "ntm"
	TurnLeft     Command = "tl"
	TurnRight    Command = "tr"
	StopTurning  Command = "nt"
)

// Direction is a turning direction.
type Direction int

const (
	Right Direction = iota
	Left
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Command returns the open-ended turn command for d.
func (d Direction) Command() Command {
	if d == Left {
		return TurnLeft
	}
	return TurnRight
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Left {
		return Right
	}
	return Left
}

// TimedTurn returns a turn command that the simulator applies for secs
// seconds, e.g. "tr,0.5".
func TimedTurn(d Direction, secs float64) Command {
	return Command(string(d.Command()) + "," + strconv.FormatFloat(secs, 'f', -1, 64))
}

// Collect asks the simulator to pick up an item with the tag.
func Collect(tag string) Command { return Command("collect:" + tag) }

// WalkTo asks the simulator to navigate to a named location.
func WalkTo(location string) Command { return Command("walk_to," + location) }

// Leave drops n of the named item into the nearby container.
func Leave(item string, n int) Command {
	return Command("leave," + item + "," + strconv.Itoa(n))
}

// Verb returns the command name without its arguments.
func (c Command) Verb() string {
	s := string(c)
	if i := strings.IndexAny(s, ",:"); i >= 0 {
		return s[:i]
	}
	return s
}

// IsStop reports whether c halts translation or rotation.
func (c Command) IsStop() bool {
	switch c {
	case Stop, StopMoving, StopTurning:
		return true
	}
	return false
}

var verbs = []string{"mf", "mb", "stop", "ntm", "tl", "tr", "nt", "collect", "walk_to", "leave"}

// Verbs lists the command verbs the simulator understands.
func Verbs() []string { return slices.Clone(verbs) }

// Valid reports whether c has a verb the simulator understands.
func (c Command) Valid() bool {
	return slices.Contains(verbs, c.Verb())
}
