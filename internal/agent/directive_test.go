package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want Directive
		err  bool
	}{
		{in: "action:mf", want: Directive{DirectiveAction, "mf"}},
		{in: "action:collect:AlienFlower", want: Directive{DirectiveAction, "collect:AlienFlower"}},
		{in: "action:tr,0.5", want: Directive{DirectiveAction, "tr,0.5"}},
		{in: "goal:RandomRoam", want: Directive{DirectiveGoal, "RandomRoam"}},
		{in: "bt:BTRoam", want: Directive{DirectiveTree, "BTRoam"}},
		{in: "action:jump", err: true},
		{in: "goal:", err: true},
		{in: "RandomRoam", err: true},
		{in: "script:x", err: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDirective(tc.in)
			if tc.err {
				require.ErrorIs(t, err, ErrUnknownDirective)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var got []Event
	d := newDispatcher(ObserverFunc(func(e Event) {
		<-release
		got = append(got, e)
	}), 2)
	for range 10 {
		d.emit(Event{Kind: EventTick})
	}
	close(release)
	d.close()
	d.emit(Event{Kind: EventTick})
	assert.LessOrEqual(t, len(got), 3)
	assert.GreaterOrEqual(t, d.dropped.Load(), uint64(7))
}
