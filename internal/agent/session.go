package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/protocol"
	"golang.org/x/sync/errgroup"
)

// Transport is a message connection to the simulator.
type Transport interface {
	// ReadMessage blocks for the next inbound message.
	ReadMessage(ctx context.Context) ([]byte, error)
	// WriteMessage queues an outbound message without blocking.
	WriteMessage(data []byte) error
	Close() error
}

// TransportOutbound encodes commands as action messages on t.
func TransportOutbound(t Transport) Outbound {
	return OutboundFunc(func(cmd goal.Command) error {
		b, err := protocol.EncodeAction(cmd)
		if err != nil {
			return err
		}
		return t.WriteMessage(b)
	})
}

// Session pumps inbound messages from a transport into a controller while
// the controller runs.
type Session struct {
	transport Transport
	ctrl      *Controller
	decoder   *protocol.Decoder
	params    any
	initial   string
	logger    *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithInitialParams sends params as initial_params before anything else.
func WithInitialParams(params any) SessionOption {
	return func(s *Session) { s.params = params }
}

// WithInitialDirective applies a directive once the session starts.
func WithInitialDirective(d string) SessionOption {
	return func(s *Session) { s.initial = d }
}

func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession binds a transport to a controller. The controller should
// send through TransportOutbound of the same transport.
func NewSession(t Transport, ctrl *Controller, opts ...SessionOption) (*Session, error) {
	dec, err := protocol.NewDecoder()
	if err != nil {
		return nil, err
	}
	s := &Session{transport: t, ctrl: ctrl, decoder: dec, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("agent", ctrl.ID()))
	return s, nil
}

// Run sends the initial parameters, then reads messages until the
// controller stops. A read failure is fatal to the controller. The
// transport is closed on return, and so is the controller when it never
// started.
func (s *Session) Run(ctx context.Context) error {
	defer s.transport.Close()
	if err := s.start(); err != nil {
		s.ctrl.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.ctrl.Run(ctx)
	})
	g.Go(func() error {
		for {
			data, err := s.transport.ReadMessage(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				s.ctrl.Fail(fmt.Errorf("agent: read: %w", err))
				return nil
			}
			s.handle(data)
		}
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// start sends the initial parameters and applies the initial directive.
func (s *Session) start() error {
	if s.params != nil {
		b, err := protocol.EncodeInitialParams(s.params)
		if err != nil {
			return err
		}
		if err := s.transport.WriteMessage(b); err != nil {
			return fmt.Errorf("agent: send initial params: %w", err)
		}
	}
	if s.initial != "" {
		return s.ctrl.Directive(s.initial)
	}
	return nil
}

func (s *Session) handle(data []byte) {
	msg, err := s.decoder.Decode(data)
	if err != nil {
		s.ctrl.Report(err)
		return
	}
	switch msg.Kind {
	case protocol.KindSensor:
		err = s.ctrl.Update(msg.Sensor)
	case protocol.KindSimControl:
		err = s.ctrl.Control(msg.Control)
	case protocol.KindAgentControl:
		// Directive reports its own errors.
		_ = s.ctrl.Directive(msg.Directive)
	}
	if err != nil && !errors.Is(err, ErrAgentCreate) {
		s.ctrl.Report(err)
	}
}
