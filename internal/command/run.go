package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/joeycumines/aagent/internal/config"
)

// RunCommand connects a single agent to the simulator.
type RunCommand struct {
	*BaseCommand
	config *config.Config
	flags  agentFlags
	dial   dialFunc
	// ctxFactory defaults to a context cancelled by SIGINT or SIGTERM.
	ctxFactory func() (context.Context, context.CancelFunc)
}

// NewRunCommand returns the run command. cfg may be nil.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Run one agent against the simulator",
			"run [options] [profile]",
		),
		config: cfg,
		dial:   dialWebsocket,
	}
}

// SetupFlags registers the agent flags.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) { c.flags.register(fs) }

// Execute runs the agent described by the profile argument, or by the
// configured [run] profile, until interrupted or the agent fails.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 1 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args[1:])
		return errUnexpectedArgs
	}
	path := config.DefaultSchema().ResolveIn(orEmpty(c.config), "run", "profile")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", c.Usage())
		return errors.New("no agent profile given")
	}

	lc, err := resolveLogConfig(c.flags.logFile, c.flags.logLevel, c.config)
	if err != nil {
		return err
	}
	if lc.file != nil {
		defer lc.file.Close()
	}
	logger := lc.logger(stderr)

	opts, err := resolveAgentOptions(c.flags, c.config, "run")
	if err != nil {
		return err
	}
	p, err := loadProfile(path, opts)
	if err != nil {
		return err
	}

	ctx, cancel := c.context()
	defer cancel()
	return runAgent(ctx, p, opts, c.dial, logger)
}

func (c *RunCommand) context() (context.Context, context.CancelFunc) {
	if c.ctxFactory != nil {
		return c.ctxFactory()
	}
	return notifyContext(context.Background())
}

func orEmpty(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.NewConfig()
	}
	return cfg
}
