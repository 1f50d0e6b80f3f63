package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/joeycumines/aagent/internal/config"
	"github.com/joeycumines/aagent/internal/profile"
	"golang.org/x/sync/errgroup"
)

// SpawnCommand runs every agent of a spawn file concurrently. The first
// agent to fail stops the rest.
type SpawnCommand struct {
	*BaseCommand
	config     *config.Config
	flags      agentFlags
	dial       dialFunc
	ctxFactory func() (context.Context, context.CancelFunc)
}

// NewSpawnCommand returns the spawn command. cfg may be nil.
func NewSpawnCommand(cfg *config.Config) *SpawnCommand {
	return &SpawnCommand{
		BaseCommand: NewBaseCommand(
			"spawn",
			"Run packs of agents listed in a spawn file",
			"spawn [options] [spawnfile]",
		),
		config: cfg,
		dial:   dialWebsocket,
	}
}

// SetupFlags registers the agent flags.
func (c *SpawnCommand) SetupFlags(fs *flag.FlagSet) { c.flags.register(fs) }

// Execute loads every pack of the spawn file, then runs all agents until
// interrupted or one of them fails.
func (c *SpawnCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 1 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args[1:])
		return errUnexpectedArgs
	}
	path := config.DefaultSchema().ResolveIn(orEmpty(c.config), "spawn", "file")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", c.Usage())
		return errors.New("no spawn file given")
	}

	lc, err := resolveLogConfig(c.flags.logFile, c.flags.logLevel, c.config)
	if err != nil {
		return err
	}
	if lc.file != nil {
		defer lc.file.Close()
	}
	logger := lc.logger(stderr)

	opts, err := resolveAgentOptions(c.flags, c.config, "spawn")
	if err != nil {
		return err
	}
	spawn, err := profile.LoadSpawn(path)
	if err != nil {
		return err
	}
	// Profiles are loaded up front so a bad pack fails before any agent
	// connects.
	profiles := make([]*profile.Profile, len(spawn.Packs))
	for i, pk := range spawn.Packs {
		if profiles[i], err = loadProfile(pk.AgentConfigFile, opts); err != nil {
			return err
		}
	}

	ctx, cancel := c.context()
	defer cancel()
	logger.Info("spawning agents", slog.Int("packs", len(spawn.Packs)), slog.Int("agents", spawn.Agents()))

	g, ctx := errgroup.WithContext(ctx)
	for i, pk := range spawn.Packs {
		p := profiles[i]
		for n := range pk.NumAgents {
			l := logger.With(slog.Int("pack", i), slog.Int("member", n))
			g.Go(func() error {
				if err := runAgent(ctx, p, opts, c.dial, l); err != nil {
					return fmt.Errorf("pack %d agent %d (%s): %w", i, n, p.Name(), err)
				}
				return nil
			})
		}
	}
	return g.Wait()
}

func (c *SpawnCommand) context() (context.Context, context.CancelFunc) {
	if c.ctxFactory != nil {
		return c.ctxFactory()
	}
	return notifyContext(context.Background())
}
