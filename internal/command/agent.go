package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/aagent/internal/agent"
	"github.com/joeycumines/aagent/internal/catalog"
	"github.com/joeycumines/aagent/internal/config"
	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/profile"
	"github.com/joeycumines/aagent/internal/trace"
	"github.com/joeycumines/aagent/internal/transport/ws"
)

// dialFunc opens the transport to the simulator.
type dialFunc func(ctx context.Context, url string, writeTimeout time.Duration, logger *slog.Logger) (agent.Transport, error)

func dialWebsocket(ctx context.Context, url string, writeTimeout time.Duration, logger *slog.Logger) (agent.Transport, error) {
	return ws.Dial(ctx, url, ws.Options{WriteTimeout: writeTimeout, Logger: logger})
}

// agentFlags are the flags shared by run and spawn.
type agentFlags struct {
	directive string
	logFile   string
	logLevel  string
	traceDir  string
	tick      time.Duration
}

func (f *agentFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.directive, "directive", "", "Directive applied once connected (action:<cmd>, goal:<name> or bt:<name>)")
	fs.StringVar(&f.logFile, "log-file", "", "Log to this file (JSON, rotated) instead of stderr")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.traceDir, "trace-dir", "", "Write compressed event traces to this directory")
	fs.DurationVar(&f.tick, "tick", 0, "Tick interval (default from config, 10ms)")
}

// agentOptions is the resolved per-agent setup.
type agentOptions struct {
	directive    string
	interval     time.Duration
	traceDir     string
	buffer       int
	host         string
	port         int
	writeTimeout time.Duration
}

// resolveAgentOptions merges flags over the section, global and default
// config values.
func resolveAgentOptions(f agentFlags, cfg *config.Config, section string) (o agentOptions, err error) {
	schema := config.DefaultSchema()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	get := func(key string) string { return schema.ResolveIn(cfg, section, key) }

	o.directive = f.directive
	if o.directive == "" {
		o.directive = get("directive")
	}
	if o.directive != "" {
		if _, err := agent.ParseDirective(o.directive); err != nil {
			return o, err
		}
	}
	o.interval = f.tick
	if o.interval <= 0 {
		if o.interval, err = time.ParseDuration(get("tick-interval")); err != nil {
			return o, fmt.Errorf("tick-interval: %w", err)
		}
	}
	o.traceDir = f.traceDir
	if o.traceDir == "" {
		o.traceDir = get("trace.dir")
	}
	if o.buffer, err = strconv.Atoi(get("observer.buffer")); err != nil {
		return o, fmt.Errorf("observer.buffer: %w", err)
	}
	o.host = get("server.host")
	if v := get("server.port"); v != "" {
		if o.port, err = strconv.Atoi(v); err != nil {
			return o, fmt.Errorf("server.port: %w", err)
		}
	}
	if o.writeTimeout, err = time.ParseDuration(get("write-timeout")); err != nil {
		return o, fmt.Errorf("write-timeout: %w", err)
	}
	return o, nil
}

// loadProfile reads a profile and applies the server overrides.
func loadProfile(path string, o agentOptions) (*profile.Profile, error) {
	p, err := profile.Load(path)
	if err != nil {
		return nil, err
	}
	if o.host != "" {
		p.Server.Host = o.host
	}
	if o.port != 0 {
		p.Server.Port = o.port
	}
	return p, nil
}

func loadTrees(path string) (map[string]catalog.NodeDef, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defs, err := catalog.LoadTrees(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// runAgent connects one agent described by p and runs it until ctx is done
// or the agent fails.
func runAgent(ctx context.Context, p *profile.Profile, o agentOptions, dial dialFunc, logger *slog.Logger) (err error) {
	sensorCfg, err := p.SensorConfig()
	if err != nil {
		return err
	}
	defs, err := loadTrees(p.TreesPath())
	if err != nil {
		return err
	}

	id := uuid.NewString()
	logger = logger.With(slog.String("agent", p.Name()), slog.String("id", id))
	opts := []agent.Option{
		agent.WithID(id),
		agent.WithLogger(logger),
		agent.WithInterval(o.interval),
		agent.WithTiming(p.Catalog.WithDefaults().Timing()),
	}
	if o.traceDir != "" {
		var tw *trace.Writer
		if tw, err = trace.NewWriter(o.traceDir, p.Name()+"-"+id[:8], trace.WithLogger(logger)); err != nil {
			return err
		}
		defer func() { err = errors.Join(err, tw.Close()) }()
		opts = append(opts, agent.WithObserver(tw, o.buffer))
	}

	url := p.URL()
	conn, err := dial(ctx, url, o.writeTimeout, logger)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	logger.Info("connected", slog.String("url", url))

	resolve := func(env goal.Env) agent.Resolver {
		return catalog.New(env, p.Catalog,
			catalog.WithLogger(logger),
			catalog.WithContext(ctx),
			catalog.WithTrees(defs),
		)
	}
	ctrl := agent.New(sensorCfg, agent.TransportOutbound(conn), resolve, opts...)
	defer ctrl.Close()

	sess, err := agent.NewSession(conn, ctrl,
		agent.WithInitialParams(p.InitialParams()),
		agent.WithInitialDirective(o.directive),
		agent.WithSessionLogger(logger),
	)
	if err != nil {
		_ = conn.Close()
		return err
	}
	return sess.Run(ctx)
}
