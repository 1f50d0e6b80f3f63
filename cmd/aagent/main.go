// Command aagent drives simulated agents with behaviour trees.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joeycumines/aagent/internal/command"
	"github.com/joeycumines/aagent/internal/config"
)

var version = "0.1.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRegistry(cfg *config.Config, configPath string) (*command.Registry, command.Command) {
	registry := command.NewRegistry()
	help := command.NewHelpCommand(registry)
	registry.Register(help)
	registry.Register(command.NewVersionCommand(version))
	registry.Register(command.NewConfigCommand(cfg, configPath))
	registry.Register(command.NewInitCommand())
	registry.Register(command.NewRunCommand(cfg))
	registry.Register(command.NewSpawnCommand(cfg))
	registry.Register(command.NewCatalogCommand())
	return registry, help
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.HasWarnings() {
		for _, w := range cfg.Warnings {
			_, _ = fmt.Fprintf(stderr, "config warning: %s\n", w)
		}
	}
	path, _ := config.GetConfigPath()
	registry, help := newRegistry(cfg, path)

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		return help.Execute(nil, stdout, stderr)
	}

	cmd, err := registry.Get(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		_, _ = fmt.Fprintln(stderr, "Use 'aagent help' to see available commands.")
		return err
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", cmd.Usage())
		_, _ = fmt.Fprintf(stderr, "\n%s\n\n", cmd.Description())
		_, _ = fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}
	cmd.SetupFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	return cmd.Execute(fs.Args(), stdout, stderr)
}
