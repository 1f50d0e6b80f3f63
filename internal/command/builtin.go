package command

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/joeycumines/aagent/internal/config"
)

var errUnexpectedArgs = errors.New("unexpected arguments")

// HelpCommand lists commands, or describes one.
type HelpCommand struct {
	*BaseCommand
	registry *Registry
}

// NewHelpCommand returns the help command for the commands in registry.
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{
		BaseCommand: NewBaseCommand(
			"help",
			"Display help information for commands",
			"help [command]",
		),
		registry: registry,
	}
}

// Execute lists every command, or describes the command named by args[0].
func (c *HelpCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, "aagent - behaviour tree controller for simulated agents")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Usage: aagent <command> [options] [args...]")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Commands:")
		w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
		for _, name := range c.registry.List() {
			if cmd, err := c.registry.Get(name); err == nil {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", name, cmd.Description())
			}
		}
		_ = w.Flush()
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Use 'aagent help <command>' for the flags of a command.")
		return nil
	}

	cmd, err := c.registry.Get(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		return err
	}
	_, _ = fmt.Fprintf(stdout, "Command: %s\n", cmd.Name())
	_, _ = fmt.Fprintf(stdout, "Description: %s\n", cmd.Description())
	_, _ = fmt.Fprintf(stdout, "Usage: %s\n", cmd.Usage())

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	var buf bytes.Buffer
	fs.SetOutput(&buf)
	cmd.SetupFlags(fs)
	fs.PrintDefaults()
	if buf.Len() > 0 {
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Flags:")
		_, _ = fmt.Fprint(stdout, buf.String())
	}
	return nil
}

// VersionCommand prints the program version.
type VersionCommand struct {
	*BaseCommand
	version string
}

// NewVersionCommand returns the version command reporting version.
func NewVersionCommand(version string) *VersionCommand {
	return &VersionCommand{
		BaseCommand: NewBaseCommand("version", "Display version information", "version"),
		version:     version,
	}
}

// Execute prints the version.
func (c *VersionCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return errUnexpectedArgs
	}
	_, _ = fmt.Fprintf(stdout, "aagent version %s\n", c.version)
	return nil
}

// ConfigCommand shows, validates and sets configuration options.
type ConfigCommand struct {
	*BaseCommand
	config     *config.Config
	configPath string
	showAll    bool
}

// NewConfigCommand returns the config command. An empty configPath means
// set operations persist to config.GetConfigPath.
func NewConfigCommand(cfg *config.Config, configPath string) *ConfigCommand {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &ConfigCommand{
		BaseCommand: NewBaseCommand(
			"config",
			"Show or change configuration settings",
			"config [-all] [schema | validate | <key> [value]]",
		),
		config:     cfg,
		configPath: configPath,
	}
}

// SetupFlags registers -all.
func (c *ConfigCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.showAll, "all", false, "Include command sections")
}

// Execute shows the configuration, prints the schema, validates, or gets or
// sets a single global key.
func (c *ConfigCommand) Execute(args []string, stdout, stderr io.Writer) error {
	schema := config.DefaultSchema()
	switch {
	case len(args) == 0:
		c.show(stdout, schema)
		return nil
	case len(args) == 1 && args[0] == "schema":
		_, _ = fmt.Fprint(stdout, schema.FormatHelp())
		return nil
	case len(args) == 1 && args[0] == "validate":
		return c.validate(stdout, schema)
	case len(args) == 1:
		key := args[0]
		if schema.Lookup("", key) == nil {
			if _, ok := c.config.GetGlobalOption(key); !ok {
				_, _ = fmt.Fprintf(stdout, "Configuration key '%s' not found\n", key)
				return nil
			}
		}
		_, _ = fmt.Fprintf(stdout, "%s: %s\n", key, schema.Resolve(c.config, key))
		return nil
	case len(args) == 2:
		key, value := args[0], args[1]
		c.config.SetGlobalOption(key, value)
		path := c.configPath
		if path == "" {
			path, _ = config.GetConfigPath()
		}
		if path != "" {
			if err := config.SetKeyInFile(path, key, value); err != nil {
				_, _ = fmt.Fprintf(stderr, "Warning: failed to persist config to disk: %v\n", err)
			}
		}
		_, _ = fmt.Fprintf(stdout, "Set configuration: %s = %s\n", key, value)
		return nil
	}
	_, _ = fmt.Fprintln(stderr, "Invalid number of arguments")
	return errUnexpectedArgs
}

// show prints every effective global option, then the raw sections.
func (c *ConfigCommand) show(stdout io.Writer, schema *config.ConfigSchema) {
	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	for _, o := range schema.GlobalOptions() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", o.Key, schema.Resolve(c.config, o.Key))
	}
	for _, key := range slices.Sorted(maps.Keys(c.config.Global)) {
		if schema.Lookup("", key) == nil {
			_, _ = fmt.Fprintf(w, "%s\t%s\t(unknown)\n", key, c.config.Global[key])
		}
	}
	_ = w.Flush()
	if !c.showAll {
		return
	}
	for _, section := range slices.Sorted(maps.Keys(c.config.Commands)) {
		_, _ = fmt.Fprintf(stdout, "\n[%s]\n", section)
		opts := c.config.Commands[section]
		for _, key := range slices.Sorted(maps.Keys(opts)) {
			_, _ = fmt.Fprintf(stdout, "%s %s\n", key, opts[key])
		}
	}
}

func (c *ConfigCommand) validate(stdout io.Writer, schema *config.ConfigSchema) error {
	issues := config.ValidateConfig(c.config, schema)
	if len(issues) == 0 {
		_, _ = fmt.Fprintln(stdout, "Configuration is valid.")
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "Configuration has %d issue(s):\n", len(issues))
	for _, issue := range issues {
		_, _ = fmt.Fprintf(stdout, "  - %s\n", issue)
	}
	return nil
}

// InitCommand writes a starter configuration file.
type InitCommand struct {
	*BaseCommand
	force bool
}

// NewInitCommand returns the init command.
func NewInitCommand() *InitCommand {
	return &InitCommand{
		BaseCommand: NewBaseCommand("init", "Write a default configuration file", "init [-force]"),
	}
}

// SetupFlags registers -force.
func (c *InitCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "Overwrite an existing configuration")
}

const defaultConfig = `# aagent configuration
# Format: optionName remainingLineIsTheValue
# [command] sections scope options to one command.

tick-interval 10ms
log.level info
# trace.dir /var/tmp/aagent-trace

[run]
# profile agents/AAgent-1.yaml
# directive bt:BTRoam

[spawn]
# file agents/spawn.yaml
`

// Execute writes defaultConfig to the config path unless a file exists
// there and -force is not set.
func (c *InitCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return errUnexpectedArgs
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if _, err := os.Stat(path); err == nil && !c.force {
		_, _ = fmt.Fprintf(stdout, "Configuration already exists at: %s\n", path)
		_, _ = fmt.Fprintln(stdout, "Use -force to overwrite it")
		return nil
	}
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "Initialized aagent configuration at: %s\n", path)
	return nil
}
