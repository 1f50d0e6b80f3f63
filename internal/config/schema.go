package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OptionType is the value type an option is validated against.
type OptionType string

const (
	// TypeString accepts any value. Options without a type are strings.
	TypeString OptionType = "string"
	// TypeBool accepts true/false, yes/no, on/off and 1/0.
	TypeBool OptionType = "bool"
	// TypeInt accepts a base 10 integer.
	TypeInt OptionType = "int"
	// TypeDuration accepts a time.ParseDuration value such as "10ms" or "2s".
	TypeDuration OptionType = "duration"
)

// ConfigOption declares one option: where it lives, its type and default,
// and the environment variable that overrides it.
type ConfigOption struct {
	// Key is the option name as written in the config file.
	Key string
	// Type is used to validate configured values.
	Type OptionType
	// Default is used when neither the environment nor the file sets the
	// option. "" means no default.
	Default string
	// Description is shown by `aagent config schema`.
	Description string
	// Section is "" for global options, otherwise the [section] the option
	// belongs to.
	Section string
	// EnvVar, when set in the environment, overrides the configured value.
	// "" means the option has no override.
	EnvVar string
}

// ConfigSchema is the set of known options. It drives validation, the
// schema help output and value resolution.
type ConfigSchema struct {
	// options keeps registration order for help output.
	options []*ConfigOption
	// byKey holds the global options.
	byKey map[string]*ConfigOption
	// bySection holds section options by section, then key.
	bySection map[string]map[string]*ConfigOption
}

// NewSchema returns an empty schema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds opt. A later registration of the same key wins.
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := new(ConfigOption)
	*ref = opt
	s.options = append(s.options, ref)
	if opt.Section == "" {
		s.byKey[opt.Key] = ref
	} else {
		if s.bySection[opt.Section] == nil {
			s.bySection[opt.Section] = make(map[string]*ConfigOption)
		}
		s.bySection[opt.Section][opt.Key] = ref
	}
}

// RegisterAll registers each option in order.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Lookup returns the option, or nil. Section "" is global.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	if sec, ok := s.bySection[section]; ok {
		return sec[key]
	}
	return nil
}

// IsKnown reports whether key may appear in section. Global keys are valid
// in any section.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	if section == "" {
		return s.byKey[key] != nil
	}
	if sec, ok := s.bySection[section]; ok {
		if sec[key] != nil {
			return true
		}
	}
	return s.byKey[key] != nil
}

// GlobalOptions returns copies of the global options in registration
// order.
func (s *ConfigSchema) GlobalOptions() []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == "" {
			out = append(out, *o)
		}
	}
	return out
}

// SectionOptions returns copies of the options of section in registration
// order.
func (s *ConfigSchema) SectionOptions(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns the section names, sorted.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the effective value of a global key: the declared env var,
// then the config value, then the default.
func (s *ConfigSchema) Resolve(c *Config, key string) string {
	opt := s.Lookup("", key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	v, ok := c.GetGlobalOption(key)
	if ok {
		return v
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveIn is Resolve for an option that may appear in a command
// section: env, then [section], then global, then the default.
func (s *ConfigSchema) ResolveIn(c *Config, section, key string) string {
	opt := s.Lookup(section, key)
	if opt == nil {
		opt = s.Lookup("", key)
	}
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if v, ok := c.GetCommandOption(section, key); ok {
		return v
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ValidateConfig returns sorted human-readable problems: unknown keys and
// values that do not parse as the declared type.
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateType(opt.Type, value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}

	for section, opts := range c.Commands {
		for key, value := range opts {
			if !s.IsKnown(section, key) {
				issues = append(issues, fmt.Sprintf("unknown option for command %q: %q (value: %q)", section, key, value))
				continue
			}
			opt := s.Lookup(section, key)
			if opt == nil {
				opt = s.Lookup("", key)
			}
			if opt != nil {
				if err := validateType(opt.Type, value); err != nil {
					issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}

func validateType(t OptionType, value string) error {
	switch t {
	case TypeString, "":
		return nil
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	return nil
}

// GetString returns a global option, or "".
func (c *Config) GetString(key string) string {
	v, _ := c.GetGlobalOption(key)
	return v
}

// GetBool is false when unset or invalid.
func (c *Config) GetBool(key string) bool {
	b, _ := parseBool(c.GetString(key))
	return b
}

// GetInt is 0 when unset or invalid.
func (c *Config) GetInt(key string) int {
	i, _ := strconv.Atoi(c.GetString(key))
	return i
}

// FormatHelp lists every option grouped by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder

	globals := s.GlobalOptions()
	if len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}

	for _, sec := range s.Sections() {
		opts := s.SectionOptions(sec)
		if len(opts) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n[%s] Options:\n", sec))
		for _, o := range opts {
			writeOptionHelp(&b, o)
		}
	}

	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	b.WriteString(fmt.Sprintf("  %-35s %s", o.Key, o.Description))
	parts := make([]string, 0, 3)
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, fmt.Sprintf("type: %s", o.Type))
	}
	if o.Default != "" {
		parts = append(parts, fmt.Sprintf("default: %s", o.Default))
	}
	if o.EnvVar != "" {
		parts = append(parts, fmt.Sprintf("env: %s", o.EnvVar))
	}
	if len(parts) > 0 {
		b.WriteString(fmt.Sprintf(" (%s)", strings.Join(parts, ", ")))
	}
	b.WriteString("\n")
}

// --- Default schema ---

// DefaultSchema returns every option aagent understands.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll(defaultGlobalOptions())
	s.RegisterAll(defaultCommandOptions())
	return s
}

func defaultGlobalOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "tick-interval", Type: TypeDuration, Default: "10ms", Description: "Behaviour tree tick period", EnvVar: "AAGENT_TICK_INTERVAL"},
		{Key: "observer.buffer", Type: TypeInt, Default: "256", Description: "Queued observer events before dropping"},
		{Key: "trace.dir", Type: TypeString, Default: "", Description: "Directory for compressed agent traces (disabled if empty)", EnvVar: "AAGENT_TRACE_DIR"},
		{Key: "server.host", Type: TypeString, Default: "", Description: "Override the simulator host from the agent profile"},
		{Key: "server.port", Type: TypeInt, Default: "", Description: "Override the simulator port from the agent profile"},
		{Key: "write-timeout", Type: TypeDuration, Default: "5s", Description: "Websocket write deadline"},

		{Key: "log.file", Type: TypeString, Default: "", Description: "Log file path (JSON output)", EnvVar: "AAGENT_LOG_FILE"},
		{Key: "log.level", Type: TypeString, Default: "info", Description: "Log level: debug, info, warn, error", EnvVar: "AAGENT_LOG_LEVEL"},
		{Key: "log.max-size-mb", Type: TypeInt, Default: "10", Description: "Max log file size in MB before rotation"},
		{Key: "log.max-files", Type: TypeInt, Default: "5", Description: "Max number of rotated log backup files"},
		{Key: "log.json", Type: TypeBool, Default: "false", Description: "Write JSON logs to stderr"},
	}
}

func defaultCommandOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "profile", Section: "run", Type: TypeString, Default: "", Description: "Agent profile used when none is given"},
		{Key: "directive", Section: "run", Type: TypeString, Default: "", Description: "Directive applied once connected, e.g. bt:BTRoam"},

		{Key: "file", Section: "spawn", Type: TypeString, Default: "", Description: "Spawn file used when none is given"},
		{Key: "directive", Section: "spawn", Type: TypeString, Default: "", Description: "Directive applied to every spawned agent"},
	}
}
