package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll([]ConfigOption{
		{Key: "level", Type: TypeString, Default: "info", EnvVar: "AAGENT_TEST_LEVEL"},
		{Key: "json", Type: TypeBool, Default: "false"},
		{Key: "buffer", Type: TypeInt, Default: "4"},
		{Key: "tick", Type: TypeDuration, Default: "10ms", Description: "Tick period"},
		{Key: "profile", Section: "run", Default: "ant.json", EnvVar: "AAGENT_TEST_PROFILE"},
	})
	return s
}

func TestSchema_Lookup(t *testing.T) {
	t.Parallel()
	s := testSchema()

	require.NotNil(t, s.Lookup("", "level"))
	assert.Nil(t, s.Lookup("", "profile"))
	require.NotNil(t, s.Lookup("run", "profile"))
	assert.Nil(t, s.Lookup("spawn", "profile"))

	assert.True(t, s.IsKnown("run", "profile"))
	assert.True(t, s.IsKnown("run", "level"), "globals valid in sections")
	assert.False(t, s.IsKnown("", "profile"))
	assert.False(t, s.IsKnown("spawn", "nope"))

	assert.Len(t, s.GlobalOptions(), 4)
	assert.Len(t, s.SectionOptions("run"), 1)
	assert.Equal(t, []string{"run"}, s.Sections())
}

func TestSchema_RegisterOverwrites(t *testing.T) {
	t.Parallel()
	s := NewSchema()
	s.Register(ConfigOption{Key: "a", Default: "1"})
	s.Register(ConfigOption{Key: "a", Default: "2"})
	assert.Equal(t, "2", s.Lookup("", "a").Default)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()
	s := testSchema()
	for _, tc := range []struct {
		name string
		set  func(c *Config)
		want []string
	}{
		{name: "empty"},
		{
			name: "valid",
			set: func(c *Config) {
				c.SetGlobalOption("json", "yes")
				c.SetGlobalOption("tick", "1s")
				c.SetCommandOption("run", "profile", "x")
				c.SetCommandOption("run", "buffer", "9")
			},
		},
		{
			name: "unknown",
			set: func(c *Config) {
				c.SetGlobalOption("nope", "1")
				c.SetCommandOption("run", "nada", "2")
			},
			want: []string{
				`unknown global option: "nope" (value: "1")`,
				`unknown option for command "run": "nada" (value: "2")`,
			},
		},
		{
			name: "types",
			set: func(c *Config) {
				c.SetGlobalOption("buffer", "lots")
				c.SetCommandOption("run", "tick", "soon")
			},
			want: []string{
				`global option "buffer": expected int, got "lots"`,
				`option "tick" in [run]: expected duration, got "soon"`,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := NewConfig()
			if tc.set != nil {
				tc.set(c)
			}
			assert.Equal(t, tc.want, ValidateConfig(c, s))
		})
	}
}

func TestValidateType(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateType(TypeString, "anything"))
	assert.NoError(t, validateType("", "anything"))
	assert.NoError(t, validateType(TypeBool, "off"))
	assert.Error(t, validateType(TypeBool, "2"))
	assert.NoError(t, validateType(TypeInt, "-3"))
	assert.Error(t, validateType(TypeInt, "1.5"))
	assert.NoError(t, validateType(TypeDuration, "250ms"))
	assert.Error(t, validateType(TypeDuration, "250"))
	assert.ErrorContains(t, validateType("colour", "x"), "unknown option type")
}

func TestGetters(t *testing.T) {
	t.Parallel()
	c := NewConfig()
	c.SetGlobalOption("b", "on")
	c.SetGlobalOption("i", "42")
	c.SetGlobalOption("bad", "x")

	assert.True(t, c.GetBool("b"))
	assert.False(t, c.GetBool("bad"))
	assert.Equal(t, 42, c.GetInt("i"))
	assert.Zero(t, c.GetInt("bad"))
	assert.Equal(t, "42", c.GetString("i"))
	assert.Empty(t, c.GetString("unset"))
}

func TestSchema_Resolve(t *testing.T) {
	s := testSchema()
	c := NewConfig()
	assert.Equal(t, "info", s.Resolve(c, "level"))
	assert.Equal(t, "", s.Resolve(c, "unknown"))

	c.SetGlobalOption("level", "debug")
	assert.Equal(t, "debug", s.Resolve(c, "level"))

	t.Setenv("AAGENT_TEST_LEVEL", "error")
	assert.Equal(t, "error", s.Resolve(c, "level"))
}

func TestSchema_ResolveIn(t *testing.T) {
	s := testSchema()
	c := NewConfig()
	assert.Equal(t, "ant.json", s.ResolveIn(c, "run", "profile"))
	assert.Equal(t, "4", s.ResolveIn(c, "run", "buffer"))

	c.SetGlobalOption("buffer", "8")
	assert.Equal(t, "8", s.ResolveIn(c, "run", "buffer"))
	c.SetCommandOption("run", "buffer", "16")
	assert.Equal(t, "16", s.ResolveIn(c, "run", "buffer"))

	c.SetCommandOption("run", "profile", "bee.json")
	assert.Equal(t, "bee.json", s.ResolveIn(c, "run", "profile"))
	t.Setenv("AAGENT_TEST_PROFILE", "wasp.json")
	assert.Equal(t, "wasp.json", s.ResolveIn(c, "run", "profile"))
}

func TestFormatHelp(t *testing.T) {
	t.Parallel()
	assert.Empty(t, NewSchema().FormatHelp())

	help := testSchema().FormatHelp()
	assert.True(t, strings.HasPrefix(help, "Global Options:\n"))
	assert.Contains(t, help, "Tick period (type: duration, default: 10ms)")
	assert.Contains(t, help, "(default: info, env: AAGENT_TEST_LEVEL)")
	assert.Contains(t, help, "\n[run] Options:\n")
}

func TestDefaultSchema(t *testing.T) {
	t.Parallel()
	s := DefaultSchema()
	for _, key := range []string{"tick-interval", "observer.buffer", "trace.dir", "log.file", "log.level", "log.max-size-mb", "log.max-files", "log.json"} {
		assert.NotNil(t, s.Lookup("", key), key)
	}
	assert.NotNil(t, s.Lookup("run", "directive"))
	assert.NotNil(t, s.Lookup("spawn", "file"))

	c := NewConfig()
	assert.Equal(t, "10ms", s.Resolve(c, "tick-interval"))
	for _, o := range append(s.GlobalOptions(), s.SectionOptions("run")...) {
		if o.Default != "" {
			assert.NoError(t, validateType(o.Type, o.Default), o.Key)
		}
	}
}
