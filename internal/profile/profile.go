// Package profile loads agent profiles and spawn files.
//
// Profiles are YAML or JSON documents:
//
//	AgentParameters:
//	  name: AAgent-1
//	  ray_perception_sensor_param: [6, 60, 0.5, 20]
//	Server: {host: localhost, port: 4649}
//	Misc: {python_gui_monitor: false}
//	Catalog: {astronaut_tag: AAgentAstronaut}
//	Trees: trees.yaml
//
// AgentParameters is forwarded to the simulator verbatim.
package profile

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joeycumines/aagent/internal/catalog"
	"github.com/joeycumines/aagent/internal/sensor"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("profile: invalid")

const rayParamsKey = "ray_perception_sensor_param"

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Misc holds settings of the original tooling that are accepted and
// ignored.
type Misc struct {
	PythonGUIMonitor bool `yaml:"python_gui_monitor"`
}

// Profile describes one agent.
type Profile struct {
	AgentParameters map[string]any  `yaml:"AgentParameters"`
	Server          Server          `yaml:"Server"`
	Misc            Misc            `yaml:"Misc"`
	Catalog         catalog.Profile `yaml:"Catalog"`
	// Trees optionally names a tree definition file, relative to the
	// profile.
	Trees string `yaml:"Trees"`

	dir string
}

// Parse decodes and validates a profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

func (p *Profile) validate() error {
	if p.AgentParameters == nil {
		return fmt.Errorf("%w: missing AgentParameters", ErrInvalid)
	}
	if _, err := p.SensorConfig(); err != nil {
		return err
	}
	if p.Server.Host == "" {
		return fmt.Errorf("%w: missing Server.host", ErrInvalid)
	}
	if p.Server.Port <= 0 || p.Server.Port > 65535 {
		return fmt.Errorf("%w: Server.port %d out of range", ErrInvalid, p.Server.Port)
	}
	return nil
}

// Name returns AgentParameters.name, or "" when absent.
func (p *Profile) Name() string {
	s, _ := p.AgentParameters["name"].(string)
	return s
}

// SensorConfig parses the ray fan parameters.
func (p *Profile) SensorConfig() (sensor.Config, error) {
	raw, ok := p.AgentParameters[rayParamsKey].([]any)
	if !ok {
		return sensor.Config{}, fmt.Errorf("%w: %s must be a list", ErrInvalid, rayParamsKey)
	}
	params := make([]float64, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case int:
			params[i] = float64(n)
		case float64:
			params[i] = n
		default:
			return sensor.Config{}, fmt.Errorf("%w: %s[%d] is not a number", ErrInvalid, rayParamsKey, i)
		}
	}
	cfg, err := sensor.ParseConfig(params)
	if err != nil {
		return sensor.Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

// InitialParams returns the parameters sent to the simulator on connect.
func (p *Profile) InitialParams() map[string]any { return p.AgentParameters }

// URL returns the simulator websocket URL.
func (p *Profile) URL() string {
	return "ws://" + net.JoinHostPort(p.Server.Host, strconv.Itoa(p.Server.Port)) + "/"
}

// TreesPath returns the tree definition file resolved against the
// profile's directory, or "" when none is set.
func (p *Profile) TreesPath() string {
	return resolve(p.dir, p.Trees)
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// Pack is a group of identical agents.
type Pack struct {
	AgentConfigFile string `yaml:"agent_config_file"`
	NumAgents       int    `yaml:"num_agents"`
}

// Spawn lists the packs to start together.
type Spawn struct {
	Packs []Pack `yaml:"packs"`
}

// LoadSpawn reads a spawn file. Profile paths are resolved against the
// spawn file's directory and NumAgents defaults to 1.
func LoadSpawn(path string) (*Spawn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	var s Spawn
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalid, err)
	}
	dir := filepath.Dir(path)
	for i := range s.Packs {
		pk := &s.Packs[i]
		if pk.AgentConfigFile == "" {
			return nil, fmt.Errorf("%s: %w: pack %d has no agent_config_file", path, ErrInvalid, i)
		}
		if pk.NumAgents == 0 {
			pk.NumAgents = 1
		}
		if pk.NumAgents < 0 {
			return nil, fmt.Errorf("%s: %w: pack %d has a negative num_agents", path, ErrInvalid, i)
		}
		pk.AgentConfigFile = resolve(dir, pk.AgentConfigFile)
	}
	return &s, nil
}

// Agents returns the total number of agents across packs.
func (s *Spawn) Agents() int {
	var n int
	for _, pk := range s.Packs {
		n += pk.NumAgents
	}
	return n
}
