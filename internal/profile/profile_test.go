package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/aagent/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonProfile = `{
  "AgentParameters": {
    "name": "AAgent-1",
    "ray_perception_sensor_param": [6, 60, 0.5, 20],
    "max_speed": 2.5
  },
  "Server": {"host": "localhost", "port": 4649},
  "Misc": {"python_gui_monitor": true}
}`

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(jsonProfile))
	require.NoError(t, err)
	assert.Equal(t, "AAgent-1", p.Name())
	assert.Equal(t, "ws://localhost:4649/", p.URL())
	assert.True(t, p.Misc.PythonGUIMonitor)
	assert.Equal(t, 2.5, p.InitialParams()["max_speed"])

	cfg, err := p.SensorConfig()
	require.NoError(t, err)
	assert.Equal(t, sensor.Config{RaysPerDirection: 6, MaxDegrees: 60, SphereCastRadius: 0.5, RayLength: 20}, cfg)
	assert.Equal(t, 13, cfg.NumRays())
}

func TestParse_YAMLWithCatalog(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(`
AgentParameters:
  name: critter
  ray_perception_sensor_param: [2, 45, 0, 10]
Server: {host: "::1", port: 80}
Catalog:
  astronaut_tag: AAgentAstronaut
  timing_scale: 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, "AAgentAstronaut", p.Catalog.AstronautTag)
	assert.Equal(t, 0.5, p.Catalog.TimingScale)
	assert.Equal(t, "ws://[::1]:80/", p.URL())
	assert.Empty(t, p.TreesPath())
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for name, doc := range map[string]string{
		"syntax":     `{`,
		"params":     `{"Server": {"host": "h", "port": 1}}`,
		"rays type":  `{"AgentParameters": {"ray_perception_sensor_param": "6"}, "Server": {"host": "h", "port": 1}}`,
		"rays count": `{"AgentParameters": {"ray_perception_sensor_param": [6, 60]}, "Server": {"host": "h", "port": 1}}`,
		"rays value": `{"AgentParameters": {"ray_perception_sensor_param": [6, "x", 0, 1]}, "Server": {"host": "h", "port": 1}}`,
		"host":       `{"AgentParameters": {"ray_perception_sensor_param": [6, 60, 0, 1]}, "Server": {"port": 1}}`,
		"port":       `{"AgentParameters": {"ray_perception_sensor_param": [6, 60, 0, 1]}, "Server": {"host": "h", "port": 70000}}`,
	} {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}
}

func TestLoad_ResolvesTrees(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	doc := "AgentParameters: {ray_perception_sensor_param: [1, 30, 0, 5]}\nServer: {host: h, port: 1}\nTrees: trees.yaml\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "trees.yaml"), p.TreesPath())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSpawn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "spawn.json")
	doc := `{"packs": [{"agent_config_file": "astronaut.json", "num_agents": 3}, {"agent_config_file": "/abs/critter.json"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	s, err := LoadSpawn(path)
	require.NoError(t, err)
	require.Len(t, s.Packs, 2)
	assert.Equal(t, Pack{AgentConfigFile: filepath.Join(dir, "astronaut.json"), NumAgents: 3}, s.Packs[0])
	assert.Equal(t, Pack{AgentConfigFile: "/abs/critter.json", NumAgents: 1}, s.Packs[1])
	assert.Equal(t, 4, s.Agents())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"packs": [{"num_agents": 2}]}`), 0o600))
	_, err = LoadSpawn(bad)
	require.ErrorIs(t, err, ErrInvalid)
}
