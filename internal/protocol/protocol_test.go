package protocol

import (
	"encoding/json"
	"testing"

	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder()
	require.NoError(t, err)
	return d
}

const sensorMsg = `{
  "Type": "sensor",
  "Content": [
    [[0, 0, null], [2, 1, {"name": "Flower1", "tag": "AlienFlower", "distance": 3.5}], [4, true, null]],
    {
      "isRotatingRight": false, "isRotatingLeft": true,
      "movingForwards": true, "movingBackwards": false,
      "isFrozen": false, "speed": 1.5,
      "position": {"x": 1, "y": 0, "z": 2},
      "rotation": {"x": 0, "y": 270, "z": 0},
      "currentNamedLoc": "Base", "onRoute": false, "targetNamedLoc": "",
      "myInventoryList": [{"name": "AlienFlower", "amount": 1}],
      "nearbyContainerInventory": false,
      "nearbyContainerInventoryList": []
    }
  ]
}`

func TestDecode_Sensor(t *testing.T) {
	t.Parallel()

	msg, err := newDecoder(t).Decode([]byte(sensorMsg))
	require.NoError(t, err)
	require.Equal(t, KindSensor, msg.Kind)
	require.NotNil(t, msg.Sensor)

	rays := msg.Sensor.Rays
	require.Len(t, rays, 3)
	assert.Equal(t, sensor.RayUpdate{Index: 0}, rays[0])
	assert.Equal(t, 2, rays[1].Index)
	assert.True(t, rays[1].Hit)
	assert.Equal(t, &sensor.Object{Name: "Flower1", Tag: "AlienFlower", Distance: 3.5}, rays[1].Object)
	assert.True(t, rays[2].Hit, "boolean hit flags are accepted")

	st := msg.Sensor.State
	assert.True(t, st.RotatingLeft)
	assert.True(t, st.MovingForwards)
	assert.Equal(t, 270.0, st.Yaw())
	assert.Equal(t, "Base", st.CurrentLocation)
	assert.Equal(t, 1, st.Count("AlienFlower"))
}

func TestDecode_Control(t *testing.T) {
	t.Parallel()

	d := newDecoder(t)
	msg, err := d.Decode([]byte(`{"Type":"sim_control","Content":"connection_ready"}`))
	require.NoError(t, err)
	assert.Equal(t, Message{Kind: KindSimControl, Control: ControlReady}, msg)

	msg, err = d.Decode([]byte(`{"Type":"agent_control","Content":"goal:RandomRoam"}`))
	require.NoError(t, err)
	assert.Equal(t, Message{Kind: KindAgentControl, Directive: "goal:RandomRoam"}, msg)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	d := newDecoder(t)
	for name, data := range map[string]string{
		"not json":        `{"Type":`,
		"unknown type":    `{"Type":"telemetry","Content":1}`,
		"missing content": `{"Type":"sim_control"}`,
		"unknown control": `{"Type":"sim_control","Content":"reboot"}`,
		"bad directive":   `{"Type":"agent_control","Content":"RandomRoam"}`,
		"ray index":       `{"Type":"sensor","Content":[[[-1,0,null]],{}]}`,
		"ray shape":       `{"Type":"sensor","Content":[[[1]],{}]}`,
		"state":           `{"Type":"sensor","Content":[[],{"speed":"fast"}]}`,
		"short content":   `{"Type":"sensor","Content":[[]]}`,
	} {
		_, err := d.Decode([]byte(data))
		assert.ErrorIs(t, err, ErrMalformed, name)
	}
}

func TestEncodeAction(t *testing.T) {
	t.Parallel()

	b, err := EncodeAction(goal.TimedTurn(goal.Left, 0.5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"action","content":"tl,0.5"}`, string(b))
}

func TestEncodeInitialParams(t *testing.T) {
	t.Parallel()

	b, err := EncodeInitialParams(map[string]any{"name": "AAgent-1", "ray_perception_sensor_param": []int{6, 60, 0, 20}})
	require.NoError(t, err)

	var out struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "initial_params", out.Type)
	assert.JSONEq(t, `{"name":"AAgent-1","ray_perception_sensor_param":[6,60,0,20]}`, out.Content)
}
