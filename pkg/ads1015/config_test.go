// Copyright 2024 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package ads1015

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecodeDefaultConfig(t *testing.T) {
	c := DecodeConfig(0x8583)
	assert.Equal(t, ModeSingleShot, c.Mode)
	assert.Equal(t, Gain2, c.Gain)
	assert.Equal(t, ChannelDiff01, c.Channel)
	assert.Equal(t, StatusStart, c.Status)
	assert.Equal(t, ComparatorDisabled, c.ComparatorQueue)
	assert.Equal(t, ComparatorNonLatching, c.ComparatorLatch)
	assert.Equal(t, ComparatorActiveLow, c.ComparatorPolarity)
	assert.Equal(t, ComparatorTraditional, c.ComparatorMode)
	assert.Equal(t, DataRate1600, c.DataRate)
	assert.Equal(t, uint16(0x8583), c.Encode())
	assert.Equal(t, DefaultConfig(), c)
}

func TestConfigRoundTrip(t *testing.T) {
	for w := 0; w <= 0xFFFF; w++ {
		word := uint16(w)
		if got := DecodeConfig(word).Encode(); got != word {
			t.Fatalf("Encode(DecodeConfig(0x%04x)) = 0x%04x", word, got)
		}
	}
}

func TestConfigFieldPositions(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		word   uint16
	}{
		{"status", Config{Status: StatusStart}, 0x8000},
		{"channel", Config{Channel: ChannelAIN3}, 0x7000},
		{"gain", Config{Gain: 7}, 0x0E00},
		{"mode", Config{Mode: ModeSingleShot}, 0x0100},
		{"data rate", Config{DataRate: 7}, 0x00E0},
		{"comparator mode", Config{ComparatorMode: ComparatorWindow}, 0x0010},
		{"comparator polarity", Config{ComparatorPolarity: ComparatorActiveHigh}, 0x0008},
		{"comparator latch", Config{ComparatorLatch: ComparatorLatching}, 0x0004},
		{"comparator queue", Config{ComparatorQueue: ComparatorDisabled}, 0x0003},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.word, test.config.Encode())
			assert.Equal(t, test.config, DecodeConfig(test.word))
		})
	}
}

func TestEncodeTruncatesToFieldWidth(t *testing.T) {
	// Gain 9 does not fit in 3 bits; only 0b001 remains.
	c := Config{Gain: 9}
	assert.Equal(t, uint16(0x0200), c.Encode())
	// Neighbours are not disturbed
	c = Config{ComparatorQueue: 0xFF}
	assert.Equal(t, uint16(0x0003), c.Encode())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.Gain = 6
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	c = DefaultConfig()
	c.DataRate = 7
	c.ComparatorQueue = 4
	assert.Error(t, c.Validate())
}

func TestSingleEndedChannel(t *testing.T) {
	ch, err := SingleEndedChannel(1)
	require.NoError(t, err)
	assert.Equal(t, ChannelAIN0, ch)
	ch, err = SingleEndedChannel(4)
	require.NoError(t, err)
	assert.Equal(t, ChannelAIN3, ch)
	_, err = SingleEndedChannel(5)
	assert.True(t, IsInvalidArgument(err))
}

func TestParseFields(t *testing.T) {
	g, err := ParseGain("4.096")
	require.NoError(t, err)
	assert.Equal(t, Gain1, g)
	g, err = ParseGain("x16")
	require.NoError(t, err)
	assert.Equal(t, Gain16, g)
	g, err = ParseGain("6")
	require.NoError(t, err)
	assert.Equal(t, Gain(6), g)
	_, err = ParseGain("8")
	assert.True(t, IsInvalidArgument(err))

	r, err := ParseDataRate("3300")
	require.NoError(t, err)
	assert.Equal(t, DataRate3300, r)
	r, err = ParseDataRate("4")
	require.NoError(t, err)
	assert.Equal(t, DataRate1600, r)

	ch, err := ParseChannel("AIN2")
	require.NoError(t, err)
	assert.Equal(t, ChannelAIN2, ch)

	s, err := ParseStatus("start")
	require.NoError(t, err)
	assert.Equal(t, StatusStart, s)

	q, err := ParseComparatorQueue("disabled")
	require.NoError(t, err)
	assert.Equal(t, ComparatorDisabled, q)

	_, err = ParseMode("sometimes")
	assert.True(t, IsInvalidArgument(err))
}

func TestConfigYAML(t *testing.T) {
	var c Config
	src := `
channel: ain1
gain: "1.024"
mode: continuous
data_rate: 250
comparator_mode: window
comparator_polarity: active-high
comparator_latch: latching
comparator_queue: after-2
`
	require.NoError(t, yaml.Unmarshal([]byte(src), &c))
	assert.Equal(t, Config{
		Channel:            ChannelAIN1,
		Gain:               Gain4,
		Mode:               ModeContinuous,
		DataRate:           DataRate250,
		ComparatorMode:     ComparatorWindow,
		ComparatorPolarity: ComparatorActiveHigh,
		ComparatorLatch:    ComparatorLatching,
		ComparatorQueue:    ComparatorAssertAfter2,
	}, c)

	err := yaml.Unmarshal([]byte("gain: huge\n"), &c)
	assert.Error(t, err)
}

func TestConfigJSON(t *testing.T) {
	encoded, err := json.Marshal(DefaultConfig())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "ready",
		"channel": "p0n1",
		"gain": "2.048",
		"mode": "single",
		"data_rate": "1600",
		"comparator_mode": "traditional",
		"comparator_polarity": "active-low",
		"comparator_latch": "non-latching",
		"comparator_queue": "disabled"
	}`, string(encoded))

	var decoded Config
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, DefaultConfig(), decoded)
}

func TestFieldTextRoundTrip(t *testing.T) {
	type textField interface {
		MarshalText() ([]byte, error)
	}
	for v := uint8(0); v <= 7; v++ {
		fields := []struct {
			value  textField
			target interface{ UnmarshalText([]byte) error }
			width  uint8
		}{
			{Status(v & 1), new(Status), 1},
			{Channel(v), new(Channel), 7},
			{Gain(v), new(Gain), 7},
			{Mode(v & 1), new(Mode), 1},
			{DataRate(v), new(DataRate), 7},
			{ComparatorMode(v & 1), new(ComparatorMode), 1},
			{ComparatorPolarity(v & 1), new(ComparatorPolarity), 1},
			{ComparatorLatch(v & 1), new(ComparatorLatch), 1},
			{ComparatorQueue(v & 3), new(ComparatorQueue), 3},
		}
		for _, f := range fields {
			text, err := f.value.MarshalText()
			require.NoError(t, err)
			require.NoError(t, f.target.UnmarshalText(text), "%T %s", f.value, text)
			assert.EqualValues(t, f.value, reflectElem(f.target), "%T %s", f.value, text)
		}
	}
	assert.Equal(t, "0.256/6", Gain(6).String())
	assert.Equal(t, "0.256/7", Gain(7).String())
	assert.Equal(t, "3300/7", DataRate(7).String())
}

// reflectElem dereferences the field pointers used in TestFieldTextRoundTrip.
func reflectElem(p interface{}) interface{} {
	switch x := p.(type) {
	case *Status:
		return *x
	case *Channel:
		return *x
	case *Gain:
		return *x
	case *Mode:
		return *x
	case *DataRate:
		return *x
	case *ComparatorMode:
		return *x
	case *ComparatorPolarity:
		return *x
	case *ComparatorLatch:
		return *x
	case *ComparatorQueue:
		return *x
	}
	return nil
}

func TestConfigJSONAndYAMLKeepEveryWord(t *testing.T) {
	for w := 0; w <= 0xFFFF; w++ {
		c := DecodeConfig(uint16(w))

		encoded, err := json.Marshal(c)
		require.NoError(t, err)
		var fromJSON Config
		require.NoError(t, json.Unmarshal(encoded, &fromJSON))
		require.Equal(t, uint16(w), fromJSON.Encode(), "json %s", encoded)

		if w%97 == 0 {
			encoded, err := yaml.Marshal(c)
			require.NoError(t, err)
			var fromYAML Config
			require.NoError(t, yaml.Unmarshal(encoded, &fromYAML))
			require.Equal(t, uint16(w), fromYAML.Encode(), "yaml %s", encoded)
		}
	}
}

func TestConfigJSONAcceptsNumbers(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"data_rate": 1600, "gain": 4.096, "channel": 4, "mode": "continuous", "comparator_queue": null}`), &c))
	assert.Equal(t, DataRate1600, c.DataRate)
	assert.Equal(t, Gain1, c.Gain)
	assert.Equal(t, ChannelAIN0, c.Channel)
	assert.Equal(t, ModeContinuous, c.Mode)
	assert.Equal(t, ComparatorAssertAfter1, c.ComparatorQueue)

	assert.Error(t, json.Unmarshal([]byte(`{"data_rate": 1601}`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"gain": true}`), &c))
}
