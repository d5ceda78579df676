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
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// fieldNames maps the encoded values of a config field to text.
type fieldNames struct {
	kind    string
	mask    uint8
	names   []string         // index is the encoded value
	aliases map[string]uint8 // extra accepted input
}

// name returns the text for the given encoded value.
func (n fieldNames) name(v uint8) string {
	if int(v) < len(n.names) {
		return n.names[v]
	}
	return strconv.Itoa(int(v))
}

// parse converts text into an encoded value.
// Names, aliases and plain numbers (that fit in the field) are accepted.
func (n fieldNames) parse(s string) (uint8, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, x := range n.names {
		if x == s {
			return uint8(i), nil
		}
	}
	if v, found := n.aliases[s]; found {
		return v, nil
	}
	if v, err := strconv.ParseUint(s, 0, 8); err == nil && uint8(v)&^n.mask == 0 {
		return uint8(v), nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "unknown %s '%s'", n.kind, s)
}

var (
	statusNames = fieldNames{
		kind:  "status",
		mask:  statusMask,
		names: []string{"busy", "ready"},
		aliases: map[string]uint8{
			"no-effect": 0,
			"start":     1,
		},
	}
	channelNames = fieldNames{
		kind:  "channel",
		mask:  channelMask,
		names: []string{"p0n1", "p0n3", "p1n3", "p2n3", "ain0", "ain1", "ain2", "ain3"},
	}
	gainNames = fieldNames{
		kind:  "gain",
		mask:  gainMask,
		// 6 & 7 select 0.256V as well, but keep their own bits
		names: []string{"6.144", "4.096", "2.048", "1.024", "0.512", "0.256", "0.256/6", "0.256/7"},
		aliases: map[string]uint8{
			"2/3": 0,
			"x1":  1,
			"x2":  2,
			"x4":  3,
			"x8":  4,
			"x16": 5,
		},
	}
	modeNames = fieldNames{
		kind:  "mode",
		mask:  modeMask,
		names: []string{"continuous", "single"},
	}
	dataRateNames = fieldNames{
		kind:  "data rate",
		mask:  dataRateMask,
		// 7 runs at 3300SPS as well, but keeps its own bits
		names: []string{"128", "250", "490", "920", "1600", "2400", "3300", "3300/7"},
	}
	comparatorModeNames = fieldNames{
		kind:  "comparator mode",
		mask:  comparatorModeMask,
		names: []string{"traditional", "window"},
	}
	comparatorPolarityNames = fieldNames{
		kind:  "comparator polarity",
		mask:  comparatorPolarityMask,
		names: []string{"active-low", "active-high"},
	}
	comparatorLatchNames = fieldNames{
		kind:  "comparator latch",
		mask:  comparatorLatchMask,
		names: []string{"non-latching", "latching"},
	}
	comparatorQueueNames = fieldNames{
		kind:  "comparator queue",
		mask:  comparatorQueueMask,
		names: []string{"after-1", "after-2", "after-4", "disabled"},
	}
)

func (s Status) String() string             { return statusNames.name(uint8(s)) }
func (c Channel) String() string            { return channelNames.name(uint8(c)) }
func (g Gain) String() string               { return gainNames.name(uint8(g)) }
func (m Mode) String() string               { return modeNames.name(uint8(m)) }
func (r DataRate) String() string           { return dataRateNames.name(uint8(r)) }
func (m ComparatorMode) String() string     { return comparatorModeNames.name(uint8(m)) }
func (p ComparatorPolarity) String() string { return comparatorPolarityNames.name(uint8(p)) }
func (l ComparatorLatch) String() string    { return comparatorLatchNames.name(uint8(l)) }
func (q ComparatorQueue) String() string    { return comparatorQueueNames.name(uint8(q)) }

// ParseStatus parses a status from text ("busy", "ready", "start", "0", "1").
func ParseStatus(s string) (Status, error) {
	v, err := statusNames.parse(s)
	return Status(v), err
}

// ParseChannel parses a channel from text ("p0n1" ... "p2n3", "ain0" ... "ain3").
func ParseChannel(s string) (Channel, error) {
	v, err := channelNames.parse(s)
	return Channel(v), err
}

// ParseGain parses a gain from its full scale range ("4.096") or amplification ("x1").
func ParseGain(s string) (Gain, error) {
	v, err := gainNames.parse(s)
	return Gain(v), err
}

// ParseMode parses an operating mode ("continuous", "single").
func ParseMode(s string) (Mode, error) {
	v, err := modeNames.parse(s)
	return Mode(v), err
}

// ParseDataRate parses a data rate given in samples per second ("1600").
// Plain field values (0-7) are accepted as well.
func ParseDataRate(s string) (DataRate, error) {
	v, err := dataRateNames.parse(s)
	return DataRate(v), err
}

func ParseComparatorMode(s string) (ComparatorMode, error) {
	v, err := comparatorModeNames.parse(s)
	return ComparatorMode(v), err
}

func ParseComparatorPolarity(s string) (ComparatorPolarity, error) {
	v, err := comparatorPolarityNames.parse(s)
	return ComparatorPolarity(v), err
}

func ParseComparatorLatch(s string) (ComparatorLatch, error) {
	v, err := comparatorLatchNames.parse(s)
	return ComparatorLatch(v), err
}

func ParseComparatorQueue(s string) (ComparatorQueue, error) {
	v, err := comparatorQueueNames.parse(s)
	return ComparatorQueue(v), err
}

// Text (un)marshaling, used by the YAML config file and the HTTP API.

func (s Status) MarshalText() ([]byte, error)             { return []byte(s.String()), nil }
func (c Channel) MarshalText() ([]byte, error)            { return []byte(c.String()), nil }
func (g Gain) MarshalText() ([]byte, error)               { return []byte(g.String()), nil }
func (m Mode) MarshalText() ([]byte, error)               { return []byte(m.String()), nil }
func (r DataRate) MarshalText() ([]byte, error)           { return []byte(r.String()), nil }
func (m ComparatorMode) MarshalText() ([]byte, error)     { return []byte(m.String()), nil }
func (p ComparatorPolarity) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (l ComparatorLatch) MarshalText() ([]byte, error)    { return []byte(l.String()), nil }
func (q ComparatorQueue) MarshalText() ([]byte, error)    { return []byte(q.String()), nil }

func (s *Status) UnmarshalText(text []byte) (err error) {
	*s, err = ParseStatus(string(text))
	return err
}

func (c *Channel) UnmarshalText(text []byte) (err error) {
	*c, err = ParseChannel(string(text))
	return err
}

func (g *Gain) UnmarshalText(text []byte) (err error) {
	*g, err = ParseGain(string(text))
	return err
}

func (m *Mode) UnmarshalText(text []byte) (err error) {
	*m, err = ParseMode(string(text))
	return err
}

func (r *DataRate) UnmarshalText(text []byte) (err error) {
	*r, err = ParseDataRate(string(text))
	return err
}

func (m *ComparatorMode) UnmarshalText(text []byte) (err error) {
	*m, err = ParseComparatorMode(string(text))
	return err
}

func (p *ComparatorPolarity) UnmarshalText(text []byte) (err error) {
	*p, err = ParseComparatorPolarity(string(text))
	return err
}

func (l *ComparatorLatch) UnmarshalText(text []byte) (err error) {
	*l, err = ParseComparatorLatch(string(text))
	return err
}

func (q *ComparatorQueue) UnmarshalText(text []byte) (err error) {
	*q, err = ParseComparatorQueue(string(text))
	return err
}

// JSON input accepts the text form as well as plain numbers,
// so {"data_rate": 1600} and {"data_rate": "1600"} are equivalent.

// jsonText returns the text of a JSON string or number.
func jsonText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", errors.Wrapf(ErrInvalidArgument, "expected string or number, got %s", data)
	}
	return n.String(), nil
}

// unmarshalJSONText decodes a JSON string or number into the given text unmarshaler.
// JSON null leaves the value unchanged.
func unmarshalJSONText(data []byte, u interface{ UnmarshalText([]byte) error }) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	s, err := jsonText(data)
	if err != nil {
		return err
	}
	return u.UnmarshalText([]byte(s))
}

func (s *Status) UnmarshalJSON(data []byte) error             { return unmarshalJSONText(data, s) }
func (c *Channel) UnmarshalJSON(data []byte) error            { return unmarshalJSONText(data, c) }
func (g *Gain) UnmarshalJSON(data []byte) error               { return unmarshalJSONText(data, g) }
func (m *Mode) UnmarshalJSON(data []byte) error               { return unmarshalJSONText(data, m) }
func (r *DataRate) UnmarshalJSON(data []byte) error           { return unmarshalJSONText(data, r) }
func (m *ComparatorMode) UnmarshalJSON(data []byte) error     { return unmarshalJSONText(data, m) }
func (p *ComparatorPolarity) UnmarshalJSON(data []byte) error { return unmarshalJSONText(data, p) }
func (l *ComparatorLatch) UnmarshalJSON(data []byte) error    { return unmarshalJSONText(data, l) }
func (q *ComparatorQueue) UnmarshalJSON(data []byte) error    { return unmarshalJSONText(data, q) }
