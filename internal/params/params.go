// Package params defines the externally tunable device parameters.
package params

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownParam is returned when a parameter name is not recognised.
var ErrUnknownParam = errors.New("unknown parameter")

// Params is a snapshot of all device parameters.
// Heights and lengths are in cm, speeds and light levels on the 0..1023 scale.
type Params struct {
	Automate       bool
	WindingLength  float64
	BaseHeight     float64
	IdleHeight     float64
	RiseHeight     float64
	ResetHeight    float64
	IdleLight      int
	FlashIntensity int
	MoveUpSpeed    int
	MoveDownSpeed  int
	ZeroSpeed      int
	ZeroSwitch     bool
	InvertEncoder  bool
	MovePrecision  float64 // synced for the companion app; approach uses a fixed window
	PIRSensitivity int
	PIRInterval    int // ms
}

// Defaults returns the factory parameter set.
func Defaults() Params {
	return Params{
		Automate:       false,
		WindingLength:  7.5,
		BaseHeight:     50,
		IdleHeight:     100,
		RiseHeight:     150,
		ResetHeight:    200,
		IdleLight:      127,
		FlashIntensity: 1023,
		MoveUpSpeed:    512,
		MoveDownSpeed:  512,
		ZeroSpeed:      500,
		ZeroSwitch:     true,
		InvertEncoder:  true,
		MovePrecision:  1,
		PIRSensitivity: 300,
		PIRInterval:    2000,
	}
}

type kind int

const (
	kindBool kind = iota
	kindFloat
	kindInt
)

type field struct {
	name string
	kind kind
	b    func(*Params) *bool
	f    func(*Params) *float64
	i    func(*Params) *int
}

// fields lists parameters in their published order.
var fields = []field{
	{name: "automate", kind: kindBool, b: func(p *Params) *bool { return &p.Automate }},
	{name: "winding-length", kind: kindFloat, f: func(p *Params) *float64 { return &p.WindingLength }},
	{name: "base-height", kind: kindFloat, f: func(p *Params) *float64 { return &p.BaseHeight }},
	{name: "idle-height", kind: kindFloat, f: func(p *Params) *float64 { return &p.IdleHeight }},
	{name: "rise-height", kind: kindFloat, f: func(p *Params) *float64 { return &p.RiseHeight }},
	{name: "reset-height", kind: kindFloat, f: func(p *Params) *float64 { return &p.ResetHeight }},
	{name: "idle-light", kind: kindInt, i: func(p *Params) *int { return &p.IdleLight }},
	{name: "flash-intensity", kind: kindInt, i: func(p *Params) *int { return &p.FlashIntensity }},
	{name: "move-up-speed", kind: kindInt, i: func(p *Params) *int { return &p.MoveUpSpeed }},
	{name: "move-down-speed", kind: kindInt, i: func(p *Params) *int { return &p.MoveDownSpeed }},
	{name: "zero-speed", kind: kindInt, i: func(p *Params) *int { return &p.ZeroSpeed }},
	{name: "zero-switch", kind: kindBool, b: func(p *Params) *bool { return &p.ZeroSwitch }},
	{name: "invert-encoder", kind: kindBool, b: func(p *Params) *bool { return &p.InvertEncoder }},
	{name: "move-precision", kind: kindFloat, f: func(p *Params) *float64 { return &p.MovePrecision }},
	{name: "pir-sensitivity", kind: kindInt, i: func(p *Params) *int { return &p.PIRSensitivity }},
	{name: "pir-interval", kind: kindInt, i: func(p *Params) *int { return &p.PIRInterval }},
}

func lookup(name string) (field, bool) {
	for _, f := range fields {
		if f.name == name {
			return f, true
		}
	}
	return field{}, false
}

// Names returns all parameter names in published order.
func Names() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// Set parses value and assigns it to the named parameter.
// Malformed numbers become zero and unrecognised booleans become false,
// matching how the device firmware has always treated bad input.
func (p *Params) Set(name, value string) error {
	f, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}

	switch f.kind {
	case kindBool:
		*f.b(p) = ParseBool(value)
	case kindFloat:
		*f.f(p) = ParseFloat(value)
	case kindInt:
		*f.i(p) = ParseInt(value)
	}
	return nil
}

// Get returns the named parameter formatted for publishing.
func (p Params) Get(name string) (string, bool) {
	f, ok := lookup(name)
	if !ok {
		return "", false
	}

	switch f.kind {
	case kindBool:
		return FormatBool(*f.b(&p)), true
	case kindFloat:
		return FormatFloat(*f.f(&p)), true
	default:
		return strconv.Itoa(*f.i(&p)), true
	}
}

// ParseBool accepts on/off, true/false, yes/no and 1/0.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true
	}
	return false
}

// FormatBool renders b the way bool values are published.
func FormatBool(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// FormatFloat renders v with at most two decimals.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
