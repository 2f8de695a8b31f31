package midiio

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// FindInPort resolves a configured port name to a live input port: an
// exact match first, then a case-insensitive substring match, mirroring
// go-sequence/cmd/miditest's detectLaunchpad matching strategy.
func FindInPort(name string) (drivers.In, error) {
	ports := gomidi.GetInPorts()
	if p, ok := matchExact(ports, name); ok {
		return p, nil
	}
	if p, ok := matchPrefix(ports, name); ok {
		return p, nil
	}
	return nil, fmt.Errorf("midiio: no input port matching %q", name)
}

// FindOutPort resolves a configured port name to a live output port.
func FindOutPort(name string) (drivers.Out, error) {
	ports := gomidi.GetOutPorts()
	if p, ok := matchExactOut(ports, name); ok {
		return p, nil
	}
	if p, ok := matchPrefixOut(ports, name); ok {
		return p, nil
	}
	return nil, fmt.Errorf("midiio: no output port matching %q", name)
}

func matchExact(ports []drivers.In, name string) (drivers.In, bool) {
	for _, p := range ports {
		if p.String() == name {
			return p, true
		}
	}
	return nil, false
}

func matchPrefix(ports []drivers.In, name string) (drivers.In, bool) {
	needle := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			return p, true
		}
	}
	return nil, false
}

func matchExactOut(ports []drivers.Out, name string) (drivers.Out, bool) {
	for _, p := range ports {
		if p.String() == name {
			return p, true
		}
	}
	return nil, false
}

func matchPrefixOut(ports []drivers.Out, name string) (drivers.Out, bool) {
	needle := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			return p, true
		}
	}
	return nil, false
}
