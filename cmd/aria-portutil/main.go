// Command aria-portutil is a MIDI port diagnostic tool, adapted from
// go-sequence/cmd/miditest with the Launchpad-specific detection
// stripped: it lists ports and finds the input and output ports whose
// names contain a given substring, guarding against a
// hung CoreMIDI subsystem the same way go-sequence/cmd/miditest does.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "probe":
		if len(os.Args) < 3 {
			fmt.Println("usage: aria-portutil probe <port name substring>")
			os.Exit(1)
		}
		probe(os.Args[2])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("aria-portutil")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - list all MIDI ports (in and out)")
	fmt.Println("  probe <name>  - find ports matching a substring")
}

// portScan runs the two port-enumerating calls on a goroutine and
// bounds the wait, since a wedged CoreMIDI daemon can hang these calls
// indefinitely on macOS.
func portScan() (ins []drivers.In, outs []drivers.Out, ok bool) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: midi.GetInPorts(), outs: midi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, true
	case <-time.After(3 * time.Second):
		return nil, nil, false
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, ok := portScan()
	if !ok {
		fmt.Println("\nTIMEOUT! The MIDI subsystem appears hung.")
		os.Exit(1)
	}

	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func probe(needle string) {
	ins, outs, ok := portScan()
	if !ok {
		fmt.Println("TIMEOUT! The MIDI subsystem appears hung.")
		os.Exit(1)
	}

	needle = strings.ToLower(needle)
	found := false

	for i, p := range ins {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			fmt.Printf("input  %d: %s\n", i, p.String())
			found = true
		}
	}
	for i, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			fmt.Printf("output %d: %s\n", i, p.String())
			found = true
		}
	}

	if !found {
		fmt.Printf("no port matching %q\n", needle)
		os.Exit(1)
	}
}
