// Command aria-bridge is the process entry point: it wires the MIDI
// transport, the generation engine client, and the bridge controller
// together and runs until interrupted. Flag parsing follows
// bureau-foundation-bureau/cmd/bureau-viewer's pflag.NewFlagSet +
// run() error pattern; bootstrap sequencing (load config, open
// devices, start goroutines) follows go-sequence/main.go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/El-Habanero12/aria/internal/barbuffer"
	"github.com/El-Habanero12/aria/internal/bridge"
	"github.com/El-Habanero12/aria/internal/config"
	"github.com/El-Habanero12/aria/internal/genworker"
	"github.com/El-Habanero12/aria/internal/logging"
	"github.com/El-Habanero12/aria/internal/midiio"
	"github.com/El-Habanero12/aria/internal/model"
	"github.com/El-Habanero12/aria/internal/monitor"
	"github.com/El-Habanero12/aria/internal/pulse"
	"github.com/El-Habanero12/aria/internal/schedqueue"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var dev bool
	var noMonitor bool

	flagSet := pflag.NewFlagSet("aria-bridge", pflag.ContinueOnError)
	flagSet.Uint64Var(&cfg.BeatsPerBar, "beats-per-bar", cfg.BeatsPerBar, "beats per bar")
	flagSet.Uint64Var(&cfg.Measures, "measures", cfg.Measures, "measures of continuation to generate (N)")
	flagSet.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "sampling temperature [0,2]")
	flagSet.Float64Var(&cfg.TopP, "top-p", cfg.TopP, "sampling top-p (0,1]")
	flagSet.Uint16Var(&cfg.TicksPerBeat, "ticks-per-beat", cfg.TicksPerBeat, "fallback ticks-per-quarter-note")
	flagSet.StringVar(&cfg.ClockPortName, "clock-port", cfg.ClockPortName, "MIDI clock source port name")
	flagSet.StringVar(&cfg.InputPortName, "input-port", cfg.InputPortName, "MIDI input port name")
	flagSet.StringVar(&cfg.OutputPortName, "output-port", cfg.OutputPortName, "MIDI output port name")
	flagSet.StringVar(&cfg.ModelEndpoint, "model-endpoint", cfg.ModelEndpoint, "generation engine HTTP endpoint")
	flagSet.BoolVar(&noMonitor, "no-monitor", false, "disable the status monitor TUI")
	flagSet.BoolVar(&dev, "dev", false, "use a human-readable development logger")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.PrintDefaults()
		return nil
	}
	if noMonitor {
		cfg.Monitor = false
	}
	if cfg.ClockPortName == "" || cfg.InputPortName == "" || cfg.OutputPortName == "" {
		return fmt.Errorf("clock-port, input-port, and output-port must all be set")
	}
	if cfg.ModelEndpoint == "" {
		return fmt.Errorf("model-endpoint must be set")
	}

	logger, err := logging.New(dev)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	clockPort, err := midiio.FindInPort(cfg.ClockPortName)
	if err != nil {
		return err
	}
	inputPort, err := midiio.FindInPort(cfg.InputPortName)
	if err != nil {
		return err
	}
	outputPort, err := midiio.FindOutPort(cfg.OutputPortName)
	if err != nil {
		return err
	}
	outputSink, err := midiio.NewGomidiOutputSink(outputPort)
	if err != nil {
		return err
	}
	defer outputSink.Close()

	engine := model.NewHTTPEngine(cfg.ModelEndpoint, logger)

	grid := pulse.New()
	pulsesPerBar := cfg.BeatsPerBar * 24
	buffer := barbuffer.New(pulsesPerBar)
	queue := schedqueue.New()
	worker := genworker.New(engine, logger)

	controller := bridge.New(
		bridge.Config{
			BeatsPerBar:  cfg.BeatsPerBar,
			GenBars:      cfg.Measures,
			Temperature:  cfg.Temperature,
			TopP:         cfg.TopP,
			TicksPerBeat: cfg.TicksPerBeat,
		},
		&midiio.GomidiClockSource{Port: clockPort},
		&midiio.GomidiInputSource{Port: inputPort},
		outputSink,
		grid,
		buffer,
		queue,
		worker,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- controller.Run(ctx) }()

	if cfg.Monitor {
		program := tea.NewProgram(monitor.New(controller))
		go func() {
			<-ctx.Done()
			program.Quit()
		}()
		if _, err := program.Run(); err != nil {
			logger.Warn("monitor exited with error", zap.Error(err))
		}
	}

	select {
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			return fmt.Errorf("bridge: %w", err)
		}
	case <-ctx.Done():
	}
	return nil
}
