// Package bridge implements the bridge controller: the phase state
// machine, bar-boundary detection, prompt assembly,
// window enforcement, and output dispatch that ties the clock grid,
// bar buffer, scheduled queue, and generation worker together.
// Grounded on the run-loop shape of go-sequence/sequencer/manager.go
// (separate input/output goroutines plus a central manager loop) and
// the COLLECT/PLAY machine of
// original_source/real-time/ableton_bridge_engine.py.
package bridge

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/El-Habanero12/aria/internal/barbuffer"
	"github.com/El-Habanero12/aria/internal/genworker"
	"github.com/El-Habanero12/aria/internal/midiio"
	"github.com/El-Habanero12/aria/internal/midimsg"
	"github.com/El-Habanero12/aria/internal/pulse"
	"github.com/El-Habanero12/aria/internal/schedqueue"
	"github.com/El-Habanero12/aria/internal/smfcodec"
)

// Phase is the two-state machine driving the bridge's COLLECT/PLAY
// cycle.
type Phase uint8

const (
	PhaseCollect Phase = iota
	PhasePlay
)

func (p Phase) String() string {
	if p == PhasePlay {
		return "PLAY"
	}
	return "COLLECT"
}

// Config carries the bridge's runtime tunables.
type Config struct {
	BeatsPerBar  uint64
	GenBars      uint64 // N
	Temperature  float64
	TopP         float64
	TicksPerBeat uint16

	// PollInterval is how often the control loop wakes. Must stay well
	// under one pulse period since it never blocks on I/O.
	PollInterval time.Duration
}

// Controller owns every cross-component decision. Its phase,
// boundary-tracking, and pending-job fields are touched only from the
// tick loop goroutine: no mutex guards them, by design.
type Controller struct {
	cfg          Config
	pulsesPerBar uint64

	clock  midiio.ClockSource
	input  midiio.InputSource
	output midiio.OutputSink

	grid   *pulse.Grid
	buffer *barbuffer.Buffer
	queue  *schedqueue.Queue
	worker *genworker.Worker

	logger *zap.Logger

	phase                Phase
	boundaryInitialized  bool
	nextBarBoundaryPulse uint64
	modelEndSet          bool
	modelEndPulse        uint64
	pendingJob           *genworker.Job
	prevBarEvents        []midimsg.Event

	// status is published for the observability monitor, which runs on
	// its own goroutine; everything else on Controller is tick-loop-only.
	status atomic.Value // holds Status
}

// Status is a point-in-time snapshot of the controller, safe to read
// from any goroutine via Controller.Status.
type Status struct {
	Phase        Phase
	CurrentPulse uint64
	QueueSize    uint64
	Anchor       uint64
	AnchorSet    bool
	PendingJob   bool
}

// New wires a Controller from its collaborators. The caller retains
// ownership of starting/stopping worker separately from Run only in
// the sense that Run calls worker.Start/Stop itself.
func New(
	cfg Config,
	clock midiio.ClockSource,
	input midiio.InputSource,
	output midiio.OutputSink,
	grid *pulse.Grid,
	buffer *barbuffer.Buffer,
	queue *schedqueue.Queue,
	worker *genworker.Worker,
	logger *zap.Logger,
) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Millisecond
	}
	return &Controller{
		cfg:          cfg,
		pulsesPerBar: cfg.BeatsPerBar * 24,
		clock:        clock,
		input:        input,
		output:       output,
		grid:         grid,
		buffer:       buffer,
		queue:        queue,
		worker:       worker,
		logger:       logger,
		phase:        PhaseCollect,
	}
}

// Run starts the clock and input listeners and the generation worker,
// then blocks running the control loop until ctx is cancelled or a
// transport fails to start. A failure to connect either the clock or
// input source is fatal; mid-stream port loss is opaque below the
// midiio interfaces and is out of this package's scope.
func (c *Controller) Run(ctx context.Context) error {
	stopClock, err := c.clock.Listen(c.grid.Handle)
	if err != nil {
		return fmt.Errorf("bridge: clock source: %w", err)
	}
	defer stopClock()

	stopInput, err := c.input.Listen(c.onInputEvent)
	if err != nil {
		return fmt.Errorf("bridge: input source: %w", err)
	}
	defer stopInput()

	c.worker.Start()
	defer c.worker.Stop()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Controller) onInputEvent(evt midimsg.Event) {
	c.buffer.Append(evt, c.grid.PulseCount())
}

// tick runs one control-loop iteration: boundary detection, the
// boundary handler, result polling and scheduling, output dispatch,
// and the PLAY -> COLLECT transition, in that order.
func (c *Controller) tick() {
	currentPulse := c.grid.PulseCount()

	if anchor, ok := c.buffer.Anchor(); ok {
		if !c.boundaryInitialized {
			c.nextBarBoundaryPulse = anchor + c.pulsesPerBar
			c.boundaryInitialized = true
		}
		for c.phase == PhaseCollect && currentPulse >= c.nextBarBoundaryPulse {
			finishedBar := (c.nextBarBoundaryPulse-anchor)/c.pulsesPerBar - 1
			c.handleBoundary(finishedBar)
			c.nextBarBoundaryPulse += c.pulsesPerBar
		}
	}

	if c.phase == PhaseCollect && c.pendingJob != nil && c.pendingJob.Ready() {
		c.pollResult(currentPulse)
	}

	for _, entry := range c.queue.DrainDue(currentPulse) {
		if err := c.output.Send(entry.Event); err != nil {
			c.logger.Warn("output disconnect, dropping event", zap.Error(err))
		}
	}

	if c.phase == PhasePlay && c.modelEndSet && currentPulse >= c.modelEndPulse {
		c.queue.Clear()
		c.buffer.Clear()
		c.prevBarEvents = nil
		c.phase = PhaseCollect
		c.modelEndSet = false
		c.logger.Info("[phase] PLAY -> COLLECT", zap.Uint64("pulse", currentPulse))
	}

	anchor, anchorSet := c.buffer.Anchor()
	c.status.Store(Status{
		Phase:        c.phase,
		CurrentPulse: currentPulse,
		QueueSize:    c.queue.Size(),
		Anchor:       anchor,
		AnchorSet:    anchorSet,
		PendingJob:   c.pendingJob != nil,
	})
}

// Status returns the most recent snapshot published by the control
// loop. Safe for concurrent use by the observability monitor.
func (c *Controller) Status() Status {
	if v, ok := c.status.Load().(Status); ok {
		return v
	}
	return Status{Phase: PhaseCollect}
}

// handleBoundary runs when a bar closes. finishedBar is the bar that
// has just closed. An empty bar skips submission but still resets the
// two-bar prompt window.
func (c *Controller) handleBoundary(finishedBar uint64) {
	c.logger.Info("[bar_boundary]", zap.Uint64("bar_index", finishedBar))

	events := c.buffer.Take(finishedBar)
	if len(events) == 0 {
		c.prevBarEvents = nil
		return
	}

	prompt := make([]midimsg.Event, 0, len(c.prevBarEvents)+len(events))
	prompt = append(prompt, c.prevBarEvents...)
	prompt = append(prompt, events...)

	blob := smfcodec.EncodePrompt(prompt, c.cfg.TicksPerBeat)
	job := genworker.NewJob(finishedBar, blob, int(c.cfg.GenBars), c.cfg.Temperature, c.cfg.TopP)

	c.pendingJob = job
	c.worker.Submit(job)
	c.prevBarEvents = events
}

// pollResult consumes a completed generation job and schedules its
// output. It is only ever invoked while phase == COLLECT: a job that
// becomes ready during PLAY is left pending and consumed on the next
// COLLECT boundary rather than discarded outright.
func (c *Controller) pollResult(currentPulse uint64) {
	job := c.pendingJob
	c.pendingJob = nil
	result := job.Result()

	if result.Err != nil {
		c.logger.Warn("[ai_ready]", zap.String("job_id", job.ID.String()), zap.Error(result.Err))
		return
	}
	c.logger.Info("[ai_ready]", zap.String("job_id", job.ID.String()), zap.Int("bytes", len(result.Blob)))

	_, events, err := smfcodec.Decode(result.Blob, c.cfg.TicksPerBeat)
	if err != nil {
		c.logger.Warn("[schedule] discarding malformed generation",
			zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}

	boundaryPulse := currentPulse
	window := c.cfg.GenBars * c.pulsesPerBar
	batch := enforceWindow(events, boundaryPulse, window)

	if c.queue.Size() > 0 {
		c.queue.Clear()
	}
	c.queue.PushMany(batch)

	minPulse, maxPulse := batchRange(batch)
	c.logger.Info("[schedule]",
		zap.Uint64("boundary_pulse", boundaryPulse),
		zap.Uint64("window_end_pulse", boundaryPulse+window),
		zap.Uint64("min_target_pulse", minPulse),
		zap.Uint64("max_target_pulse", maxPulse),
		zap.Int("count", len(batch)),
	)

	c.phase = PhasePlay
	c.modelEndPulse = boundaryPulse + window
	c.modelEndSet = true
	c.logger.Info("[phase] COLLECT -> PLAY", zap.Uint64("model_end_pulse", c.modelEndPulse))
}

func batchRange(batch []schedqueue.Entry) (min, max uint64) {
	if len(batch) == 0 {
		return 0, 0
	}
	min, max = batch[0].TargetPulse, batch[0].TargetPulse
	for _, e := range batch[1:] {
		if e.TargetPulse < min {
			min = e.TargetPulse
		}
		if e.TargetPulse > max {
			max = e.TargetPulse
		}
	}
	return min, max
}
