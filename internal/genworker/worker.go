// Package genworker implements the background generation job runner: a
// single goroutine draining a FIFO of generation requests and invoking
// the external model engine synchronously, off the control loop.
// Grounded on the single-writer/many-reader goroutine loops of
// go-sequence/sequencer/manager.go (midiOutputLoop, queueManagerLoop)
// adapted from a channel-select loop to a condition-variable FIFO,
// since a job here cannot be cancelled mid-flight the way a queued
// MIDI event can be skipped.
package genworker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/El-Habanero12/aria/internal/model"
)

// Result holds the outcome of one generation job: exactly one of Blob
// or Err is set.
type Result struct {
	Blob []byte
	Err  error
}

// Job is an immutable generation request. The submission side must
// never mutate a Job after Submit; the worker writes only to the
// result fields via complete, guarded by done being closed exactly
// once.
type Job struct {
	ID          uuid.UUID
	BarIndex    uint64
	Prompt      []byte
	GenBars     int
	Temperature float64
	TopP        float64

	done   chan struct{}
	result Result
}

// NewJob constructs a job ready for submission.
func NewJob(barIndex uint64, prompt []byte, genBars int, temperature, topP float64) *Job {
	return &Job{
		ID:          uuid.New(),
		BarIndex:    barIndex,
		Prompt:      prompt,
		GenBars:     genBars,
		Temperature: temperature,
		TopP:        topP,
		done:        make(chan struct{}),
	}
}

// Ready reports whether the job's result is available, without
// blocking. The control loop polls this every iteration.
func (j *Job) Ready() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Result returns the job's outcome. Only valid once Ready() is true.
func (j *Job) Result() Result {
	return j.result
}

func (j *Job) complete(r Result) {
	j.result = r
	close(j.done)
}

// Worker runs jobs one at a time, in submission order.
type Worker struct {
	engine model.Engine
	logger *zap.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*Job
	stopping bool
	stopped  chan struct{}
}

// New returns a Worker that will invoke engine for each submitted job.
func New(engine model.Engine, logger *zap.Logger) *Worker {
	w := &Worker{
		engine:  engine,
		logger:  logger,
		stopped: make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Start launches the worker goroutine. Call once.
func (w *Worker) Start() {
	go w.run()
}

// Submit enqueues a job without blocking the caller. Queue depth is
// expected <= 1 in steady state but is unbounded here — a slow-running
// job simply causes later jobs to queue rather than be dropped.
func (w *Worker) Submit(job *Job) {
	w.mu.Lock()
	w.queue = append(w.queue, job)
	w.mu.Unlock()
	w.cond.Signal()

	w.logger.Info("[enqueue]",
		zap.String("job_id", job.ID.String()),
		zap.Uint64("bar_index", job.BarIndex),
		zap.Int("gen_bars", job.GenBars),
	)
}

// Stop signals the worker to finish its in-flight job (if any) and
// exit; it does not cancel a running model call. Blocks until the
// worker goroutine has returned.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stopping = true
	w.mu.Unlock()
	w.cond.Broadcast()
	<-w.stopped
}

func (w *Worker) nextJob() *Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.queue) == 0 && !w.stopping {
		w.cond.Wait()
	}
	if w.stopping || len(w.queue) == 0 {
		return nil
	}
	job := w.queue[0]
	w.queue = w.queue[1:]
	return job
}

func (w *Worker) run() {
	defer close(w.stopped)
	for {
		job := w.nextJob()
		if job == nil {
			return
		}

		w.logger.Info("[gen_worker] Starting",
			zap.String("job_id", job.ID.String()),
			zap.Uint64("bar_index", job.BarIndex),
		)

		horizonSeconds := float64(job.GenBars) * 1.0
		blob, err := w.engine.Generate(context.Background(), job.Prompt, horizonSeconds, job.Temperature, job.TopP)

		if err != nil {
			w.logger.Warn("[gen_worker] done", zap.String("job_id", job.ID.String()), zap.Error(err))
			job.complete(Result{Err: err})
			continue
		}

		w.logger.Info("[gen_worker] done", zap.String("job_id", job.ID.String()), zap.Int("bytes", len(blob)))
		job.complete(Result{Blob: blob})
	}
}
