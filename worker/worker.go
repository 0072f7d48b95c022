// Package worker moves candidate generation off the keystroke path (spec
// §3, §4.8): a single goroutine drains a bounded request channel to its
// latest entry, runs the generator, and publishes results on a bounded
// return channel. Cancellation is implicit: the session only applies a
// result whose generation matches its current one.
package worker

import (
	"lexime/candidate"
	"lexime/lexlog"
)

// Request is one generation-tagged candidate request (spec §4.8).
type Request struct {
	Generation uint64
	Reading    string
	Mode       candidate.Mode
}

// Result is one generation-tagged candidate result.
type Result struct {
	Generation uint64
	Result     candidate.Result
}

// Worker runs CandidateGenerator.Generate on a dedicated goroutine,
// grounded on the teacher's StartTokenizer goroutine-with-channels shape
// (one goroutine, buffered channels, publish-don't-block).
type Worker struct {
	gen    *candidate.Generator
	now    func() uint64
	reqCh  chan Request
	resCh  chan Result
	stopCh chan struct{}
}

// Start launches the worker goroutine. now supplies the clock used for
// boost decay, injectable for tests.
func Start(gen *candidate.Generator, now func() uint64) *Worker {
	w := &Worker{
		gen:    gen,
		now:    now,
		reqCh:  make(chan Request, 1),
		resCh:  make(chan Result, 1),
		stopCh: make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit enqueues req, replacing any not-yet-processed request rather than
// blocking the caller (spec §4.8: "the worker drains to the latest request
// only"). Never blocks; safe to call from the session's event thread.
func (w *Worker) Submit(req Request) {
	select {
	case w.reqCh <- req:
		return
	default:
	}
	select {
	case <-w.reqCh:
	default:
	}
	select {
	case w.reqCh <- req:
	default:
	}
}

// TryRecv drains at most one pending result, non-blocking. Session.poll
// calls this and applies the result only if its generation is still current
// (spec §4.8); a stale result is simply not applied (no error, per spec
// §7's StaleAsync policy).
func (w *Worker) TryRecv() (Result, bool) {
	select {
	case r := <-w.resCh:
		return r, true
	default:
		return Result{}, false
	}
}

// Stop shuts the worker goroutine down. Not required for normal operation
// (the worker is process-lifetime), useful in tests.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) run() {
	for {
		select {
		case <-w.stopCh:
			return
		case req := <-w.reqCh:
			w.process(req)
		}
	}
}

// process runs one request with a recover guard: a panic inside Generate
// must not poison the UserHistory lock or kill the worker goroutine (spec
// §5, §7). The generator call itself never holds the lock across the
// panic boundary since history.Store's methods return before Generate's
// caller regains control, so recovering here is sufficient to preserve the
// session without a separate goroutine restart.
func (w *Worker) process(req Request) {
	defer func() {
		if r := recover(); r != nil {
			lexlog.Errorf("worker: recovered from panic generating candidates: %v", r)
		}
	}()

	result := w.gen.Generate(req.Reading, req.Mode, w.now())
	res := Result{Generation: req.Generation, Result: result}

	select {
	case w.resCh <- res:
		return
	default:
	}
	select {
	case <-w.resCh:
	default:
	}
	select {
	case w.resCh <- res:
	default:
	}
}
