package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexime/candidate"
	"lexime/connection"
	"lexime/dict"
)

func testGenerator() *candidate.Generator {
	d := dict.New()
	d.Insert("か", dict.Entry{Reading: "か", Surface: "可", WordCost: -100})
	return candidate.NewGenerator(d, connection.Unigram(), nil, candidate.DefaultConfig())
}

func TestSubmitAndRecvRoundTrip(t *testing.T) {
	w := Start(testGenerator(), func() uint64 { return 0 })
	defer w.Stop()

	w.Submit(Request{Generation: 1, Reading: "か", Mode: candidate.Standard})

	var res Result
	var ok bool
	require.Eventually(t, func() bool {
		res, ok = w.TryRecv()
		return ok
	}, time.Second, time.Millisecond)

	assert.Equal(t, uint64(1), res.Generation)
	assert.Contains(t, res.Result.Surfaces, "可")
}

func TestTryRecvReturnsFalseWhenEmpty(t *testing.T) {
	w := Start(testGenerator(), func() uint64 { return 0 })
	defer w.Stop()

	_, ok := w.TryRecv()
	assert.False(t, ok)
}

func TestSubmitDrainsToLatestRequestUnderBackpressure(t *testing.T) {
	// A capacity-1 channel with no reader: two rapid submits must not block,
	// and the second replaces the first (drain-to-latest).
	w := &Worker{
		reqCh:  make(chan Request, 1),
		resCh:  make(chan Result, 1),
		stopCh: make(chan struct{}),
	}
	w.Submit(Request{Generation: 1})
	w.Submit(Request{Generation: 2})

	select {
	case req := <-w.reqCh:
		assert.Equal(t, uint64(2), req.Generation)
	default:
		t.Fatal("expected a pending request")
	}
}

func TestStopHaltsProcessing(t *testing.T) {
	w := Start(testGenerator(), func() uint64 { return 0 })
	w.Stop()

	w.Submit(Request{Generation: 1, Reading: "か", Mode: candidate.Standard})
	// run() has already returned; nothing should ever appear on resCh.
	time.Sleep(20 * time.Millisecond)
	_, ok := w.TryRecv()
	assert.False(t, ok)
}
