package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordInteraction(t *testing.T) {
	recorded := testutil.ToFloat64(InteractionsRecorded)
	completed := testutil.ToFloat64(EventsCompleted)

	RecordInteraction(false)
	RecordInteraction(true)

	if got := testutil.ToFloat64(InteractionsRecorded) - recorded; got != 2 {
		t.Errorf("interactions delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(EventsCompleted) - completed; got != 1 {
		t.Errorf("completed delta = %v, want 1", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/catalog", "200")
	before := testutil.ToFloat64(c)
	RecordHTTPRequest("GET", "/api/catalog", 200, 15*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("requests delta = %v, want 1", got)
	}
}

func TestRecordDBQueryCountsErrors(t *testing.T) {
	c := DBQueryErrors.WithLabelValues("put", "interactions")
	before := testutil.ToFloat64(c)

	RecordDBQuery("put", "interactions", time.Millisecond, nil)
	RecordDBQuery("put", "interactions", time.Millisecond, errors.New("locked"))

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("errors delta = %v, want 1", got)
	}
}

func TestRecordHeartbeat(t *testing.T) {
	c := Heartbeats.WithLabelValues("stale")
	before := testutil.ToFloat64(c)
	RecordHeartbeat("stale")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("stale delta = %v, want 1", got)
	}
}
