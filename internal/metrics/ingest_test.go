package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIngestRecorder(t *testing.T) {
	var r IngestRecorder

	before := testutil.ToFloat64(IngestItemsTotal.WithLabelValues("url", "error"))
	r.ObserveIngest("url", "error", time.Second)
	r.ObserveIngest("", "error", time.Millisecond)

	if got := testutil.ToFloat64(IngestItemsTotal.WithLabelValues("url", "error")); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
	if got := testutil.ToFloat64(IngestItemsTotal.WithLabelValues("unknown", "error")); got < 1 {
		t.Errorf("expected unknown type to be counted, got %v", got)
	}
}

func TestRegisterIngestMetrics_Idempotent(t *testing.T) {
	RegisterIngestMetrics()
	RegisterIngestMetrics()
}
