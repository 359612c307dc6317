package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("load", nil)
	m.ObserveOperation("load", nil)
	m.ObserveOperation("save", errors.New("disk full"))

	if got := testutil.ToFloat64(m.StoreOperations.WithLabelValues("load", "ok")); got != 2 {
		t.Errorf("load ok: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.StoreOperations.WithLabelValues("save", "error")); got != 1 {
		t.Errorf("save error: got %v, want 1", got)
	}
}

func TestObserveRecovery(t *testing.T) {
	m := New()
	m.ObserveRecovery("invalid_json")

	if got := testutil.ToFloat64(m.StoreRecoveries.WithLabelValues("invalid_json")); got != 1 {
		t.Errorf("invalid_json: got %v, want 1", got)
	}
}
