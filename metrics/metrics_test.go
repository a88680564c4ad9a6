package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommend(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{"ok", OutcomeOK},
		{"underdetermined", OutcomeUnderdetermined},
		{"invalid", OutcomeInvalid},
		{"error", OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(RecommendRequests.WithLabelValues(tt.outcome))
			RecordRecommend(tt.outcome, 20*time.Millisecond, 42)
			after := testutil.ToFloat64(RecommendRequests.WithLabelValues(tt.outcome))
			if after != before+1 {
				t.Errorf("counter = %v, want %v", after, before+1)
			}
		})
	}
}

func TestRecordCatalogRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("games", "ok"))
	errBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("games", "error"))

	RecordCatalogRequest("games", nil)
	RecordCatalogRequest("games", errors.New("boom"))
	RecordCatalogRequest("games", errors.New("boom"))

	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("games", "ok")); got != okBefore+1 {
		t.Errorf("ok = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("games", "error")); got != errBefore+2 {
		t.Errorf("error = %v, want %v", got, errBefore+2)
	}
}

func TestCircuitAndCache(t *testing.T) {
	SetCatalogCircuitState(2)
	if got := testutil.ToFloat64(CatalogCircuitState); got != 2 {
		t.Errorf("circuit state = %v, want 2", got)
	}
	SetCatalogCircuitState(0)

	before := testutil.ToFloat64(CacheLookups.WithLabelValues(CacheHit))
	RecordCacheLookup(CacheHit)
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues(CacheHit)); got != before+1 {
		t.Errorf("cache hits = %v, want %v", got, before+1)
	}
}
