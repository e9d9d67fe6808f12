package httpapi

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncrementBadRequest_IncrementsCounter(t *testing.T) {
	baseline := testutil.ToFloat64(badRequestsTotal.WithLabelValues("invalid_json"))
	IncrementBadRequest("invalid_json")
	IncrementBadRequest("invalid_json")
	got := testutil.ToFloat64(badRequestsTotal.WithLabelValues("invalid_json"))
	if got < baseline+2 {
		t.Fatalf("expected bad request counter >= %v, got %v", baseline+2, got)
	}

	before := testutil.ToFloat64(badRequestsTotal.WithLabelValues("unspecified"))
	IncrementBadRequest("")
	after := testutil.ToFloat64(badRequestsTotal.WithLabelValues("unspecified"))
	if after < before+1 {
		t.Fatalf("expected unspecified reason to increment by at least 1: before=%v after=%v", before, after)
	}
}

func TestGenerateValidationCountsReason(t *testing.T) {
	before := testutil.ToFloat64(badRequestsTotal.WithLabelValues("invalid_field"))
	_ = postGenerate(t, NewMux(&mockService{}), `{"prompt":""}`)
	if got := testutil.ToFloat64(badRequestsTotal.WithLabelValues("invalid_field")); got != before+1 {
		t.Fatalf("invalid_field = %v, want %v", got, before+1)
	}
}
