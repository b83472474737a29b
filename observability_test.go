package ledgerskema

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedValidator(t *testing.T, oracle ExceptionOracle) (*Validator, *Metrics, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	def, err := NewTransactionSchema("transfer", map[string]any{
		"type":     "object",
		"required": []any{"id", "amount"},
		"properties": map[string]any{
			"id":     map[string]any{"type": "string"},
			"amount": map[string]any{"type": "integer", "minimum": 0},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	v, err := New(oracle, WithLogger(zap.New(core)), WithMetrics(m), WithTransactionSchemas(def))
	if err != nil {
		t.Fatal(err)
	}
	return v, m, logs
}

func mustDecode(t *testing.T, js string) any {
	t.Helper()
	v, err := DecodeRecord([]byte(js))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestApplySchema_MetricsByOutcome(t *testing.T) {
	v, m, _ := observedValidator(t, ExceptionFunc(func(id string) bool { return id == "old" }))

	records := []string{
		`{"height": 1, "transactions": [{"id": "a", "amount": 1, "signature": "s"}]}`,
		`{"height": 2, "transactions": [{"id": "old", "amount": -1, "signature": "s"}]}`,
		`{"height": 3, "transactions": [{"id": "new", "amount": -1, "signature": "s"}]}`,
	}
	for _, r := range records {
		_, _ = v.ApplySchema(mustDecode(t, r))
	}

	for outcome, want := range map[string]float64{
		OutcomeAccepted:  1,
		OutcomeTolerated: 1,
		OutcomeRejected:  1,
		OutcomeError:     0,
	} {
		if got := testutil.ToFloat64(m.records.WithLabelValues(outcome)); got != want {
			t.Errorf("%s: got %v, want %v", outcome, got, want)
		}
	}
	if got := testutil.ToFloat64(m.exempted.WithLabelValues("transaction")); got != 1 {
		t.Errorf("exempted transactions: got %v", got)
	}
}

func TestApplySchema_LogsExemptionsAndRegistrations(t *testing.T) {
	v, _, logs := observedValidator(t, ExceptionFunc(func(id string) bool { return id == "old" }))

	if n := logs.FilterMessage("transaction schema registered").Len(); n != 1 {
		t.Fatalf("expected one registration entry, got %d", n)
	}

	if _, err := v.ApplySchema(mustDecode(t, `{"height": 2, "transactions": [{"id": "old", "amount": -1, "signature": "s"}]}`)); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("schema violation exempted").All()
	if len(entries) == 0 {
		t.Fatalf("expected exemption log entries")
	}
	fields := entries[0].ContextMap()
	if fields["id"] != "old" || fields["height"] != int64(2) || fields["scope"] != "transaction[0]" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.observeRecord(OutcomeAccepted)
	m.observeExempted(BlockScope)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

// A strict-pass engine failure is logged and the tolerant pass, which
// republishes "block" from the registry, decides the outcome.
func TestApplySchema_StrictEngineFailureFallsThrough(t *testing.T) {
	v, m, logs := observedValidator(t, nil)
	if !v.RemoveSchema("block") {
		t.Fatalf("block schema should be registered")
	}
	if res := v.Validate("block", map[string]any{}); res.Err == nil {
		t.Fatalf("strict pass should fail inside the engine without a block schema")
	}

	rec := mustDecode(t, `{"height": 4, "transactions": [{"id": "a", "amount": 1, "signature": "s"}]}`)
	got, err := v.ApplySchema(rec)
	if err != nil {
		t.Fatalf("tolerant pass should accept the record: %v", err)
	}
	if got == nil {
		t.Fatalf("expected the canonical record")
	}

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warns) != 1 || warns[0].Message != "strict block validation failed inside the schema engine" {
		t.Fatalf("expected one warning, got %v", warns)
	}
	if h := warns[0].ContextMap()["height"]; h != int64(4) {
		t.Fatalf("warning should carry the height, got %v", h)
	}
	if got := testutil.ToFloat64(m.records.WithLabelValues(OutcomeAccepted)); got != 1 {
		t.Fatalf("accepted: got %v", got)
	}
}
