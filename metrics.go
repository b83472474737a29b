package ledgerskema

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Record outcomes reported by ApplySchema.
const (
	OutcomeAccepted  = "accepted"  // Passed the strict or tolerant pass cleanly.
	OutcomeTolerated = "tolerated" // Every violation was exempted.
	OutcomeRejected  = "rejected"  // A violation was fatal.
	OutcomeError     = "error"     // The engine could not evaluate the record.
)

// Metrics counts ApplySchema outcomes. A nil *Metrics records nothing.
type Metrics struct {
	records  *prometheus.CounterVec
	exempted *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerskema",
			Name:      "records_total",
			Help:      "Block records checked by ApplySchema, by outcome.",
		}, []string{"outcome"}),
		exempted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerskema",
			Name:      "exempted_violations_total",
			Help:      "Schema violations tolerated because their identifier is a known exception, by scope.",
		}, []string{"scope"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.records, m.exempted} {
			if err := reg.Register(c); err != nil {
				return nil, errors.Wrap(err, "registering ledgerskema metrics")
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeRecord(outcome string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeExempted(s Scope) {
	if m == nil {
		return
	}
	label := "block"
	if s.Transaction {
		label = "transaction"
	}
	m.exempted.WithLabelValues(label).Inc()
}
