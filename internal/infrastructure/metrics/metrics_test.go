package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"metalstock/internal/domain/ledger"
)

func TestLedgerCounters(t *testing.T) {
	r := New()

	r.PositionResolved(ledger.OutcomeFound)
	r.PositionResolved(ledger.OutcomeCreated)
	r.PositionResolved(ledger.OutcomeFound)
	r.MovementRecorded("income")
	r.MovementReversed("expense")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.positionsResolved.WithLabelValues(ledger.OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.positionsResolved.WithLabelValues(ledger.OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movementsRecorded.WithLabelValues("income")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.movementsRecorded.WithLabelValues("expense")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movementsReversed.WithLabelValues("expense")))
}

func TestGatherIncludesLedgerFamilies(t *testing.T) {
	r := New()
	r.MovementRecorded("income")

	families, err := r.Gatherer().Gather()
	assert.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["metalstock_ledger_movements_recorded_total"])
	assert.True(t, names["go_goroutines"])
}
