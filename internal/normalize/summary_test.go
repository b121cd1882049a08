package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary_AggregatesAllFeeds(t *testing.T) {
	props := map[string]any{"data": []any{map[string]any{}, map[string]any{}}}
	tenants := map[string]any{
		"data": []any{
			map[string]any{"portalInfo": map[string]any{"status": "ACTIVE"}},
			map[string]any{"portalInfo": map[string]any{"status": "INVITED"}},
			map[string]any{"portalInfo": map[string]any{"status": "ACTIVE"}},
		},
	}
	leases := map[string]any{
		"data": []any{
			map[string]any{"status": "active", "overdueBalance": 100.0, "totalRecurringRent": 900.0},
			map[string]any{"status": "archived", "overdueBalance": 0.0, "totalRecurringRent": 850.0},
			map[string]any{"status": "active", "overdueBalance": 50.5, "totalRecurringRent": 1200.0},
		},
	}

	s := Summary(props, tenants, leases)

	assert.Equal(t, 2, s.TotalProperties)
	assert.Equal(t, 2, s.ActiveTenants)
	assert.Equal(t, 2, s.ActiveLeases)
	assert.Equal(t, 150.5, s.TotalRentDue)
	assert.Equal(t, []float64{900.0, 850.0, 1200.0}, s.RecurringRents)
}

func TestSummary_MissingFeedsContributeZero(t *testing.T) {
	s := Summary(nil, nil, map[string]any{
		"data": []any{map[string]any{"status": "active"}},
	})

	assert.Zero(t, s.TotalProperties)
	assert.Zero(t, s.ActiveTenants)
	assert.Equal(t, 1, s.ActiveLeases)
}
