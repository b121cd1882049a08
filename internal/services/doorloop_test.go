package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opshub/internal/cache"
	"opshub/internal/config"
	"opshub/internal/gateway"
	"opshub/internal/resilience"
	"opshub/internal/upstream/doorloop"
)

func newDoorloopFixture(srvURL string) *DoorloopService {
	return newDoorloopFixtureWithKey(srvURL, "test-key")
}

func newDoorloopFixtureWithKey(srvURL, apiKey string) *DoorloopService {
	cfg := &config.Config{ToolServerBin: "/nonexistent/opshub-toolserver"}
	store := cache.NewStore("")
	registry := gateway.NewRegistry()
	orch := resilience.New(true, 3*time.Second)
	client := doorloop.NewClient(apiKey, srvURL)
	return NewDoorloopService(cfg, store, registry, orch, client)
}

// propertyPortfolioHandler serves a small consistent portfolio: one tenant
// interested in one property, with one overdue lease under her name.
func propertyPortfolioHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tenants", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{
			"fullName":"Jane Doe",
			"emails":[{"address":"jane@example.com"}],
			"phones":[{"number":"555-0101"}],
			"portalInfo":{"status":"ACTIVE"},
			"prospectInfo":{"interests":[{"property":"prop-1"}]}
		}]}`))
	})
	mux.HandleFunc("/api/properties/prop-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"street1":"12 Elm St","city":"Springfield","zip":"62701"}}`))
	})
	mux.HandleFunc("/api/properties", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"prop-1"}]}`))
	})
	mux.HandleFunc("/api/leases", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{
			"id":"lease-1","name":"Jane Doe","status":"active",
			"overdueBalance":1234.5,"totalRecurringRent":900
		}]}`))
	})
	return mux
}

func TestTenants_EnrichedEndToEnd(t *testing.T) {
	srv := httptest.NewServer(propertyPortfolioHandler())
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	records, err := svc.Tenants(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "jane@example.com", rec.Email)
	assert.Equal(t, "555-0101", rec.Phone)
	assert.Equal(t, "ACTIVE", rec.Status)
	assert.Equal(t, "12 Elm St", rec.Properties)
	assert.Equal(t, "$1,234.50", rec.RentDue)
}

func TestTenants_ShapeMismatchYieldsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	records, err := svc.Tenants(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLeases_NormalizedWithStatusMap(t *testing.T) {
	srv := httptest.NewServer(propertyPortfolioHandler())
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	leases, statuses, err := svc.Leases(context.Background())

	require.NoError(t, err)
	require.Len(t, leases, 1)
	assert.Equal(t, 1234.5, leases[0].OverdueBalance)
	assert.Equal(t, "active", statuses["lease-1"])
}

func TestSummary_AggregatesPortfolio(t *testing.T) {
	srv := httptest.NewServer(propertyPortfolioHandler())
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalProperties)
	assert.Equal(t, 1, summary.ActiveTenants)
	assert.Equal(t, 1, summary.ActiveLeases)
	assert.Equal(t, 1234.5, summary.TotalRentDue)
	assert.Equal(t, []float64{900}, summary.RecurringRents)
}

func TestSummary_DegradedFeedsContributeZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"down"}`))
	}))
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Zero(t, summary.TotalProperties)
	assert.Zero(t, summary.ActiveTenants)
	assert.Zero(t, summary.ActiveLeases)
	assert.Zero(t, summary.TotalRentDue)
}

func TestPropertyInfo_ComputedFromTenantListWhenCacheEmpty(t *testing.T) {
	srv := httptest.NewServer(propertyPortfolioHandler())
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	docs, err := svc.PropertyInfo(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "prop-1", docs[0].PropertyID)
	assert.Equal(t, "12 Elm St", docs[0].Address["street1"])
	assert.NotContains(t, docs[0].Address, "zip")
}

func TestRefreshTenants_KeysUnderTenantsDomain(t *testing.T) {
	srv := httptest.NewServer(propertyPortfolioHandler())
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	entries, err := svc.RefreshTenants(context.Background())

	require.NoError(t, err)
	require.Contains(t, entries, "tenants:no_filters")
}

func TestRefreshProperties_KeysByPropertyID(t *testing.T) {
	srv := httptest.NewServer(propertyPortfolioHandler())
	defer srv.Close()

	svc := newDoorloopFixture(srv.URL)
	entries, err := svc.RefreshProperties(context.Background())

	require.NoError(t, err)
	require.Contains(t, entries, "property:prop-1")
}
