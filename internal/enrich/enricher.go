// Package enrich joins normalized tenant records with auxiliary lookups:
// property street addresses keyed by property id, and lease balances keyed
// by tenant display name. Both lookups are cache-backed; a miss degrades the
// enriched field to its placeholder instead of failing the record.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"opshub/internal/cache"
	"opshub/internal/logging"
	"opshub/internal/normalize"
	"opshub/pkg/models"
)

const leaseMapKey = "leases:by_name"

// PropertyFetch retrieves one raw property document by id.
type PropertyFetch func(ctx context.Context, id string) (map[string]any, error)

// LeaseFetch retrieves the raw lease list.
type LeaseFetch func(ctx context.Context) (map[string]any, error)

// Enricher resolves cross-domain joins for tenant records.
type Enricher struct {
	store         *cache.Store
	fetchProperty PropertyFetch
	fetchLeases   LeaseFetch
}

func New(store *cache.Store, fetchProperty PropertyFetch, fetchLeases LeaseFetch) *Enricher {
	return &Enricher{
		store:         store,
		fetchProperty: fetchProperty,
		fetchLeases:   fetchLeases,
	}
}

// Tenants fills each record's property address and rent due. propertyIDs is
// positional: the id at index i belongs to the tenant at index i, mirroring
// the upstream prospect ordering. Lookup misses leave the placeholders in
// place.
func (e *Enricher) Tenants(ctx context.Context, records []models.TenantRecord, propertyIDs []string) []models.TenantRecord {
	leaseMap := e.LeaseBalances(ctx)

	for i := range records {
		if i < len(propertyIDs) {
			records[i].Properties = e.PropertyStreet(ctx, propertyIDs[i])
		}

		// The lease join is by display name; on duplicate names the
		// last lease wins.
		if lease, ok := leaseMap[records[i].Name]; ok && lease.OverdueBalance > 0 {
			records[i].RentDue = formatMoney(lease.OverdueBalance)
		}
	}

	return records
}

// LeaseBalances returns the display-name to lease mapping, cache-first with
// a one hour TTL. Fetch or normalization failure yields an empty map.
func (e *Enricher) LeaseBalances(ctx context.Context) map[string]models.LeaseInfo {
	var cached map[string]models.LeaseInfo
	if e.store.GetJSON(ctx, leaseMapKey, &cached) {
		logging.Info("Cache hit: using cached lease data")
		return cached
	}

	raw, err := e.fetchLeases(ctx)
	if err != nil {
		logging.Error("Failed to fetch lease data: %v", err)
		return map[string]models.LeaseInfo{}
	}

	leaseMap, err := normalize.LeaseMap(raw)
	if err != nil {
		logging.Error("Failed to normalize lease data: %v", err)
		return map[string]models.LeaseInfo{}
	}

	e.store.SetJSON(ctx, leaseMapKey, leaseMap, cache.TTLLeases)
	return leaseMap
}

// PropertyStreet resolves a property id to its street line, cache-first
// with a 15 minute TTL. Any failure degrades to "N/A".
func (e *Enricher) PropertyStreet(ctx context.Context, propertyID string) string {
	doc, ok := e.propertyDoc(ctx, propertyID)
	if !ok {
		return "N/A"
	}
	if street, ok := doc.Address["street1"].(string); ok && street != "" {
		return street
	}
	return "N/A"
}

// PropertyInfo resolves every property id referenced by the raw tenant
// payload to its filtered address document. Per-id failures are skipped.
func (e *Enricher) PropertyInfo(ctx context.Context, raw any) []models.PropertyAddress {
	propertyIDs, err := normalize.PropertyIDs(raw)
	if err != nil {
		logging.Error("Failed to extract property ids: %v", err)
		return nil
	}
	if len(propertyIDs) == 0 {
		logging.Info("No property ids found")
		return nil
	}

	out := make([]models.PropertyAddress, 0, len(propertyIDs))
	for _, pid := range propertyIDs {
		if doc, ok := e.propertyDoc(ctx, pid); ok {
			out = append(out, doc)
		}
	}

	logging.Info("Processed %d properties", len(out))
	return out
}

func (e *Enricher) propertyDoc(ctx context.Context, propertyID string) (models.PropertyAddress, bool) {
	key := "property:" + propertyID

	var cached models.PropertyAddress
	if e.store.GetJSON(ctx, key, &cached) {
		return cached, true
	}

	raw, err := e.fetchProperty(ctx, propertyID)
	if err != nil {
		logging.Error("Failed to fetch property %s: %v", propertyID, err)
		return models.PropertyAddress{}, false
	}

	doc, err := normalize.PropertyAddressDoc(propertyID, raw)
	if err != nil {
		logging.Error("Property lookup did not return a document for id %s: %v", propertyID, err)
		return models.PropertyAddress{}, false
	}

	e.store.SetJSON(ctx, key, doc, cache.TTLProperties)
	return doc, true
}

// formatMoney renders a balance as a currency string with thousands
// separators, e.g. 1234.5 -> "$1,234.50".
func formatMoney(amount float64) string {
	if amount <= 0 {
		return "$0.00"
	}

	s := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	return "$" + b.String() + "." + fracPart
}
