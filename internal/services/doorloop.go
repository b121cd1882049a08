package services

import (
	"context"
	"encoding/json"
	"errors"

	"opshub/internal/cache"
	"opshub/internal/config"
	"opshub/internal/enrich"
	"opshub/internal/gateway"
	"opshub/internal/logging"
	"opshub/internal/normalize"
	"opshub/internal/resilience"
	"opshub/internal/upstream/doorloop"
	"opshub/pkg/models"
)

const doorloopServer = "doorloop"

// DoorloopService aggregates property-management data: tenants enriched
// with lease balances and property addresses, plus lease, property and
// summary views. Reads are cache-first; misses go through the resilience
// orchestrator (tool server primary, direct HTTP fallback).
type DoorloopService struct {
	store    *cache.Store
	client   *doorloop.Client
	enricher *enrich.Enricher
	tools    *toolCaller
}

func NewDoorloopService(cfg *config.Config, store *cache.Store, registry *gateway.Registry, orch *resilience.Orchestrator, client *doorloop.Client) *DoorloopService {
	enricher := enrich.New(store,
		func(ctx context.Context, id string) (map[string]any, error) {
			return client.PropertyByID(ctx, id)
		},
		client.Leases,
	)

	return &DoorloopService{
		store:    store,
		client:   client,
		enricher: enricher,
		tools: &toolCaller{
			server:   doorloopServer,
			bin:      cfg.ToolServerBin,
			arg:      doorloopServer,
			registry: registry,
			orch:     orch,
			ready:    client.Ready,
		},
	}
}

// Tenants returns the enriched tenant list, cache-first under the tenants
// domain key with a 30 minute TTL. A normalization mismatch returns an
// empty list with a server-side log entry, never an error.
func (s *DoorloopService) Tenants(ctx context.Context) ([]models.TenantRecord, error) {
	key := cache.DeriveKey("tenants", nil)

	var cached []models.TenantRecord
	if s.store.GetJSON(ctx, key, &cached) {
		logging.Info("Cache hit: using cached parsed tenant data")
		return cached, nil
	}

	raw, err := s.tenantsRaw(ctx)
	if err != nil {
		return nil, err
	}

	records, err := normalize.Tenants(raw)
	if err != nil {
		var shapeErr *normalize.ShapeError
		if errors.As(err, &shapeErr) {
			logging.Error("Skipping tenant batch: %v", err)
			return []models.TenantRecord{}, nil
		}
		return nil, err
	}

	propertyIDs, _ := normalize.PropertyIDs(raw)
	records = s.enricher.Tenants(ctx, records, propertyIDs)

	s.store.SetJSON(ctx, key, records, cache.TTLTenants)
	return records, nil
}

// Tenant returns one raw tenant document by id.
func (s *DoorloopService) Tenant(ctx context.Context, id string) (any, error) {
	return s.tools.call(ctx, "retrieve_tenant", map[string]any{"id": id},
		func(ctx context.Context) (any, error) {
			return s.client.Tenant(ctx, id)
		})
}

// Properties returns the raw property list.
func (s *DoorloopService) Properties(ctx context.Context) (any, error) {
	return s.tools.call(ctx, "retrieve_properties", map[string]any{},
		func(ctx context.Context) (any, error) {
			return s.client.Properties(ctx)
		})
}

// PropertyInfo resolves the property addresses referenced by the current
// tenant list. The background refresher keeps "property:" documents warm;
// when any are cached they are served directly without touching upstream.
func (s *DoorloopService) PropertyInfo(ctx context.Context) ([]models.PropertyAddress, error) {
	if cached := s.cachedProperties(ctx); len(cached) > 0 {
		logging.Info("Cache hit: serving %d cached property documents", len(cached))
		return cached, nil
	}

	raw, err := s.tenantsRaw(ctx)
	if err != nil {
		return nil, err
	}
	return s.enricher.PropertyInfo(ctx, raw), nil
}

func (s *DoorloopService) cachedProperties(ctx context.Context) []models.PropertyAddress {
	var out []models.PropertyAddress
	for _, raw := range s.store.ScanPrefix(ctx, "property") {
		var doc models.PropertyAddress
		if err := json.Unmarshal(raw, &doc); err != nil {
			logging.Error("Dropping unreadable cached property document: %v", err)
			continue
		}
		out = append(out, doc)
	}
	return out
}

// Leases returns the normalized lease list plus the lease-id to status map.
func (s *DoorloopService) Leases(ctx context.Context) ([]models.LeaseInfo, map[string]string, error) {
	raw, err := s.tools.call(ctx, "retrieve_leases", map[string]any{},
		func(ctx context.Context) (any, error) {
			return s.client.Leases(ctx)
		})
	if err != nil {
		return nil, nil, err
	}

	leases, statuses, err := normalize.Leases(raw)
	if err != nil {
		logging.Error("Skipping lease batch: %v", err)
		return []models.LeaseInfo{}, map[string]string{}, nil
	}
	return leases, statuses, nil
}

// Communications returns the raw communications log.
func (s *DoorloopService) Communications(ctx context.Context) (any, error) {
	return s.tools.call(ctx, "retrieve_communications", map[string]any{},
		func(ctx context.Context) (any, error) {
			return s.client.Communications(ctx)
		})
}

// Summary aggregates portfolio metrics across properties, tenants and
// leases. Each feed is optional; a failed feed contributes zeros.
func (s *DoorloopService) Summary(ctx context.Context) (models.Summary, error) {
	props, err := s.Properties(ctx)
	if err != nil {
		logging.Error("Summary: property feed unavailable: %v", err)
	}

	tenants, err := s.tenantsRaw(ctx)
	if err != nil {
		logging.Error("Summary: tenant feed unavailable: %v", err)
	}

	leases, err := s.tools.call(ctx, "retrieve_leases", map[string]any{},
		func(ctx context.Context) (any, error) {
			return s.client.Leases(ctx)
		})
	if err != nil {
		logging.Error("Summary: lease feed unavailable: %v", err)
	}

	return normalize.Summary(props, tenants, leases), nil
}

// RefreshTenants is the background-refresh fetch for the tenants domain. It
// returns the enriched records keyed under the tenants cache key.
func (s *DoorloopService) RefreshTenants(ctx context.Context) (map[string]any, error) {
	raw, err := s.client.Tenants(ctx)
	if err != nil {
		return nil, err
	}

	records, err := normalize.Tenants(raw)
	if err != nil {
		return nil, err
	}

	propertyIDs, _ := normalize.PropertyIDs(raw)
	records = s.enricher.Tenants(ctx, records, propertyIDs)

	return map[string]any{cache.DeriveKey("tenants", nil): records}, nil
}

// maxRefreshProperties bounds the per-tick property fan-out so a large
// portfolio cannot stampede the upstream API.
const maxRefreshProperties = 10

// RefreshProperties is the background-refresh fetch for the property
// domain: filtered address documents keyed by property id.
func (s *DoorloopService) RefreshProperties(ctx context.Context) (map[string]any, error) {
	raw, err := s.client.Tenants(ctx)
	if err != nil {
		return nil, err
	}

	propertyIDs, err := normalize.PropertyIDs(raw)
	if err != nil {
		return nil, err
	}
	if len(propertyIDs) > maxRefreshProperties {
		propertyIDs = propertyIDs[:maxRefreshProperties]
	}

	entries := make(map[string]any)
	for _, pid := range propertyIDs {
		propRaw, err := s.client.PropertyByID(ctx, pid)
		if err != nil {
			logging.Error("Failed to fetch property %s in background: %v", pid, err)
			continue
		}
		doc, err := normalize.PropertyAddressDoc(pid, propRaw)
		if err != nil {
			logging.Error("Failed to normalize property %s in background: %v", pid, err)
			continue
		}
		entries["property:"+pid] = doc
	}

	return entries, nil
}

func (s *DoorloopService) tenantsRaw(ctx context.Context) (any, error) {
	return s.tools.call(ctx, "retrieve_tenants", map[string]any{},
		func(ctx context.Context) (any, error) {
			return s.client.Tenants(ctx)
		})
}
