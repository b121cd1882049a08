package normalize

import (
	"github.com/tidwall/gjson"

	"opshub/internal/logging"
	"opshub/pkg/models"
)

// Tenants flattens a raw tenant payload into TenantRecords. The payload must
// be a document (or 1-element wrapper) with a "data" array; any other shape
// skips the whole batch with a ShapeError. Individual malformed records are
// skipped with an indexed diagnostic and do not abort the batch.
//
// Property address and rent figures start at their placeholders; the
// enricher fills them in from the auxiliary lookups.
func Tenants(raw any) ([]models.TenantRecord, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}

	data := payload.Get("data")
	if !data.IsArray() {
		return nil, &ShapeError{Got: "document without tenant list"}
	}

	records := make([]models.TenantRecord, 0, len(data.Array()))
	for idx, tenant := range data.Array() {
		if !tenant.IsObject() {
			logging.Error("Failed to parse tenant at index %d: not an object", idx)
			continue
		}

		name := firstString(tenant, "fullName", "name")
		if name == "" {
			logging.Error("Failed to parse tenant at index %d: missing name", idx)
			continue
		}

		email := firstArrayField(tenant.Get("emails"), "address")
		if email == "" {
			email = tenant.Get("portalInfo.loginEmail").String()
		}

		phone := firstArrayField(tenant.Get("phones"), "number")

		status := firstString(tenant, "portalInfo.status", "status")
		if status == "" {
			status = "UNKNOWN"
		}

		records = append(records, models.TenantRecord{
			Name:       name,
			Phone:      phone,
			Email:      email,
			Properties: "N/A",
			RentDue:    "$0.00",
			Status:     status,
		})
	}

	logging.Info("Parsed %d tenants", len(records))
	return records, nil
}

// firstArrayField returns the named field of the first array entry that has
// it set.
func firstArrayField(arr gjson.Result, field string) string {
	if !arr.IsArray() {
		return ""
	}
	for _, entry := range arr.Array() {
		if v := entry.Get(field); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// PropertyIDs extracts property ids from tenant prospectInfo interests.
// prospectInfo may be a single object or a list of them.
func PropertyIDs(raw any) ([]string, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, tenant := range payload.Get("data").Array() {
		prospect := tenant.Get("prospectInfo")
		if !prospect.Exists() {
			continue
		}

		prospects := []gjson.Result{prospect}
		if prospect.IsArray() {
			prospects = prospect.Array()
		}

		for _, p := range prospects {
			for _, interest := range p.Get("interests").Array() {
				if id := interest.Get("property").String(); id != "" {
					ids = append(ids, id)
				}
			}
		}
	}
	return ids, nil
}
