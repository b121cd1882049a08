package normalize

import (
	"github.com/tidwall/gjson"

	"opshub/internal/logging"
	"opshub/pkg/models"
)

// LeaseMap builds the display-name to lease-balance mapping used for the
// tenant join. Display names are not guaranteed unique upstream; when two
// leases share a name the later entry wins.
func LeaseMap(raw any) (map[string]models.LeaseInfo, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}

	data := payload.Get("data")
	if !data.IsArray() {
		return nil, &ShapeError{Got: "document without lease list"}
	}

	byName := make(map[string]models.LeaseInfo)
	for _, lease := range data.Array() {
		name := lease.Get("name").String()
		if name == "" {
			continue
		}
		byName[name] = leaseInfo(lease)
	}

	logging.Info("Mapped %d leases by display name", len(byName))
	return byName, nil
}

// Leases extracts the lease list and a lease-id to status map from a raw
// lease payload.
func Leases(raw any) ([]models.LeaseInfo, map[string]string, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, nil, err
	}

	data := payload.Get("data")
	if !data.IsArray() {
		return nil, nil, &ShapeError{Got: "document without lease list"}
	}

	var leases []models.LeaseInfo
	statuses := make(map[string]string)
	for _, lease := range data.Array() {
		info := leaseInfo(lease)
		leases = append(leases, info)
		if info.ID != "" {
			statuses[info.ID] = info.Status
		}
	}

	return leases, statuses, nil
}

func leaseInfo(lease gjson.Result) models.LeaseInfo {
	status := lease.Get("status").String()
	if status == "" {
		status = "active"
	}

	return models.LeaseInfo{
		ID:                 lease.Get("id").String(),
		TotalBalanceDue:    lease.Get("totalBalanceDue").Float(),
		OverdueBalance:     lease.Get("overdueBalance").Float(),
		CurrentBalance:     lease.Get("currentBalance").Float(),
		TotalRecurringRent: lease.Get("totalRecurringRent").Float(),
		Status:             status,
	}
}
