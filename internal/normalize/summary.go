package normalize

import (
	"opshub/pkg/models"
)

// Summary aggregates property, tenant and lease payloads into portfolio
// metrics. Each input is optional; a missing or misshapen payload just
// contributes zero to its metrics.
func Summary(propsRaw, tenantsRaw, leasesRaw any) models.Summary {
	var s models.Summary

	if props, err := unwrap(propsRaw); err == nil {
		s.TotalProperties = len(props.Get("data").Array())
	}

	if tenants, err := unwrap(tenantsRaw); err == nil {
		for _, t := range tenants.Get("data").Array() {
			if t.Get("portalInfo.status").String() == "ACTIVE" {
				s.ActiveTenants++
			}
		}
	}

	if leases, err := unwrap(leasesRaw); err == nil {
		for _, l := range leases.Get("data").Array() {
			if l.Get("status").String() != "archived" {
				s.ActiveLeases++
			}
			if overdue := l.Get("overdueBalance").Float(); overdue > 0 {
				s.TotalRentDue += overdue
			}
			s.RecurringRents = append(s.RecurringRents, l.Get("totalRecurringRent").Float())
		}
	}

	return s
}
