package models

// FilterSet carries the query parameters that partition cached task results.
// Two semantically equal filter sets must derive the same cache key, so the
// key deriver sorts list values before serializing.
type FilterSet struct {
	Status         []string `json:"status,omitempty"`
	UserIDs        []int64  `json:"user_ids,omitempty"`
	TitleSubstring string   `json:"title_substring,omitempty"`
	DueDate        string   `json:"due_date,omitempty"`
}

// IsEmpty reports whether no filter field is set.
func (f *FilterSet) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Status) == 0 && len(f.UserIDs) == 0 && f.TitleSubstring == "" && f.DueDate == ""
}

// TenantRecord is the flat application view of one upstream tenant.
type TenantRecord struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Properties string `json:"properties"`
	RentDue    string `json:"rent_due"`
	Status     string `json:"status"`
}

// TaskRecord is the flat application view of one scheduling task.
// DueDate is an ISO date string; it stays nil when the upstream timestamp
// is absent or unparseable.
type TaskRecord struct {
	UserIDs []int64 `json:"user_id"`
	Status  string  `json:"status"`
	Title   string  `json:"title"`
	DueDate *string `json:"due_date"`
}

// LeaseInfo holds the balances attached to one lease, keyed by the lease
// display name for the tenant join.
type LeaseInfo struct {
	ID                 string  `json:"id"`
	TotalBalanceDue    float64 `json:"totalBalanceDue"`
	OverdueBalance     float64 `json:"overdueBalance"`
	CurrentBalance     float64 `json:"currentBalance"`
	TotalRecurringRent float64 `json:"totalRecurringRent"`
	Status             string  `json:"status"`
}

// PropertyAddress is one property id with its filtered address document.
type PropertyAddress struct {
	PropertyID string         `json:"property_id"`
	Address    map[string]any `json:"address"`
}

// UserSkills is the qualification summary extracted from a workforce user's
// custom fields.
type UserSkills struct {
	FirstName string   `json:"firstname"`
	LastName  string   `json:"lastname"`
	Values    []string `json:"values"`
}

// Summary aggregates portfolio-level metrics across properties, tenants and
// leases.
type Summary struct {
	TotalProperties int       `json:"total_properties"`
	ActiveTenants   int       `json:"active_tenants"`
	TotalRentDue    float64   `json:"total_rent_due"`
	ActiveLeases    int       `json:"active_leases"`
	RecurringRents  []float64 `json:"recurring_rents"`
}

// ToolCallResult is the tagged outcome of a remote tool invocation. Exactly
// one of Result or Error is set; transport failures never cross the
// orchestrator boundary as panics.
type ToolCallResult struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// IsError reports whether the call produced an error outcome.
func (r *ToolCallResult) IsError() bool {
	return r != nil && r.Error != ""
}
