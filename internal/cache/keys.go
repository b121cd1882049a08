package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"opshub/pkg/models"
)

// maxFieldLen bounds string filter values so pathological input cannot grow
// keys without limit.
const maxFieldLen = 20

// DeriveKey builds the deterministic cache key for a domain and filter set.
// Semantically equal filter sets serialize identically: list values are
// sorted before joining, and parts are emitted in sorted field order.
//
// Examples:
//
//	DeriveKey("tasks", nil)                      -> "tasks:no_filters"
//	status=active, user_ids=[9,5]                -> "tasks:status=active:user_id=5_9"
func DeriveKey(domain string, f *models.FilterSet) string {
	if f.IsEmpty() {
		return domain + ":no_filters"
	}

	var parts []string

	if len(f.Status) > 0 {
		statuses := make([]string, 0, len(f.Status))
		for _, s := range f.Status {
			statuses = append(statuses, truncate(s))
		}
		sort.Strings(statuses)
		parts = append(parts, "status="+strings.Join(statuses, "_"))
	}

	if len(f.UserIDs) > 0 {
		ids := make([]int64, len(f.UserIDs))
		copy(ids, f.UserIDs)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		strs := make([]string, 0, len(ids))
		for _, id := range ids {
			strs = append(strs, strconv.FormatInt(id, 10))
		}
		parts = append(parts, "user_id="+strings.Join(strs, "_"))
	}

	if f.TitleSubstring != "" {
		parts = append(parts, "title="+truncate(f.TitleSubstring))
	}

	if f.DueDate != "" {
		parts = append(parts, "due_date="+truncate(f.DueDate))
	}

	sort.Strings(parts)
	return fmt.Sprintf("%s:%s", domain, strings.Join(parts, ":"))
}

func truncate(s string) string {
	if len(s) > maxFieldLen {
		return s[:maxFieldLen]
	}
	return s
}
