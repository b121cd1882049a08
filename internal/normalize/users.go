package normalize

import (
	"github.com/tidwall/gjson"

	"opshub/pkg/models"
)

// Trade qualifications recognized in workforce custom fields.
var knownSkills = map[string]bool{
	"Maintenance":  true,
	"Housekeeping": true,
	"Inspections":  true,
}

// UserSkills extracts each user's name and recognized trade skills from the
// raw users payload. Custom field values arrive as a scalar, an object, or
// a list of objects; everything is normalized to a list before matching.
func UserSkills(raw any) ([]models.UserSkills, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}

	users := payload.Get("data.users")
	if !users.IsArray() {
		return nil, &ShapeError{Got: "document without user list"}
	}

	var result []models.UserSkills
	for _, user := range users.Array() {
		var values []string
		for _, field := range user.Get("customFields").Array() {
			for _, item := range normalizeFieldValue(field.Get("value")) {
				if v := item.Get("value").String(); knownSkills[v] {
					values = append(values, v)
				}
			}
		}

		result = append(result, models.UserSkills{
			FirstName: user.Get("firstName").String(),
			LastName:  user.Get("lastName").String(),
			Values:    values,
		})
	}
	return result, nil
}

func normalizeFieldValue(v gjson.Result) []gjson.Result {
	if !v.Exists() {
		return nil
	}
	if v.IsArray() {
		return v.Array()
	}
	return []gjson.Result{v}
}
