package normalize

import (
	"opshub/pkg/models"
)

// Address keys dropped before a property address is returned or cached.
var droppedAddressKeys = map[string]bool{
	"state":          true,
	"zip":            true,
	"country":        true,
	"lat":            true,
	"lng":            true,
	"isValidAddress": true,
}

// PropertyAddressDoc builds the filtered address document for one property
// payload.
func PropertyAddressDoc(propertyID string, raw any) (models.PropertyAddress, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return models.PropertyAddress{}, err
	}

	filtered := make(map[string]any)
	for key, value := range payload.Get("address").Map() {
		if !droppedAddressKeys[key] {
			filtered[key] = value.Value()
		}
	}

	return models.PropertyAddress{PropertyID: propertyID, Address: filtered}, nil
}

// StreetAddress returns the property's street line, or "N/A" when absent.
func StreetAddress(raw any) string {
	payload, err := unwrap(raw)
	if err != nil {
		return "N/A"
	}

	if street := payload.Get("address.street1").String(); street != "" {
		return street
	}
	return "N/A"
}
