package core

// Field is a semantic address role that a label line is filled from.
// The set is closed; there is no runtime registration of new fields.
type Field string

const (
	FieldName         Field = "name"
	FieldCompany      Field = "company"
	FieldAddressLine1 Field = "addressLine1"
	FieldAddressLine2 Field = "addressLine2"
	FieldCity         Field = "city"
	FieldState        Field = "state"
	FieldZip          Field = "zip"
)

// FieldSpec describes a semantic field and the header names it is detected by.
type FieldSpec struct {
	Key      Field    `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Patterns []string `json:"-"` // Lowercase, in match order
}

// fieldCatalog is kept in display order, which is also label line order.
var fieldCatalog = []FieldSpec{
	{
		Key:      FieldName,
		Label:    "Name",
		Required: true,
		Patterns: []string{"name", "full name", "fullname", "recipient", "to", "contact name", "customer name"},
	},
	{
		Key:      FieldCompany,
		Label:    "Company",
		Patterns: []string{"company", "organization", "org", "business", "business name"},
	},
	{
		Key:      FieldAddressLine1,
		Label:    "Address Line 1",
		Required: true,
		Patterns: []string{
			"address", "address1", "address 1", "street", "street address",
			"address line 1", "addr1", "addr", "street1",
		},
	},
	{
		Key:   FieldAddressLine2,
		Label: "Address Line 2",
		Patterns: []string{
			"address2", "address 2", "apt", "suite", "unit",
			"address line 2", "addr2", "street2", "apartment", "floor",
		},
	},
	{
		Key:      FieldCity,
		Label:    "City",
		Required: true,
		Patterns: []string{"city", "town", "municipality"},
	},
	{
		Key:      FieldState,
		Label:    "State/Province",
		Required: true,
		Patterns: []string{"state", "province", "st", "region", "state/province", "prov"},
	},
	{
		Key:      FieldZip,
		Label:    "ZIP/Postal Code",
		Required: true,
		Patterns: []string{"zip", "zipcode", "postal", "postcode", "postal code", "zip code", "postalcode"},
	},
}

// Fields returns the field catalog in display order.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(fieldCatalog))
	for i, spec := range fieldCatalog {
		spec.Patterns = append([]string(nil), spec.Patterns...)
		out[i] = spec
	}
	return out
}

// Spec returns the catalog entry for f.
func (f Field) Spec() (FieldSpec, bool) {
	for _, spec := range fieldCatalog {
		if spec.Key == f {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Valid reports whether f is part of the catalog.
func (f Field) Valid() bool {
	_, ok := f.Spec()
	return ok
}

// RequiredFields returns the fields every label mapping must set.
func RequiredFields() []Field {
	var out []Field
	for _, spec := range fieldCatalog {
		if spec.Required {
			out = append(out, spec.Key)
		}
	}
	return out
}

// OptionalFields returns the fields a mapping may leave unset.
func OptionalFields() []Field {
	var out []Field
	for _, spec := range fieldCatalog {
		if !spec.Required {
			out = append(out, spec.Key)
		}
	}
	return out
}
