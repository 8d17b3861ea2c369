package core

import (
	"reflect"
	"testing"
)

func TestDetectScenarioHeaders(t *testing.T) {
	headers := []string{"Full Name", "Street Address", "City", "State", "Zip Code"}

	det := Detect(headers)

	wantMapping := Mapping{
		FieldName:         "Full Name",
		FieldAddressLine1: "Street Address",
		FieldCity:         "City",
		FieldState:        "State",
		FieldZip:          "Zip Code",
	}
	for f, want := range wantMapping {
		if got := det.Mapping[f]; got != want {
			t.Errorf("Mapping[%s] = %q, want %q", f, got, want)
		}
		if got := det.Confidence[f]; got != ScoreExact {
			t.Errorf("Confidence[%s] = %v, want %v", f, got, ScoreExact)
		}
	}
	if !IsComplete(det.Mapping, RequiredFields()) {
		t.Errorf("IsComplete() = false, missing %v", MissingFields(det.Mapping, RequiredFields()))
	}
}

func TestDetectScores(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		field      Field
		wantHeader string
		wantScore  float64
	}{
		{"exact match", []string{"zip"}, FieldZip, "zip", ScoreExact},
		{"case and whitespace ignored", []string{"  ZIP  "}, FieldZip, "  ZIP  ", ScoreExact},
		{"prefix match", []string{"Zip+4"}, FieldZip, "Zip+4", ScorePrefix},
		{"word match", []string{"Mailing_City"}, FieldCity, "Mailing_City", ScoreWord},
		{"substring match", []string{"hometown"}, FieldCity, "hometown", ScoreSubstring},
		{"higher score wins across headers", []string{"hometown", "City"}, FieldCity, "City", ScoreExact},
		{"tie keeps first header", []string{"Zip1", "Zip2"}, FieldZip, "Zip1", ScorePrefix},
		{"later better pattern wins", []string{"Business Name"}, FieldCompany, "Business Name", ScoreExact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := Detect(tt.headers)
			if got := det.Mapping[tt.field]; got != tt.wantHeader {
				t.Errorf("Mapping[%s] = %q, want %q", tt.field, got, tt.wantHeader)
			}
			if got := det.Confidence[tt.field]; got != tt.wantScore {
				t.Errorf("Confidence[%s] = %v, want %v", tt.field, got, tt.wantScore)
			}
		})
	}
}

func TestDetectUnsetFields(t *testing.T) {
	det := Detect([]string{"Qty", "SKU"})

	for _, spec := range Fields() {
		if _, ok := det.Mapping[spec.Key]; ok {
			t.Errorf("Mapping[%s] is set, want unset", spec.Key)
		}
		if _, ok := det.Confidence[spec.Key]; ok {
			t.Errorf("Confidence[%s] is set, want absent", spec.Key)
		}
	}
	if IsComplete(det.Mapping, RequiredFields()) {
		t.Error("IsComplete() = true, want false")
	}
}

func TestDetectUnsetIffNoPatternScores(t *testing.T) {
	headerSets := [][]string{
		{"Full Name", "Street Address", "City", "State", "Zip Code"},
		{"email", "phone"},
		{"", "  "},
		{"Organization", "Apt", "Postcode"},
		{},
	}

	for _, headers := range headerSets {
		det := Detect(headers)
		for _, spec := range Fields() {
			anyScore := false
			for _, h := range headers {
				for _, p := range spec.Patterns {
					if MatchScore(normalizeHeader(h), p) > 0 {
						anyScore = true
					}
				}
			}
			_, set := det.Mapping[spec.Key]
			if set != anyScore {
				t.Errorf("headers %q field %s: set = %v, any pattern scored = %v", headers, spec.Key, set, anyScore)
			}
		}
	}
}

func TestDetectAllowsSharedHeader(t *testing.T) {
	det := Detect([]string{"Address"})

	if det.Mapping[FieldAddressLine1] != "Address" {
		t.Errorf("Mapping[addressLine1] = %q, want Address", det.Mapping[FieldAddressLine1])
	}
	// No addressLine2 pattern occurs in a plain "Address" header.
	if _, ok := det.Mapping[FieldAddressLine2]; ok {
		t.Errorf("Mapping[addressLine2] = %q, want unset", det.Mapping[FieldAddressLine2])
	}

	shared := Detect([]string{"Street State"})
	if shared.Mapping[FieldAddressLine1] != "Street State" || shared.Mapping[FieldState] != "Street State" {
		t.Errorf("one header should win two fields, got %v", shared.Mapping)
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	headers := []string{"Recipient", "Company", "Address 1", "Address 2", "Town", "Province", "Postal Code"}

	first := Detect(headers)
	second := Detect(headers)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Detect() not idempotent: %v vs %v", first, second)
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		header, pattern string
		want            float64
	}{
		{"zip code", "zip code", ScoreExact},
		{"zip code", "zip", ScorePrefix},
		{"billing-zip", "zip", ScoreWord},
		{"billing zip", "zip", ScoreWord},
		{"billingzip", "zip", ScoreSubstring},
		{"email", "zip", 0},
		{"", "zip", 0},
	}

	for _, tt := range tests {
		t.Run(tt.header+"/"+tt.pattern, func(t *testing.T) {
			if got := MatchScore(tt.header, tt.pattern); got != tt.want {
				t.Errorf("MatchScore(%q, %q) = %v, want %v", tt.header, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score     float64
		wantLabel string
		wantColor string
	}{
		{1.0, "High", "green"},
		{0.9, "High", "green"},
		{0.85, "Medium", "yellow"},
		{0.7, "Medium", "yellow"},
		{0.3, "Low", "orange"},
		{0, "None", "gray"},
	}

	for _, tt := range tests {
		got := Level(tt.score)
		if got.Label != tt.wantLabel || got.Color != tt.wantColor {
			t.Errorf("Level(%v) = %+v, want %s/%s", tt.score, got, tt.wantLabel, tt.wantColor)
		}
	}
}

func TestMissingFields(t *testing.T) {
	m := Mapping{
		FieldName:         "Name",
		FieldAddressLine1: "Street",
		FieldCity:         "",
		FieldZip:          "Zip",
	}

	got := MissingFields(m, RequiredFields())
	want := []Field{FieldCity, FieldState}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingFields() = %v, want %v", got, want)
	}
}

func TestFieldCatalog(t *testing.T) {
	wantRequired := []Field{FieldName, FieldAddressLine1, FieldCity, FieldState, FieldZip}
	if got := RequiredFields(); !reflect.DeepEqual(got, wantRequired) {
		t.Errorf("RequiredFields() = %v, want %v", got, wantRequired)
	}

	wantOptional := []Field{FieldCompany, FieldAddressLine2}
	if got := OptionalFields(); !reflect.DeepEqual(got, wantOptional) {
		t.Errorf("OptionalFields() = %v, want %v", got, wantOptional)
	}

	if Field("email").Valid() {
		t.Error(`Field("email").Valid() = true, want false`)
	}

	fields := Fields()
	fields[0].Patterns[0] = "mutated"
	if spec, _ := FieldName.Spec(); spec.Patterns[0] == "mutated" {
		t.Error("Fields() exposed the catalog's pattern slice")
	}
}
