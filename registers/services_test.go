package registers

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func serviceXmlFragment(code, name, serviceType, level, price, careType, extra string) string {
	return `<Service>
		<ServiceCode>` + code + `</ServiceCode>
		<ServiceName>` + name + `</ServiceName>
		<ServiceType>` + serviceType + `</ServiceType>
		<ServiceLevel>` + level + `</ServiceLevel>
		<ServicePrice>` + price + `</ServicePrice>
		<ServiceCareType>` + careType + `</ServiceCareType>
		<ServiceMaleCategory>1</ServiceMaleCategory>
		<ServiceFemaleCategory>1</ServiceFemaleCategory>
		<ServiceAdultCategory>1</ServiceAdultCategory>
		<ServiceMinorCategory>0</ServiceMinorCategory>` + extra + `
	</Service>`
}

func TestParseServicesXML(t *testing.T) {
	file := `<Services>` +
		serviceXmlFragment("X001", "Consultation", "p", "v", "15.00", "o",
			"<ServiceCategory>s</ServiceCategory><ServiceFrequency>7</ServiceFrequency>") +
		`</Services>`

	entries, parseErrors, err := ParseServicesXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseServicesXML failed: %v", err)
	}
	if len(parseErrors) != 0 {
		t.Fatalf("errors = %v", parseErrors)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	entry := entries[0]
	if entry.Type != "P" || entry.Level != "V" || entry.CareType != "O" {
		t.Fatalf("fields not upper-cased: %+v", entry)
	}
	if !entry.Price.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("price = %v", entry.Price)
	}
	if entry.Category == nil || *entry.Category != "S" {
		t.Fatalf("category = %v", entry.Category)
	}
	if entry.Frequency == nil || *entry.Frequency != 7 {
		t.Fatalf("frequency = %v", entry.Frequency)
	}
}

func TestParseServicesXMLMissingFields(t *testing.T) {
	file := `<Services><Service><ServiceCode>X001</ServiceCode><ServiceName>Consultation</ServiceName></Service></Services>`

	entries, parseErrors, err := ParseServicesXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseServicesXML failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v", entries)
	}
	want := "Service is missing one of the following fields: code, name, type, level, " +
		"price, care type, male category, female category, adult category or minor category."
	if len(parseErrors) != 1 || parseErrors[0] != want {
		t.Fatalf("errors = %v", parseErrors)
	}
}

func TestParseServicesXMLFieldValidation(t *testing.T) {
	cases := []struct {
		name    string
		service string
		want    string
	}{
		{
			name:    "bad type",
			service: serviceXmlFragment("X001", "Consultation", "Z", "V", "15.00", "O", ""),
			want:    "Service 'X001': type is invalid ('Z'). Must be one of the following: P, C",
		},
		{
			name:    "bad level",
			service: serviceXmlFragment("X001", "Consultation", "P", "Z", "15.00", "O", ""),
			want:    "Service 'X001': level is invalid ('Z'). Must be one of the following: S, V, D, H",
		},
		{
			name:    "bad care type",
			service: serviceXmlFragment("X001", "Consultation", "P", "V", "15.00", "Z", ""),
			want:    "Service 'X001': care type is invalid ('Z'). Must be one of the following: I, O, B",
		},
		{
			name:    "bad category",
			service: serviceXmlFragment("X001", "Consultation", "P", "V", "15.00", "O", "<ServiceCategory>Z</ServiceCategory>"),
			want:    "Service 'X001': category is invalid ('Z'). Must be one of the following: S, D, A, H, O, V",
		},
		{
			name:    "bad price",
			service: serviceXmlFragment("X001", "Consultation", "P", "V", "15,00", "O", ""),
			want:    "Service 'X001': price is invalid. Please use '.' as decimal separator, without any currency symbol.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, parseErrors, err := ParseServicesXML(strings.NewReader("<Services>" + tc.service + "</Services>"))
			if err != nil {
				t.Fatalf("ParseServicesXML failed: %v", err)
			}
			if len(entries) != 0 {
				t.Fatalf("entries = %v, want none", entries)
			}
			if len(parseErrors) != 1 || parseErrors[0] != tc.want {
				t.Fatalf("errors = %v, want [%q]", parseErrors, tc.want)
			}
		})
	}
}

func TestParseServicesXMLDuplicateCode(t *testing.T) {
	file := `<Services>` +
		serviceXmlFragment("X001", "First", "P", "V", "1.00", "O", "") +
		serviceXmlFragment("x001", "Second", "P", "V", "1.00", "O", "") +
		`</Services>`

	entries, parseErrors, err := ParseServicesXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseServicesXML failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	if len(parseErrors) != 1 || parseErrors[0] != "Service 'x001': exists multiple times in the list" {
		t.Fatalf("errors = %v", parseErrors)
	}
}
