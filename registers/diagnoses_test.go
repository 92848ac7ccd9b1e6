package registers

import (
	"errors"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

func TestParseDiagnosesXML(t *testing.T) {
	file := `<Diagnoses>
		<Diagnosis><DiagnosisCode>A01</DiagnosisCode><DiagnosisName>Typhoid fever</DiagnosisName></Diagnosis>
		<Diagnosis><DiagnosisCode>B02</DiagnosisCode><DiagnosisName>Zoster</DiagnosisName></Diagnosis>
	</Diagnoses>`

	entries, parseErrors, err := ParseDiagnosesXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseDiagnosesXML failed: %v", err)
	}
	if len(parseErrors) != 0 {
		t.Fatalf("errors = %v", parseErrors)
	}
	if len(entries) != 2 || entries[0].Code != "A01" || entries[1].Name != "Zoster" {
		t.Fatalf("entries = %v", entries)
	}
}

func TestParseDiagnosesXMLMissingFields(t *testing.T) {
	file := `<Diagnoses>
		<Diagnosis><DiagnosisCode>A01</DiagnosisCode></Diagnosis>
		<Diagnosis><DiagnosisName>No code</DiagnosisName></Diagnosis>
		<Diagnosis><DiagnosisCode> </DiagnosisCode><DiagnosisName>Blank code</DiagnosisName></Diagnosis>
	</Diagnoses>`

	entries, parseErrors, err := ParseDiagnosesXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseDiagnosesXML failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v, want none", entries)
	}
	if len(parseErrors) != 3 {
		t.Fatalf("errors = %v, want 3", parseErrors)
	}
	for _, msg := range parseErrors {
		if msg != "Diagnosis has no code or no name" {
			t.Fatalf("unexpected error %q", msg)
		}
	}
}

func TestParseDiagnosesXMLConstraints(t *testing.T) {
	longName := strings.Repeat("x", 256)
	file := `<Diagnoses>
		<Diagnosis><DiagnosisCode>A01</DiagnosisCode><DiagnosisName>First</DiagnosisName></Diagnosis>
		<Diagnosis><DiagnosisCode>a01</DiagnosisCode><DiagnosisName>Duplicate</DiagnosisName></Diagnosis>
		<Diagnosis><DiagnosisCode>TOOLONG</DiagnosisCode><DiagnosisName>Code</DiagnosisName></Diagnosis>
		<Diagnosis><DiagnosisCode>B02</DiagnosisCode><DiagnosisName>` + longName + `</DiagnosisName></Diagnosis>
	</Diagnoses>`

	entries, parseErrors, err := ParseDiagnosesXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseDiagnosesXML failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Code != "A01" {
		t.Fatalf("entries = %v", entries)
	}
	want := []string{
		"'a01' is already present in the list",
		"Code cannot be longer than 6 characters: 'TOOLONG'",
		"Name cannot be longer than 255 characters: '" + longName + "'",
	}
	if len(parseErrors) != len(want) {
		t.Fatalf("errors = %v", parseErrors)
	}
	for i, msg := range want {
		if parseErrors[i] != msg {
			t.Fatalf("errors[%d] = %q, want %q", i, parseErrors[i], msg)
		}
	}
}

func TestParseDiagnosesXMLMalformed(t *testing.T) {
	_, _, err := ParseDiagnosesXML(strings.NewReader("not xml at all"))
	if !errors.Is(err, utils.ErrorInvalidXML) {
		t.Fatalf("err = %v, want ErrorInvalidXML", err)
	}
}
