package registers

import (
	"errors"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

func strPtr(s string) *string {
	return &s
}

func TestParseXmlDocumentRejectsBrokenInput(t *testing.T) {
	var doc diagnosesXmlFile
	err := parseXmlDocument(strings.NewReader("<Diagnoses><Diagnosis>"), &doc)
	if !errors.Is(err, utils.ErrorInvalidXML) {
		t.Fatalf("err = %v, want ErrorInvalidXML", err)
	}
}

func TestParseXmlDocumentRejectsWrongRoot(t *testing.T) {
	var doc diagnosesXmlFile
	err := parseXmlDocument(strings.NewReader("<Items></Items>"), &doc)
	if !errors.Is(err, utils.ErrorInvalidXML) {
		t.Fatalf("err = %v, want ErrorInvalidXML", err)
	}
}

func TestXmlText(t *testing.T) {
	if _, ok := xmlText(nil); ok {
		t.Fatal("nil element must not be ok")
	}
	if _, ok := xmlText(strPtr("   ")); ok {
		t.Fatal("blank element must not be ok")
	}
	text, ok := xmlText(strPtr("  R01 "))
	if !ok || text != "R01" {
		t.Fatalf("text = %q ok = %v", text, ok)
	}
}

func TestXmlInt(t *testing.T) {
	if _, ok, err := xmlInt(nil); ok || err != nil {
		t.Fatalf("nil element: ok=%v err=%v", ok, err)
	}
	value, ok, err := xmlInt(strPtr(" 42 "))
	if !ok || err != nil || value != 42 {
		t.Fatalf("value=%d ok=%v err=%v", value, ok, err)
	}
	if _, ok, err := xmlInt(strPtr("4.2")); !ok || err == nil {
		t.Fatalf("non-integer: ok=%v err=%v", ok, err)
	}
}

func TestHasDuplicateCodeIsCaseInsensitive(t *testing.T) {
	seen := []string{"abc", "DEF"}
	if !hasDuplicateCode(seen, "ABC") || !hasDuplicateCode(seen, "def") {
		t.Fatal("duplicate detection must ignore case")
	}
	if hasDuplicateCode(seen, "ghi") {
		t.Fatal("ghi is not a duplicate")
	}
}
