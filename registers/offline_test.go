package registers

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

func zipWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create failed: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write failed: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close failed: %v", err)
	}
	return buf.Bytes()
}

func TestReadOfflineArchive(t *testing.T) {
	archive := zipWith(t, map[string]string{
		"enrollment_1.xml": "<Enrollments></Enrollments>",
		"ENROLLMENT_2.XML": "<Enrollments></Enrollments>",
		"readme.txt":       "ignore me",
	})

	files, err := readOfflineArchive(archive, ".xml")
	if err != nil {
		t.Fatalf("readOfflineArchive failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want the two xml entries", files)
	}
	if string(files["enrollment_1.xml"]) != "<Enrollments></Enrollments>" {
		t.Fatalf("content = %q", files["enrollment_1.xml"])
	}
}

func TestReadOfflineArchiveRejectsGarbage(t *testing.T) {
	_, err := readOfflineArchive([]byte("this is not a zip"), ".xml")
	if !errors.Is(err, utils.ErrorInvalidArchive) {
		t.Fatalf("err = %v, want ErrorInvalidArchive", err)
	}
}

func TestBuildZipRoundTrip(t *testing.T) {
	data, err := buildZip(map[string][]byte{"MasterData.txt": []byte(`{"diagnoses":[]}`)})
	if err != nil {
		t.Fatalf("buildZip failed: %v", err)
	}
	files, err := readOfflineArchive(data, ".txt")
	if err != nil {
		t.Fatalf("readOfflineArchive failed: %v", err)
	}
	if string(files["MasterData.txt"]) != `{"diagnoses":[]}` {
		t.Fatalf("files = %v", files)
	}
}

func TestParseDateHelpers(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := parseDate(" 2024-03-15 "); !got.Equal(want) {
		t.Fatalf("parseDate = %v, want %v", got, want)
	}
	if got := parseDate("15/03/2024"); !got.IsZero() {
		t.Fatalf("bad dates must parse to zero, got %v", got)
	}
	if parseDatePtr("") != nil {
		t.Fatal("blank dates must stay nil")
	}
	if got := parseDatePtr("2024-03-15"); got == nil || !got.Equal(want) {
		t.Fatalf("parseDatePtr = %v", got)
	}
}

func TestParseFieldHelpers(t *testing.T) {
	if parseIntField(" 42 ") != 42 || parseIntField("abc") != 0 {
		t.Fatal("parseIntField")
	}
	if !parseBoolField("True") || !parseBoolField("1") || parseBoolField("0") || parseBoolField("") {
		t.Fatal("parseBoolField")
	}
	if flag := boolFlag(1); flag == nil || !*flag {
		t.Fatal("boolFlag(1) must be true")
	}
	if flag := boolFlag(0); flag == nil || *flag {
		t.Fatal("boolFlag(0) must be false")
	}
}
