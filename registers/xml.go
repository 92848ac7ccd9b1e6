package registers

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

// parseXmlDocument decodes a whole upload file into doc. Any structural
// problem (bad syntax, wrong root element) is fatal for the call and mapped
// to utils.ErrorInvalidXML so the handlers can answer "Malformed XML".
func parseXmlDocument(r io.Reader, doc interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return utils.ErrorInvalidXML
	}
	if err := xml.Unmarshal(data, doc); err != nil {
		return utils.ErrorInvalidXML
	}
	return nil
}

// xmlText returns the trimmed text of an optional element. A missing
// element and an element with blank text both report ok=false.
func xmlText(elm *string) (string, bool) {
	if elm == nil {
		return "", false
	}
	text := strings.TrimSpace(*elm)
	if text == "" {
		return "", false
	}
	return text, true
}

func xmlInt(elm *string) (int, bool, error) {
	text, ok := xmlText(elm)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, true, err
	}
	return value, true, nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// hasDuplicateCode checks case-insensitively against the codes accepted so
// far in the same file.
func hasDuplicateCode(seen []string, code string) bool {
	for _, s := range seen {
		if strings.EqualFold(s, code) {
			return true
		}
	}
	return false
}
