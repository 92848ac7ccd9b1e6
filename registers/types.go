package registers

import "encoding/xml"

// Upload strategies. INSERT and UPDATE are strict about prior existence;
// INSERT_UPDATE upserts; INSERT_UPDATE_DELETE additionally archives every
// valid row absent from the upload.
const (
	StrategyInsert             = "INSERT"
	StrategyUpdate             = "UPDATE"
	StrategyInsertUpdate       = "INSERT_UPDATE"
	StrategyInsertUpdateDelete = "INSERT_UPDATE_DELETE"
)

func IsValidStrategy(strategy string) bool {
	switch strategy {
	case StrategyInsert, StrategyUpdate, StrategyInsertUpdate, StrategyInsertUpdateDelete:
		return true
	}
	return false
}

// UploadResult aggregates one upload run. Every candidate lands in exactly
// one of created, updated or errors; deleted counts the archival sweep.
type UploadResult struct {
	Sent    int      `json:"sent"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Deleted int      `json:"deleted"`
	Errors  []string `json:"errors"`
}

func (r *UploadResult) addError(msg string) {
	r.Errors = append(r.Errors, msg)
}

type UploadCounts struct {
	Sent    int `json:"sent"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
	Invalid int `json:"invalid"`
	Failed  int `json:"failed"`
}

// UploadResponse is the JSON envelope returned by the upload endpoints. The
// skipped/invalid/failed counters exist for mobile client compatibility and
// are always zero.
type UploadResponse struct {
	Success bool         `json:"success"`
	Data    UploadCounts `json:"data"`
	Errors  []string     `json:"errors"`
}

func (r *UploadResult) Response() UploadResponse {
	errors := r.Errors
	if errors == nil {
		errors = []string{}
	}
	return UploadResponse{
		Success: len(r.Errors) == 0,
		Data: UploadCounts{
			Sent:    r.Sent,
			Created: r.Created,
			Updated: r.Updated,
			Deleted: r.Deleted,
		},
		Errors: errors,
	}
}

type uploadResultXml struct {
	XMLName xml.Name `xml:"UploadResult"`
	Success bool     `xml:"Success"`
	Sent    int      `xml:"Sent"`
	Created int      `xml:"Created"`
	Updated int      `xml:"Updated"`
	Deleted int      `xml:"Deleted"`
	Errors  []string `xml:"Errors>Error"`
}

// XML renders the result for the legacy XML-speaking clients.
func (r *UploadResult) XML() ([]byte, error) {
	doc := uploadResultXml{
		Success: len(r.Errors) == 0,
		Sent:    r.Sent,
		Created: r.Created,
		Updated: r.Updated,
		Deleted: r.Deleted,
		Errors:  r.Errors,
	}
	return xml.MarshalIndent(doc, "", "  ")
}
