package config

import (
	"os"
	"strings"
)

// Register upload/download rights. The numeric codes come from the legacy
// rights table; a user holding any right in the list may call the endpoint.
var (
	RegistersDiagnosesRights        = []string{"131000", "131001", "131002"}
	RegistersHealthFacilitiesRights = []string{"131000", "131003", "131004"}
	RegistersLocationsRights        = []string{"131000", "131005", "131006"}
	RegistersItemsRights            = []string{"131000", "131007", "131008"}
	RegistersServicesRights         = []string{"131000", "131009", "131010"}
)

// RegisterUploadsDisabled turns all register upload endpoints read-only.
//
// Set via env:
// - REGISTER_UPLOADS_DISABLED=true
func RegisterUploadsDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("REGISTER_UPLOADS_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
