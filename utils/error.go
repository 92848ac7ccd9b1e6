package utils

import "errors"

// ErrorRecordNotFound marks a lookup that matched no valid row. Handlers
// translate it to 401/403 instead of a server error.
var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvalidXML marks a structurally broken upload file. Handlers map it
// to a single top-level "Malformed XML" response instead of a partial result.
var ErrorInvalidXML = errors.New("XML file is invalid")

// ErrorInvalidArchive marks an offline field archive that could not be read
// as a plain zip.
var ErrorInvalidArchive = errors.New("archive file is invalid")
