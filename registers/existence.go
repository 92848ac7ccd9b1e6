package registers

import (
	"context"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

// resolveExisting maps upload codes to their currently-valid rows. Codes
// are deduplicated and queried in chunks of config.LookupChunkSize so an
// arbitrarily large upload never exceeds the backend's parameter limits;
// chunks run sequentially and merge in order, so the result is independent
// of the chunking.
func resolveExisting[E Existing](ctx context.Context, codes []string, find func(context.Context, []string) ([]E, error)) (map[string]E, error) {
	unique := utils.UniqueSlice(codes)
	out := make(map[string]E, len(unique))
	for _, chunk := range utils.ChunkSlice(unique, config.LookupChunkSize) {
		rows, err := find(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			out[row.GetCode()] = row
		}
	}
	return out, nil
}
