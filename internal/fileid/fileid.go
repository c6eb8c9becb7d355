// Package fileid derives deterministic vector index point IDs from image file names.
package fileid

import (
	"path/filepath"

	"github.com/google/uuid"
)

// PointID returns a stable point ID for the given image file name. Same name
// always yields the same ID, which makes index upserts idempotent. The ID is a
// name-based UUID because the vector index only accepts UUID or integer IDs.
func PointID(name string) string {
	normalized := filepath.Base(filepath.Clean(name))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(normalized)).String()
}
