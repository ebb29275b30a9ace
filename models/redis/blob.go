package redis

import "encoding/json"

// BlobSchema is written in every collection blob. Blobs without it are bare
// JSON arrays left by the browser-storage clients.
const BlobSchema = 1

// Blob is a whole collection stored under a single redis key
type Blob struct {
	Schema  int             `json:"schema"`
	Records json.RawMessage `json:"records"`
}
