package gallery

import (
	"database/sql"
	"sync"
)

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Photo is a gallery photo's metadata. The image bytes live in blob
// storage under Key; the core never decodes them.
type Photo struct {
	Key          string `json:"key"`
	Uploader     string `json:"uploader"`
	UploaderName string `json:"uploader_name"`
	UploadedAt   int64  `json:"uploaded_at"`
	URL          string `json:"url,omitempty"`
}
