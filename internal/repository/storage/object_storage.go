package storage

import (
	"context"
	"io"
	"mime"
	"time"

	"github.com/google/uuid"
)

// Object is one stored variant of an attachment
type Object struct {
	Path        string
	Body        io.Reader
	Size        int64 // negative when unknown
	ContentType string
	LoanID      uuid.UUID
	Filename    string // name offered to browsers on download
}

// ObjectStorage stores attachment bytes. Callers keep object paths, never URLs:
// URLs are presigned on demand.
type ObjectStorage interface {
	Put(ctx context.Context, obj Object) error
	// Delete removes the given paths; paths that do not exist are not an error
	Delete(ctx context.Context, paths ...string) error
	// DeletePrefix removes every object under prefix and returns how many went
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	PresignGet(ctx context.Context, path, filename string, expiry time.Duration) (string, error)
}

// LoanPrefix is the key prefix that holds every object of a loan
func LoanPrefix(loanID uuid.UUID) string {
	return "loans/" + loanID.String() + "/"
}

// contentDisposition renders an inline disposition that keeps the uploaded file name
func contentDisposition(filename string) string {
	if filename == "" {
		return "inline"
	}
	return mime.FormatMediaType("inline", map[string]string{"filename": filename})
}

// batches splits keys into groups of at most size
func batches(keys []string, size int) [][]string {
	var out [][]string
	for len(keys) > size {
		out = append(out, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}
