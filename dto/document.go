package dto

import (
	"sync"
	"sync/atomic"
	"time"
)

// PreviewHandle is a revocable reference to a document's bytes. The bytes stay
// owned by the preview registry; releasing the handle revokes the token.
// Release is idempotent: the revoke callback runs exactly once no matter how
// many times Release is called.
type PreviewHandle struct {
	Token string

	once     sync.Once
	released atomic.Bool
	revoke   func()
}

// NewPreviewHandle wraps a preview token with its revoke callback.
func NewPreviewHandle(token string, revoke func()) *PreviewHandle {
	return &PreviewHandle{Token: token, revoke: revoke}
}

// Release revokes the preview token. Safe to call more than once.
func (h *PreviewHandle) Release() {
	h.once.Do(func() {
		h.released.Store(true)
		if h.revoke != nil {
			h.revoke()
		}
	})
}

// Released reports whether the handle has been revoked.
func (h *PreviewHandle) Released() bool {
	return h.released.Load()
}

// DocumentRecord represents one uploaded file attached to an exhibit slot.
type DocumentRecord struct {
	ID              string         `json:"id"`
	DisplayName     string         `json:"display_name"`
	OriginalName    string         `json:"original_name"`
	Data            []byte         `json:"-"`
	Preview         *PreviewHandle `json:"-"`
	PreviewToken    string         `json:"preview_token"`
	MIMEType        string         `json:"mime_type"`
	Size            int64          `json:"size"`
	Exhibit         string         `json:"exhibit"`
	UploadedAt      time.Time      `json:"uploaded_at"`
	CompressionNote string         `json:"compression_note,omitempty"`
}

// ReleasePreview releases the record's preview handle, if any.
func (d *DocumentRecord) ReleasePreview() {
	if d.Preview != nil {
		d.Preview.Release()
	}
}
