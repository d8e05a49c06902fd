package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Aashish23092/case-intake/dto"
)

type previewBlob struct {
	data     []byte
	mimeType string
}

// PreviewRegistry owns the bytes behind preview tokens. Documents hold a
// revocable handle; releasing the handle removes the entry here.
type PreviewRegistry struct {
	mu    sync.RWMutex
	blobs map[string]previewBlob
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{blobs: make(map[string]previewBlob)}
}

// Add registers a blob and returns the handle that revokes it.
func (p *PreviewRegistry) Add(data []byte, mimeType string) *dto.PreviewHandle {
	token := uuid.NewString()

	p.mu.Lock()
	p.blobs[token] = previewBlob{data: data, mimeType: mimeType}
	p.mu.Unlock()

	return dto.NewPreviewHandle(token, func() {
		p.mu.Lock()
		delete(p.blobs, token)
		p.mu.Unlock()
	})
}

// Get returns the blob and MIME type for an unrevoked token.
func (p *PreviewRegistry) Get(token string) ([]byte, string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	blob, ok := p.blobs[token]
	return blob.data, blob.mimeType, ok
}

// Len reports how many previews are live.
func (p *PreviewRegistry) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.blobs)
}
