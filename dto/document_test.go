package dto

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewHandleReleasesExactlyOnce(t *testing.T) {
	revokes := 0
	handle := NewPreviewHandle("tok", func() { revokes++ })

	assert.False(t, handle.Released())

	handle.Release()
	handle.Release()
	handle.Release()

	assert.True(t, handle.Released())
	assert.Equal(t, 1, revokes)
}

func TestPreviewHandleConcurrentRelease(t *testing.T) {
	var mu sync.Mutex
	revokes := 0
	handle := NewPreviewHandle("tok", func() {
		mu.Lock()
		revokes++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, revokes)
}

func TestDocumentRecordReleasePreviewNilSafe(t *testing.T) {
	doc := &DocumentRecord{ID: "d1"}
	assert.NotPanics(t, func() { doc.ReleasePreview() })
}
