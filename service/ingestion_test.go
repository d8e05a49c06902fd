package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) Notify(kind, message string) {
	n.mu.Lock()
	n.events = append(n.events, kind+": "+message)
	n.mu.Unlock()
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func newTestPipeline(maxFileSize, compressThreshold int64) (*DocumentIngestionPipeline, *PreviewRegistry, *fakeNotifier) {
	previews := NewPreviewRegistry()
	notifier := &fakeNotifier{}
	return NewDocumentIngestionPipeline(maxFileSize, compressThreshold, 1200, previews, notifier), previews, notifier
}

func TestIngestBatchRejectsUnsupportedFiles(t *testing.T) {
	pipeline, previews, notifier := newTestPipeline(10*1024*1024, 300*1024)

	small := noisePNG(t, 10, 10)
	files := []RawFile{
		{Name: "notes.txt", MIMEType: "text/plain", Data: []byte("hello")},
		{Name: "huge.png", MIMEType: "image/png", Data: make([]byte, 11*1024*1024)},
		{Name: "ok.png", MIMEType: "image/png", Data: small},
	}

	result, err := pipeline.IngestBatch(context.Background(), Exhibits[0], files, nil)
	require.NoError(t, err)

	require.Len(t, result.Accepted, 1)
	assert.Equal(t, "ok.png", result.Accepted[0].OriginalName)
	assert.Len(t, result.Rejected, 2)
	assert.Equal(t, 2, notifier.count(), "each rejection raises a warning")
	assert.Equal(t, 1, previews.Len())
}

func TestIngestBatchRejectsGarbagePDF(t *testing.T) {
	pipeline, _, _ := newTestPipeline(10*1024*1024, 300*1024)

	files := []RawFile{
		{Name: "broken.pdf", MIMEType: "application/pdf", Data: []byte("not a pdf at all")},
	}

	result, err := pipeline.IngestBatch(context.Background(), Exhibits[0], files, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Accepted)
	assert.Len(t, result.Rejected, 1)
}

func TestIngestBatchCompressesLargeImages(t *testing.T) {
	// Tiny threshold so any real image gets recompressed.
	pipeline, _, _ := newTestPipeline(10*1024*1024, 1024)

	files := []RawFile{
		{Name: "scan.png", MIMEType: "image/png", Data: noisePNG(t, 2400, 1200)},
	}

	result, err := pipeline.IngestBatch(context.Background(), Exhibits[1], files, nil)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1)

	doc := result.Accepted[0]
	assert.Equal(t, "image/jpeg", doc.MIMEType)
	assert.NotEmpty(t, doc.CompressionNote)
	assert.Equal(t, "Exhibit B - scan.png", doc.DisplayName)

	w, h, format := decodeDims(t, doc.Data)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, w, 1200)
	assert.LessOrEqual(t, h, 1200)
}

func TestIngestBatchPassesSmallImagesThrough(t *testing.T) {
	pipeline, _, _ := newTestPipeline(10*1024*1024, 300*1024)

	small := noisePNG(t, 10, 10)
	files := []RawFile{{Name: "icon.png", MIMEType: "image/png", Data: small}}

	result, err := pipeline.IngestBatch(context.Background(), Exhibits[0], files, nil)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1)

	doc := result.Accepted[0]
	assert.Equal(t, "image/png", doc.MIMEType)
	assert.Equal(t, small, doc.Data, "files under the threshold keep their bytes")
	assert.Empty(t, doc.CompressionNote)
}

func TestIngestBatchFallsBackOnBrokenImage(t *testing.T) {
	pipeline, _, _ := newTestPipeline(10*1024*1024, 4)

	broken := []byte("corrupt image payload")
	files := []RawFile{{Name: "bad.png", MIMEType: "image/png", Data: broken}}

	result, err := pipeline.IngestBatch(context.Background(), Exhibits[0], files, nil)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1, "processing failures never drop the file")

	doc := result.Accepted[0]
	assert.Equal(t, broken, doc.Data, "fallback keeps the original bytes")
	assert.Equal(t, "image/png", doc.MIMEType)
	assert.Empty(t, doc.CompressionNote)
}

func TestIngestBatchWholeBatchResolves(t *testing.T) {
	pipeline, previews, _ := newTestPipeline(10*1024*1024, 300*1024)

	small := noisePNG(t, 10, 10)
	files := []RawFile{
		{Name: "a.png", MIMEType: "image/png", Data: small},
		{Name: "b.png", MIMEType: "image/png", Data: small},
		{Name: "c.png", MIMEType: "image/png", Data: small},
	}

	result, err := pipeline.IngestBatch(context.Background(), Exhibits[2], files, nil)
	require.NoError(t, err)

	assert.Len(t, result.Accepted, 3)
	assert.Equal(t, 3, previews.Len())
	for _, doc := range result.Accepted {
		_, _, ok := previews.Get(doc.PreviewToken)
		assert.True(t, ok, "every accepted record has a live preview")
	}
}

func TestIngestBatchCancelled(t *testing.T) {
	pipeline, previews, _ := newTestPipeline(10*1024*1024, 300*1024)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []RawFile{{Name: "a.png", MIMEType: "image/png", Data: noisePNG(t, 10, 10)}}
	_, err := pipeline.IngestBatch(ctx, Exhibits[0], files, nil)

	assert.Error(t, err)
	assert.Equal(t, 0, previews.Len(), "a cancelled batch leaves no handles behind")
}

func TestPreviewReleasedWithRecord(t *testing.T) {
	pipeline, previews, _ := newTestPipeline(10*1024*1024, 300*1024)

	files := []RawFile{{Name: "a.png", MIMEType: "image/png", Data: noisePNG(t, 10, 10)}}
	result, err := pipeline.IngestBatch(context.Background(), Exhibits[0], files, nil)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1)

	doc := result.Accepted[0]
	require.Equal(t, 1, previews.Len())

	doc.ReleasePreview()
	assert.Equal(t, 0, previews.Len())
	assert.True(t, doc.Preview.Released())

	// Releasing again is a no-op.
	doc.ReleasePreview()
	assert.Equal(t, 0, previews.Len())
}
