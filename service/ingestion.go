package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/Aashish23092/case-intake/dto"
)

const mimePDF = "application/pdf"

// RawFile is one user-selected file before ingestion.
type RawFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// BatchResult is the outcome of ingesting one batch for one exhibit slot.
// Accepted is only meant to be committed as a whole; partial commits never
// happen.
type BatchResult struct {
	Accepted []*dto.DocumentRecord
	Rejected []string
}

// ReleaseAll releases the preview handles of every accepted record. Used when
// a finished batch turns out to be superseded and will never be committed.
func (r *BatchResult) ReleaseAll() {
	for _, doc := range r.Accepted {
		doc.ReleasePreview()
	}
}

// DocumentIngestionPipeline turns raw file batches into storage-ready
// document records: per-file validation, image recompression above the
// threshold, and preview-handle creation.
type DocumentIngestionPipeline struct {
	maxFileSize       int64
	compressThreshold int64
	maxDimension      int
	previews          *PreviewRegistry
	notifier          Notifier
}

func NewDocumentIngestionPipeline(maxFileSize, compressThreshold int64, maxDimension int, previews *PreviewRegistry, notifier Notifier) *DocumentIngestionPipeline {
	return &DocumentIngestionPipeline{
		maxFileSize:       maxFileSize,
		compressThreshold: compressThreshold,
		maxDimension:      maxDimension,
		previews:          previews,
		notifier:          notifier,
	}
}

// Previews exposes the registry backing this pipeline's handles.
func (p *DocumentIngestionPipeline) Previews() *PreviewRegistry {
	return p.previews
}

// IngestBatch validates and processes every file of a batch concurrently and
// returns only once all of them have resolved. Invalid files are dropped with
// a warning; processing failures fall back to the original bytes. A cancelled
// context aborts the batch: any handles already created are released and the
// context error is returned.
func (p *DocumentIngestionPipeline) IngestBatch(ctx context.Context, exhibit Exhibit, files []RawFile, progress ProgressFunc) (*BatchResult, error) {
	result := &BatchResult{}

	valid := make([]RawFile, 0, len(files))
	for _, f := range files {
		if err := p.validateFile(f); err != nil {
			msg := fmt.Sprintf("%s: %v", f.Name, err)
			result.Rejected = append(result.Rejected, msg)
			p.notifier.Notify("warning", msg)
			continue
		}
		valid = append(valid, f)
	}

	records := make([]*dto.DocumentRecord, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range valid {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			records[i] = p.processFile(exhibit, f, progress)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, doc := range records {
			if doc != nil {
				doc.ReleasePreview()
			}
		}
		return nil, err
	}

	for _, doc := range records {
		if doc != nil {
			result.Accepted = append(result.Accepted, doc)
		}
	}
	return result, nil
}

// validateFile gates a file on MIME type, size and, for PDFs, structure.
func (p *DocumentIngestionPipeline) validateFile(f RawFile) error {
	if f.MIMEType != mimePDF && !strings.HasPrefix(f.MIMEType, "image/") {
		return fmt.Errorf("unsupported file type %q", f.MIMEType)
	}
	if int64(len(f.Data)) > p.maxFileSize {
		return fmt.Errorf("file exceeds the %s limit", humanSize(p.maxFileSize))
	}
	if f.MIMEType == mimePDF {
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		if err := api.Validate(bytes.NewReader(f.Data), conf); err != nil {
			return fmt.Errorf("not a readable PDF: %w", err)
		}
	}
	return nil
}

// processFile builds the document record for one validated file, recompressing
// images above the threshold. Never fails: a broken image keeps its original
// bytes.
func (p *DocumentIngestionPipeline) processFile(exhibit Exhibit, f RawFile, progress ProgressFunc) *dto.DocumentRecord {
	data := f.Data
	mimeType := f.MIMEType
	note := ""

	if strings.HasPrefix(f.MIMEType, "image/") && int64(len(f.Data)) > p.compressThreshold {
		compressed, n, err := CompressImage(f.Data, CompressOptions{MaxDimension: p.maxDimension}, progress)
		if err != nil {
			log.Printf("Compression failed for %s, keeping original: %v", f.Name, err)
		} else {
			data = compressed
			mimeType = "image/jpeg"
			note = n
		}
	}

	handle := p.previews.Add(data, mimeType)

	return &dto.DocumentRecord{
		ID:              uuid.NewString(),
		DisplayName:     fmt.Sprintf("%s - %s", exhibit.Label, f.Name),
		OriginalName:    f.Name,
		Data:            data,
		Preview:         handle,
		PreviewToken:    handle.Token,
		MIMEType:        mimeType,
		Size:            int64(len(data)),
		Exhibit:         exhibit.Key,
		UploadedAt:      time.Now().UTC(),
		CompressionNote: note,
	}
}
