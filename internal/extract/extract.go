// Package extract converts raw file bytes into plain text, dispatching on
// the file kind. Format-specific extraction is kept behind this boundary so
// the ingestion core only ever sees text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedKind reports a file extension no extractor handles. It is a
// distinct condition from a corrupt or unreadable file.
var ErrUnsupportedKind = errors.New("unsupported file kind")

// Transcriber converts speech in an audio or video payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// ImageDescriber produces indexable text describing an image.
type ImageDescriber interface {
	Describe(ctx context.Context, data []byte) (string, error)
}

// Service dispatches extraction by file extension. A nil transcriber makes
// audio/video kinds unsupported; a nil describer does the same for images.
type Service struct {
	transcriber Transcriber
	images      ImageDescriber
}

func NewService(transcriber Transcriber, images ImageDescriber) *Service {
	return &Service{transcriber: transcriber, images: images}
}

// Text extracts plain text from the file. The returned text may be empty
// when the file holds nothing extractable; the caller decides whether that
// is an error.
func (s *Service) Text(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md", ".markdown":
		return plainText(data), nil
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	case ".pptx":
		return pptxText(data)
	case ".mp3", ".wav", ".mp4", ".mov", ".avi":
		if s.transcriber == nil {
			return "", fmt.Errorf("%w: %s (no transcriber configured)", ErrUnsupportedKind, ext)
		}
		return s.transcriber.Transcribe(ctx, filename, data)
	case ".png", ".jpg", ".jpeg":
		if s.images == nil {
			return "", fmt.Errorf("%w: %s (no image describer configured)", ErrUnsupportedKind, ext)
		}
		return s.images.Describe(ctx, data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, ext)
	}
}
