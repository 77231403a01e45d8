package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MMMZZYz/aitest/internal/llm"
)

// ErrNoText is returned when a document yields no usable text, e.g. a scanned
// PDF without a text layer or an image the vision model could not read.
var ErrNoText = errors.New("no text could be extracted")

// ImageDescriber turns a requirement picture into requirement text.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, img llm.Image) (string, error)
}

var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// IsImage reports whether path has one of the supported picture extensions.
func IsImage(path string) bool {
	_, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extractor reads requirement documents of any supported kind as plain text.
type Extractor struct {
	describer ImageDescriber
	client    *http.Client
	// maxImageBytes caps a downloaded picture; larger ones are rejected.
	maxImageBytes int64
}

// New returns an extractor. describer may be nil, in which case pictures
// cannot be read and markdown image references are left untouched.
func New(describer ImageDescriber) *Extractor {
	return &Extractor{
		describer:     describer,
		client:        &http.Client{Timeout: 30 * time.Second},
		maxImageBytes: maxImageBytes,
	}
}

// Extract dispatches on the file extension: pictures go to the vision model,
// PDFs are read from their text layer, markdown has its embedded pictures
// transcribed inline, and everything else is read as UTF-8 text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case IsImage(path):
		log.Printf("🖼️ image requirement detected, recognizing %s", filepath.Base(path))
		return e.describeFile(ctx, path)
	case ext == ".pdf":
		log.Printf("📄 PDF requirement detected, reading text layer of %s", filepath.Base(path))
		return readPDF(path)
	case ext == ".md" || ext == ".markdown":
		text, err := readText(path)
		if err != nil {
			return "", err
		}
		return e.EnrichMarkdown(ctx, text, filepath.Dir(path)), nil
	default:
		return readText(path)
	}
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (e *Extractor) describeFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.describe(ctx, data, imageMIMETypes[strings.ToLower(filepath.Ext(path))])
}

func (e *Extractor) describe(ctx context.Context, data []byte, mimeType string) (string, error) {
	if e.describer == nil {
		return "", fmt.Errorf("no vision model configured for image input")
	}
	text, err := e.describer.DescribeImage(ctx, llm.Image{MIMEType: mimeType, Data: data})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: the vision model returned nothing; try a clearer picture", ErrNoText)
	}
	return text, nil
}
