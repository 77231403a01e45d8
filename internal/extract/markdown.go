package extract

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var imageRefRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

const maxImageBytes = 20 << 20

// EnrichMarkdown replaces every ![alt](src) reference whose picture can be
// read with an HTML comment holding the recognized text. src may be an
// http(s) URL or a path relative to baseDir. References that cannot be
// fetched or recognized are kept as written.
func (e *Extractor) EnrichMarkdown(ctx context.Context, text, baseDir string) string {
	if e.describer == nil {
		return text
	}
	matches := imageRefRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m[0]])
		whole := text[m[0]:m[1]]
		alt := text[m[2]:m[3]]
		src := strings.TrimSpace(text[m[4]:m[5]])
		sb.WriteString(e.replaceImage(ctx, whole, alt, src, baseDir))
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func (e *Extractor) replaceImage(ctx context.Context, whole, alt, src, baseDir string) string {
	if alt == "" {
		alt = "图片"
	}

	var (
		data     []byte
		mimeType string
		err      error
	)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		data, mimeType, err = e.download(ctx, src)
	} else {
		path := src
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, src)
		}
		data, mimeType, err = readLocalImage(path)
	}
	if err != nil {
		log.Printf("⚠️ skipping image %s: %v", src, err)
		return whole
	}

	recognized, err := e.describe(ctx, data, mimeType)
	if err != nil {
		log.Printf("⚠️ could not recognize image %s: %v", src, err)
		return whole
	}
	return fmt.Sprintf("\n\n<!-- 图片「%s」识别结果：\n%s\n-->\n\n", alt, recognized)
}

func readLocalImage(path string) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if !info.Mode().IsRegular() {
		return nil, "", fmt.Errorf("%s is not a file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, mimeFromExt(path), nil
}

func (e *Extractor) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > e.maxImageBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", e.maxImageBytes)
	}

	mimeType := "image/png"
	if ct, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && strings.HasPrefix(ct, "image/") {
		mimeType = ct
	}
	return data, mimeType, nil
}

func mimeFromExt(path string) string {
	if m, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "image/jpeg"
}
