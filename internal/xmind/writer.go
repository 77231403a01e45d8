package xmind

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MMMZZYz/aitest/internal/mindmap"
	"github.com/klauspost/compress/zip"
)

// Encode packs the workbook into a deflate-compressed archive holding exactly
// content.json, metadata.json and manifest.json.
func Encode(wb *mindmap.Workbook, now time.Time) ([]byte, error) {
	if wb == nil {
		return nil, fmt.Errorf("workbook is nil")
	}
	content := make([]*sheetJSON, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		if s == nil {
			continue
		}
		if s.Root == nil {
			return nil, fmt.Errorf("sheet %q has no root topic", s.Title)
		}
		content = append(content, &sheetJSON{
			ID:        idOrNew(s.ID),
			Class:     sheetClass,
			Title:     s.Title,
			RootTopic: toTopicJSON(s.Root),
		})
	}

	ms := now.UnixMilli()
	entries := []struct {
		name  string
		value any
	}{
		{ContentEntry, content},
		{MetadataEntry, metadataJSON{DataStructureVersion: dataStructureVersion, CreatedTime: ms, ModifiedTime: ms}},
		{ManifestEntry, manifestJSON{}},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		data, err := marshalNoEscape(e.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", e.name, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: now})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes wb and writes it to path. Any file already at path is
// removed first; the archive is never merged with an existing one.
func WriteFile(path string, wb *mindmap.Workbook) error {
	data, err := Encode(wb, time.Now())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale archive: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func toTopicJSON(t *mindmap.Topic) *topicJSON {
	out := &topicJSON{ID: idOrNew(t.ID), Class: topicClass, Title: t.Title}
	if len(t.Children) > 0 {
		out.Children = &childrenJSON{Attached: make([]*topicJSON, 0, len(t.Children))}
		for _, c := range t.Children {
			out.Children.Attached = append(out.Children.Attached, toTopicJSON(c))
		}
	}
	return out
}

func idOrNew(id string) string {
	if id == "" {
		return mindmap.NewID()
	}
	return id
}
