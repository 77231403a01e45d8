package xmind

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MMMZZYz/aitest/internal/mindmap"
	"github.com/klauspost/compress/zip"
	"github.com/ohler55/ojg/jp"
)

// ErrMalformedArchive reports an archive without a readable content entry, or
// whose content is not a sheet list or a single sheet object.
var ErrMalformedArchive = errors.New("malformed mind map archive")

var (
	sheetsExpr    = jp.MustParseString("$[*]")
	rootTopicExpr = jp.MustParseString("$.rootTopic")
	attachedExpr  = jp.MustParseString("$.children.attached[*]")
)

// ReadFile decodes the archive stored at path.
func ReadFile(path string) (*mindmap.Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode rebuilds the workbook from archive bytes.
//
// content.json is looked up by exact name first, then as any entry whose name
// ends with content.json. A top-level JSON array is a list of sheets and a
// bare object is a single sheet; both forms are accepted. Sheets without a
// rootTopic are skipped. Stored topic ids are kept.
func Decode(data []byte) (*mindmap.Workbook, error) {
	raw, err := readContent(data)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: content.json: %v", ErrMalformedArchive, err)
	}

	var sheets []any
	switch doc.(type) {
	case []any:
		sheets = sheetsExpr.Get(doc)
	case map[string]any:
		sheets = []any{doc}
	default:
		return nil, fmt.Errorf("%w: content.json root is %T, want array or object", ErrMalformedArchive, doc)
	}

	wb := &mindmap.Workbook{}
	for i, s := range sheets {
		obj, ok := s.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: sheet %d is %T, want object", ErrMalformedArchive, i, s)
		}
		roots := rootTopicExpr.Get(obj)
		if len(roots) == 0 {
			continue
		}
		rootObj, ok := roots[0].(map[string]any)
		if !ok {
			continue
		}
		wb.Sheets = append(wb.Sheets, &mindmap.Sheet{
			ID:    idOrNew(stringField(obj, "id")),
			Title: stringField(obj, "title"),
			Root:  fromTopicJSON(rootObj),
		})
	}
	return wb, nil
}

// LeafPathsFromArchive decodes the archive and returns its test points.
func LeafPathsFromArchive(data []byte) ([]mindmap.Leaf, error) {
	wb, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return mindmap.LeafPaths(wb)
}

func readContent(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == ContentEntry {
			entry = f
			break
		}
	}
	if entry == nil {
		for _, f := range zr.File {
			if strings.HasSuffix(f.Name, ContentEntry) {
				entry = f
				break
			}
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: no %s entry", ErrMalformedArchive, ContentEntry)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	return raw, nil
}

func fromTopicJSON(obj map[string]any) *mindmap.Topic {
	t := &mindmap.Topic{
		ID:    idOrNew(stringField(obj, "id")),
		Title: stringField(obj, "title"),
	}
	for _, c := range attachedExpr.Get(obj) {
		child, ok := c.(map[string]any)
		if !ok {
			continue
		}
		t.Children = append(t.Children, fromTopicJSON(child))
	}
	return t
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
