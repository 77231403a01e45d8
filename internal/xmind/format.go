package xmind

import (
	"bytes"
	"encoding/json"
)

// Entry names inside the archive. Consumers look these up by exact name.
const (
	ContentEntry  = "content.json"
	MetadataEntry = "metadata.json"
	ManifestEntry = "manifest.json"

	dataStructureVersion = "2"
	sheetClass           = "sheet"
	topicClass           = "topic"
)

type sheetJSON struct {
	ID        string     `json:"id"`
	Class     string     `json:"class"`
	Title     string     `json:"title"`
	RootTopic *topicJSON `json:"rootTopic"`
}

// topicJSON omits "children" entirely for leaves; an empty object is not written.
type topicJSON struct {
	ID       string        `json:"id"`
	Class    string        `json:"class"`
	Title    string        `json:"title"`
	Children *childrenJSON `json:"children,omitempty"`
}

type childrenJSON struct {
	Attached []*topicJSON `json:"attached"`
}

type metadataJSON struct {
	DataStructureVersion string `json:"dataStructureVersion"`
	CreatedTime          int64  `json:"createdTime"`
	ModifiedTime         int64  `json:"modifiedTime"`
}

type manifestJSON struct {
	FileEntries fileEntries `json:"file-entries"`
}

type fileEntries struct {
	Content  struct{} `json:"content.json"`
	Metadata struct{} `json:"metadata.json"`
	Manifest struct{} `json:"manifest.json"`
}

// marshalNoEscape keeps CJK text and <, >, & literal, matching what other
// producers of the format write.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
