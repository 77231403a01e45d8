package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// InputDir is where the one-shot runner looks for requirement documents.
const InputDir = "inputs"

var inputExtensions = map[string]bool{
	".md": true, ".markdown": true, ".txt": true, ".pdf": true,
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
}

// ListInputs returns the requirement documents directly inside dir, sorted
// by name. A missing directory yields no inputs.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if inputExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
