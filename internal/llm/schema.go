package llm

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	testPointsSchema   = "test_points.json"
	sixDimensionSchema = "six_dimension.json"
	casesSchema        = "cases.json"
)

var (
	schemaCacheMu sync.Mutex
	schemaCache   = make(map[string]*jsonschema.Schema)
)

// ValidationError reports model output that parsed as JSON but does not
// have the expected shape.
type ValidationError struct {
	Schema string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model output does not match %s: %v", e.Schema, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func loadCompiledSchema(name string) (*jsonschema.Schema, error) {
	schemaCacheMu.Lock()
	if cached, ok := schemaCache[name]; ok {
		schemaCacheMu.Unlock()
		return cached, nil
	}
	schemaCacheMu.Unlock()

	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	url := "mem://schemas/" + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}

	schemaCacheMu.Lock()
	schemaCache[name] = compiled
	schemaCacheMu.Unlock()
	return compiled, nil
}

// validate checks a decoded JSON value (maps, slices, float64...) against
// one of the embedded schemas.
func validate(name string, v any) error {
	schema, err := loadCompiledSchema(name)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	if err := schema.Validate(v); err != nil {
		return &ValidationError{Schema: name, Err: err}
	}
	return nil
}
