package storage

import (
	"context"

	"github.com/MMMZZYz/aitest/internal/cases"
)

// CaseStore caches generated test cases per model and test-point path, so a
// rerun only pays for the paths that changed.
type CaseStore interface {
	// GetCases returns the cached cases and whether an entry existed.
	GetCases(ctx context.Context, model string, path []string) ([]cases.Case, bool, error)

	// PutCases upserts the cases generated for path.
	PutCases(ctx context.Context, model string, path []string, cs []cases.Case) error

	Close() error
}
