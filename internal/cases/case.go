package cases

import "encoding/json"

// DefaultPriority is used when a generated case has no priority key.
const DefaultPriority = "Medium"

// Case is one executable test case as returned by the generator.
type Case struct {
	Title         string   `json:"title"`
	Preconditions []string `json:"preconditions"`
	Steps         []string `json:"steps"`
	Expected      []string `json:"expected"`
	Priority      string   `json:"priority"`
}

// UnmarshalJSON defaults Priority only when the key is absent or null; an
// explicit "" is kept.
func (c *Case) UnmarshalJSON(data []byte) error {
	type plain Case
	var raw struct {
		plain
		Priority *string `json:"priority"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Case(raw.plain)
	c.Priority = DefaultPriority
	if raw.Priority != nil {
		c.Priority = *raw.Priority
	}
	return nil
}

// Envelope is the generator's top-level reply: {"cases": [...]}.
type Envelope struct {
	Cases []Case `json:"cases"`
}

// Row is one output line keyed by template column name.
type Row map[string]string

// Values returns the row's cells in column order. Missing columns are "".
func (r Row) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = r[col]
	}
	return out
}
