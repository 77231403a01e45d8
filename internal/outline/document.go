package outline

// Document is the structured test-point result produced by the generator:
// sections of subsections, each holding short points, tables and callouts.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

type Section struct {
	Title       string       `json:"title"`
	Subsections []Subsection `json:"subsections"`
}

type Subsection struct {
	Title    string    `json:"title"`
	Points   []string  `json:"points,omitempty"`
	Tables   []Table   `json:"tables,omitempty"`
	Callouts []Callout `json:"callouts,omitempty"`
}

// Table is a small scenario/expectation matrix.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Callout is an emphasized block, usually titled with a warning marker.
type Callout struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// PointCount returns the number of points, table rows and callout items.
func (d *Document) PointCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, s := range d.Sections {
		for _, sub := range s.Subsections {
			n += len(sub.Points)
			for _, t := range sub.Tables {
				n += len(t.Rows)
			}
			for _, c := range sub.Callouts {
				n += len(c.Items)
			}
		}
	}
	return n
}
