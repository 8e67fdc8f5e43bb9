package export

import "fmt"

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" case-sensitively.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatCSV, FormatPDF:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Table is the tabular content of a report.
type Table struct {
	Title    string
	Subtitle string
	Columns  []string
	Rows     [][]string
}

// Renderer encodes a table into bytes.
type Renderer interface {
	Render(Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// RendererFor returns the renderer matching format.
func RendererFor(format Format) (Renderer, error) {
	switch format {
	case FormatCSV:
		return NewCSVRenderer(), nil
	case FormatPDF:
		return NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
