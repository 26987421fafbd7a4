package exports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// Format names an artifact rendering.
type Format string

// Supported artifact formats. PDF and XLSX renderings are produced by
// external collaborators from the same Table contract.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	return string(f)
}

// Render materializes the table in the requested format.
func Render(table Table, format Format) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, fmt.Errorf("render %s: %w", table.Collection, err)
	}
	switch format {
	case FormatCSV:
		return renderCSV(table)
	case FormatJSON:
		return renderJSON(table)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

func renderCSV(table Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Columns); err != nil {
		return nil, err
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(table Table) ([]byte, error) {
	rows := make([]map[string]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		entry := make(map[string]string, len(table.Columns))
		for i, col := range table.Columns {
			entry[col] = row[i]
		}
		rows = append(rows, entry)
	}
	return json.MarshalIndent(map[string]any{
		"collection": table.Collection,
		"rows":       rows,
	}, "", "  ")
}
