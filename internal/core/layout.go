package core

import "strings"

// cityLineSeparator joins the non-empty city, state and zip values.
const cityLineSeparator = ", "

// Layout builds one label per row, in row order.
//
// Lines are name, company, addressLine1, addressLine2, then a single
// combined city line. Unset fields and values that are empty after trimming
// contribute nothing. Rows that produce no lines are skipped, so the result
// may be shorter than rows; Label.SourceRow still points into rows.
func Layout(rows []Record, mapping Mapping) []Label {
	labels := make([]Label, 0, len(rows))
	for i, row := range rows {
		lines := labelLines(row, mapping)
		if len(lines) == 0 {
			continue
		}
		labels = append(labels, Label{SourceRow: i, Lines: lines})
	}
	return labels
}

// PreviewLabel returns the lines the first non-empty row would print,
// or nil if no row produces a label.
func PreviewLabel(rows []Record, mapping Mapping) []string {
	for _, row := range rows {
		if lines := labelLines(row, mapping); len(lines) > 0 {
			return lines
		}
	}
	return nil
}

// CountLabels returns len(Layout(rows, mapping)) without keeping the lines.
func CountLabels(rows []Record, mapping Mapping) int {
	n := 0
	for _, row := range rows {
		if len(labelLines(row, mapping)) > 0 {
			n++
		}
	}
	return n
}

// SheetsNeeded returns how many sheets count labels fill.
func SheetsNeeded(count int, g Geometry) int {
	if count <= 0 || g.LabelsPerSheet <= 0 {
		return 0
	}
	return (count + g.LabelsPerSheet - 1) / g.LabelsPerSheet
}

// Placement returns where the label at index lands. Labels flow left to
// right, top to bottom, and wrap to a new sheet after LabelsPerSheet.
func Placement(index int, g Geometry) Position {
	onSheet := index % g.LabelsPerSheet
	return Position{
		Sheet:  index / g.LabelsPerSheet,
		Row:    onSheet / g.Cols,
		Column: onSheet % g.Cols,
	}
}

// Summarize describes the printed output of labels on g.
func Summarize(labels []Label, g Geometry) Summary {
	return Summary{
		LabelCount:   len(labels),
		SheetsNeeded: SheetsNeeded(len(labels), g),
		FormatID:     g.ID,
		FormatName:   g.Name,
	}
}

func labelLines(row Record, m Mapping) []string {
	var lines []string
	for _, f := range []Field{FieldName, FieldCompany, FieldAddressLine1, FieldAddressLine2} {
		if v := mappedValue(row, m, f); v != "" {
			lines = append(lines, v)
		}
	}

	var parts []string
	for _, f := range []Field{FieldCity, FieldState, FieldZip} {
		if v := mappedValue(row, m, f); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		lines = append(lines, strings.Join(parts, cityLineSeparator))
	}

	return lines
}

// mappedValue returns the trimmed value of f's header in row, or "" when f
// is unset or the header is absent from the row.
func mappedValue(row Record, m Mapping, f Field) string {
	header := m.Header(f)
	if header == "" {
		return ""
	}
	return strings.TrimSpace(row[header])
}
