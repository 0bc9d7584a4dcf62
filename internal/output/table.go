package output

import (
	"fmt"
	"reflect"
	"text/tabwriter"
)

// Table represents a pre-rendered table for table output formatting.
type Table struct {
	Headers []string   `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Tabler is implemented by values that choose their own table columns.
type Tabler interface {
	Table() Table
}

// AddRow appends a row, formatting each cell like text output does.
func (t *Table) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = formatValue(reflect.ValueOf(c))
	}
	t.Rows = append(t.Rows, row)
}

func (p *Printer) printTable(data interface{}) error {
	switch t := data.(type) {
	case Table:
		return p.writeTable(t)
	case *Table:
		return p.writeTable(*t)
	case Tabler:
		return p.writeTable(t.Table())
	}

	v := indirect(reflect.ValueOf(data))
	if !v.IsValid() {
		return nil
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return fmt.Errorf("table format requires a list of items")
	}
	if v.Len() == 0 {
		return nil
	}
	return p.writeTable(tableFromSlice(v))
}

func (p *Printer) writeTable(t Table) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}

	if len(t.Headers) > 0 {
		writeRow(t.Headers)
	}
	for _, row := range t.Rows {
		writeRow(row)
	}
	return w.Flush()
}

// tableFromSlice uses the JSON field names of a struct slice as columns.
// Other slices become a single "value" column.
func tableFromSlice(v reflect.Value) Table {
	elem := v.Type().Elem()
	for elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	if elem.Kind() != reflect.Struct {
		t := Table{Headers: []string{"value"}}
		for i := 0; i < v.Len(); i++ {
			t.Rows = append(t.Rows, []string{formatValue(v.Index(i))})
		}
		return t
	}

	fields := exportedFields(elem)
	t := Table{Headers: make([]string, 0, len(fields))}
	for _, f := range fields {
		t.Headers = append(t.Headers, f.name)
	}
	for i := 0; i < v.Len(); i++ {
		item := indirect(v.Index(i))
		row := make([]string, 0, len(fields))
		for _, f := range fields {
			if !item.IsValid() {
				row = append(row, "-")
				continue
			}
			row = append(row, formatValue(item.Field(f.index)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
