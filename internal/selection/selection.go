// Package selection holds the tables and fields a user has checked for a query.
//
// Tables and fields keep the order in which they were first included; that order is
// the stable order of the projection and of the join list.
package selection

import (
	"slices"

	"github.com/kyleking/sqlitegui/internal/errors"
)

type tableEntry struct {
	name   string
	fields []string
}

// Selection is the set of included tables and, per table, the included fields.
// A field can only be included while its table is included.
type Selection struct {
	tables []*tableEntry
}

// New returns an empty selection
func New() *Selection {
	return &Selection{}
}

func (s *Selection) find(table string) (int, *tableEntry) {
	for i, t := range s.tables {
		if t.name == table {
			return i, t
		}
	}

	return -1, nil
}

// ToggleTable flips inclusion of table and returns the new state.
// Excluding a table drops all of its fields.
func (s *Selection) ToggleTable(table string) bool {
	if i, _ := s.find(table); i >= 0 {
		s.tables = slices.Delete(s.tables, i, i+1)
		return false
	}

	s.tables = append(s.tables, &tableEntry{name: table})

	return true
}

// IncludeTable includes table if it is not already included
func (s *Selection) IncludeTable(table string) {
	if _, t := s.find(table); t == nil {
		s.tables = append(s.tables, &tableEntry{name: table})
	}
}

// ExcludeTable excludes table and its fields if it is included
func (s *Selection) ExcludeTable(table string) {
	if i, _ := s.find(table); i >= 0 {
		s.tables = slices.Delete(s.tables, i, i+1)
	}
}

// ToggleField flips inclusion of table.field and returns the new state.
// It fails with an invalid selection error when table is not included.
func (s *Selection) ToggleField(table, field string) (bool, error) {
	_, t := s.find(table)
	if t == nil {
		return false, errors.NewInvalidSelectionError(table, field)
	}

	if i := slices.Index(t.fields, field); i >= 0 {
		t.fields = slices.Delete(t.fields, i, i+1)
		return false, nil
	}

	t.fields = append(t.fields, field)

	return true, nil
}

// IncludeField includes table.field if it is not already included.
// It fails with an invalid selection error when table is not included.
func (s *Selection) IncludeField(table, field string) error {
	_, t := s.find(table)
	if t == nil {
		return errors.NewInvalidSelectionError(table, field)
	}

	if !slices.Contains(t.fields, field) {
		t.fields = append(t.fields, field)
	}

	return nil
}

// IncludedTables returns the included tables in inclusion order
func (s *Selection) IncludedTables() []string {
	out := make([]string, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.name
	}

	return out
}

// IncludedFields returns the included fields of table in inclusion order.
// It is empty when table is not included.
func (s *Selection) IncludedFields(table string) []string {
	_, t := s.find(table)
	if t == nil {
		return nil
	}

	return slices.Clone(t.fields)
}

// IsTableIncluded reports whether table is included
func (s *Selection) IsTableIncluded(table string) bool {
	_, t := s.find(table)
	return t != nil
}

// IsFieldIncluded reports whether table.field is included
func (s *Selection) IsFieldIncluded(table, field string) bool {
	_, t := s.find(table)
	return t != nil && slices.Contains(t.fields, field)
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.tables = nil
}

// Len returns the number of included tables
func (s *Selection) Len() int {
	return len(s.tables)
}
