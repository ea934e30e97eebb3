package workspace

import (
	"context"
	"time"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/compiler"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/joins"
	"github.com/kyleking/sqlitegui/internal/queries"
	"github.com/kyleking/sqlitegui/internal/selection"
	"github.com/kyleking/sqlitegui/internal/storage"
)

// ToggleTable flips whether table is part of the query and returns its new state.
// Only tables that exist in the open database can be included; a selected table can
// always be excluded, even after it was dropped. Excluding a table drops its join.
func (s *Session) ToggleTable(ctx context.Context, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return false, err
	}

	if !s.selection.IsTableIncluded(table) {
		ok, err := s.catalog.HasTable(ctx, table)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, errors.Newf(errors.ErrTypeUnknownIdentifier, "table %q does not exist", table)
		}
	}

	included := s.selection.ToggleTable(table)
	s.syncGraph()

	return included, nil
}

// ToggleField flips whether table.field is projected and returns its new state.
// The table must already be selected and the field must exist.
func (s *Session) ToggleField(ctx context.Context, table, field string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return false, err
	}

	if !s.selection.IsTableIncluded(table) {
		return false, errors.NewInvalidSelectionError(table, field)
	}

	ref := catalog.FieldRef{Table: table, Field: field}

	ok, err := s.catalog.HasField(ctx, ref)
	if err != nil {
		return false, err
	}

	if !ok {
		return false, errors.Newf(errors.ErrTypeUnknownIdentifier, "field %q does not exist", ref.String())
	}

	return s.selection.ToggleField(table, field)
}

// SelectedTables returns the selected tables in the order they were selected
func (s *Session) SelectedTables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selection.IncludedTables()
}

// SelectedFields returns the selected fields of table in the order they were selected
func (s *Session) SelectedFields(table string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selection.IncludedFields(table)
}

// FromTable returns the table the join builder was opened on, or ""
func (s *Session) FromTable() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.graph.From()
}

// OpenJoinBuilder makes from the query's FROM table, selecting it if needed, and
// returns the joins needed to reach every other selected table
func (s *Session) OpenJoinBuilder(ctx context.Context, from string) ([]joins.Join, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	ok, err := s.catalog.HasTable(ctx, from)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, errors.Newf(errors.ErrTypeUnknownIdentifier, "table %q does not exist", from)
	}

	s.selection.IncludeTable(from)

	return s.graph.Recompute(from, s.selection.IncludedTables()), nil
}

// JoinViewModel returns the joins from the selected table from to every other selected
// table, recomputed against the current selection
func (s *Session) JoinViewModel(_ context.Context, from string) ([]joins.Join, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	if !s.selection.IsTableIncluded(from) {
		return nil, errors.Newf(errors.ErrTypeValidation, "table %s is not selected", from).
			WithSuggestion("Select the table before viewing its joins")
	}

	return s.graph.Recompute(from, s.selection.IncludedTables()), nil
}

// syncGraph brings the join graph in line with selection changes made since it was
// last recomputed
func (s *Session) syncGraph() {
	if from := s.graph.From(); from != "" {
		if !s.selection.IsTableIncluded(from) {
			s.graph.Reset()
			return
		}

		s.graph.Recompute(from, s.selection.IncludedTables())
	}
}

// SetJoinType sets the type of the join to target
func (s *Session) SetJoinType(target string, joinType joins.JoinType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncGraph()

	return s.graph.SetJoinType(target, joinType)
}

// SetMatch sets the condition of the join to target. Both fields must exist.
func (s *Session) SetMatch(ctx context.Context, target string, left catalog.FieldRef, op joins.Operator, right catalog.FieldRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return err
	}

	for _, ref := range []catalog.FieldRef{left, right} {
		ok, err := s.catalog.HasField(ctx, ref)
		if err != nil {
			return err
		}

		if !ok {
			return errors.Newf(errors.ErrTypeUnknownIdentifier, "field %q does not exist", ref.String())
		}
	}

	s.syncGraph()

	return s.graph.SetMatch(target, left, op, right)
}

// CompileCurrentQuery renders the query being built as SQL without running it
func (s *Session) CompileCurrentQuery(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.compileLocked(ctx)
}

func (s *Session) compileLocked(ctx context.Context) (string, error) {
	if err := s.requireOpen(); err != nil {
		return "", err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	s.syncGraph()

	return compiler.Compile(compiler.Input{
		Selection: s.selection,
		From:      s.graph.From(),
		Joins:     s.graph.Joins(),
	}, snap)
}

// RunCurrentQuery compiles and executes the query being built
func (s *Session) RunCurrentQuery(ctx context.Context) (*storage.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, err := s.compileLocked(ctx)
	if err != nil {
		return nil, err
	}

	return s.executeLocked(ctx, query)
}

// CompileUpdate validates and renders an UPDATE of the open database
func (s *Session) CompileUpdate(ctx context.Context, in compiler.UpdateInput) (string, []any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.compileUpdateLocked(ctx, in)
}

func (s *Session) compileUpdateLocked(ctx context.Context, in compiler.UpdateInput) (string, []any, error) {
	if err := s.requireOpen(); err != nil {
		return "", nil, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return "", nil, err
	}

	return compiler.CompileUpdate(in, snap)
}

// RunUpdate compiles and executes an UPDATE. The write stays pending until Save.
func (s *Session) RunUpdate(ctx context.Context, in compiler.UpdateInput) (*storage.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := s.compileUpdateLocked(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.executeLocked(ctx, query, args...)
}

// ClearQuery drops every selected table and join
func (s *Session) ClearQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.Clear()
	s.graph.Reset()
}

// CaptureDefinition records the query being built under name
func (s *Session) CaptureDefinition(name string) *queries.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncGraph()

	def := &queries.Definition{Name: name, From: s.graph.From()}

	for _, table := range s.selection.IncludedTables() {
		def.Tables = append(def.Tables, queries.TableSelection{
			Name:   table,
			Fields: s.selection.IncludedFields(table),
		})
	}

	for _, j := range s.graph.Joins() {
		def.Joins = append(def.Joins, queries.FromJoin(j))
	}

	if s.opts.Clock != nil {
		def.SavedAt = s.opts.Clock()
	} else {
		def.SavedAt = time.Now().UTC()
	}

	return def
}

// ApplyDefinition replaces the query being built with def. Every identifier is checked
// against the open database first; on error the current query is left untouched.
func (s *Session) ApplyDefinition(ctx context.Context, def *queries.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return err
	}

	if err := def.Validate(); err != nil {
		return err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return err
	}

	sel := selection.New()

	for _, t := range def.Tables {
		if !snap.HasTable(t.Name) {
			return errors.Newf(errors.ErrTypeUnknownIdentifier, "table %q does not exist", t.Name)
		}

		sel.IncludeTable(t.Name)

		for _, f := range t.Fields {
			ref := catalog.FieldRef{Table: t.Name, Field: f}
			if !snap.HasField(ref) {
				return errors.Newf(errors.ErrTypeUnknownIdentifier, "field %q does not exist", ref.String())
			}

			if err := sel.IncludeField(t.Name, f); err != nil {
				return err
			}
		}
	}

	graph := joins.NewGraph()

	if def.From != "" {
		graph.Recompute(def.From, sel.IncludedTables())

		for _, jd := range def.Joins {
			if err := applyJoin(graph, snap, jd); err != nil {
				return err
			}
		}
	}

	s.selection = sel
	s.graph = graph

	return nil
}

func applyJoin(graph *joins.Graph, snap *catalog.Snapshot, jd queries.JoinDefinition) error {
	j, err := jd.Join()
	if err != nil {
		return err
	}

	for _, ref := range []catalog.FieldRef{j.Left, j.Right} {
		if !ref.IsZero() && !snap.HasField(ref) {
			return errors.Newf(errors.ErrTypeUnknownIdentifier, "field %q does not exist", ref.String())
		}
	}

	if j.Type != joins.Unset {
		if err := graph.SetJoinType(j.Target, j.Type); err != nil {
			return err
		}
	}

	// A half-edited condition cannot be applied; the compiler reports what is missing.
	if j.Left.IsZero() || j.Operator == joins.NoOperator || j.Right.IsZero() {
		return nil
	}

	return graph.SetMatch(j.Target, j.Left, j.Operator, j.Right)
}
