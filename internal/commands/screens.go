package commands

import (
	"context"
	"slices"

	"github.com/kyleking/sqlitegui/internal/compiler"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/joins"
	"github.com/kyleking/sqlitegui/internal/storage"
	"github.com/kyleking/sqlitegui/internal/workspace"
)

// DefaultScreen is shown before any command is chosen
type DefaultScreen struct{}

func (DefaultScreen) Name() string { return "Default" }

func (DefaultScreen) HelpText() string {
	return "Choose a table and a command to start building a statement."
}

func (DefaultScreen) OnOpen(context.Context, OpenContext) error { return nil }

// SelectScreen builds a SELECT with the opened table as its FROM table
type SelectScreen struct {
	session *workspace.Session
	table   string
	joins   []joins.Join
}

// NewSelectScreen returns a SELECT screen for session
func NewSelectScreen(session *workspace.Session) *SelectScreen {
	return &SelectScreen{session: session}
}

func (s *SelectScreen) Name() string { return "Select" }

func (s *SelectScreen) HelpText() string {
	return "Tick the tables and fields to project. Every table other than the FROM table " +
		"needs a join type and a condition matching one of its fields to a field of the FROM table."
}

// OnOpen makes oc.Table the FROM table of the session's query
func (s *SelectScreen) OnOpen(ctx context.Context, oc OpenContext) error {
	if err := requireTable(Select, oc); err != nil {
		return err
	}

	js, err := s.session.OpenJoinBuilder(ctx, oc.Table)
	if err != nil {
		return err
	}

	s.table = oc.Table
	s.joins = js

	return nil
}

// Table returns the FROM table
func (s *SelectScreen) Table() string {
	return s.table
}

// Joins returns the joins as they were when the screen opened
func (s *SelectScreen) Joins() []joins.Join {
	return slices.Clone(s.joins)
}

// UpdateScreen builds an UPDATE of the opened table
type UpdateScreen struct {
	session *workspace.Session
	table   string
	fields  []string
}

// NewUpdateScreen returns an UPDATE screen for session
func NewUpdateScreen(session *workspace.Session) *UpdateScreen {
	return &UpdateScreen{session: session}
}

func (u *UpdateScreen) Name() string { return "Update" }

func (u *UpdateScreen) HelpText() string {
	return "Assign new values to fields of the table. Rows are matched by equality on the " +
		"WHERE fields; with no WHERE fields every row is updated."
}

// OnOpen records the target table and its fields
func (u *UpdateScreen) OnOpen(ctx context.Context, oc OpenContext) error {
	if err := requireTable(Update, oc); err != nil {
		return err
	}

	tables, err := u.session.TableList(ctx)
	if err != nil {
		return err
	}

	if !slices.Contains(tables, oc.Table) {
		return errors.Newf(errors.ErrTypeUnknownIdentifier, "table %q does not exist", oc.Table)
	}

	fields, err := u.session.FieldList(ctx, oc.Table)
	if err != nil {
		return err
	}

	u.table = oc.Table
	u.fields = fields

	return nil
}

// Table returns the target table
func (u *UpdateScreen) Table() string {
	return u.table
}

// Fields returns the fields of the target table
func (u *UpdateScreen) Fields() []string {
	return slices.Clone(u.fields)
}

func (u *UpdateScreen) input(set, where []compiler.Assignment) (compiler.UpdateInput, error) {
	if u.table == "" {
		return compiler.UpdateInput{}, errors.New(errors.ErrTypeValidation, "update screen is not open")
	}

	return compiler.UpdateInput{Table: u.table, Set: set, Where: where}, nil
}

// Compile renders the UPDATE without running it
func (u *UpdateScreen) Compile(ctx context.Context, set, where []compiler.Assignment) (string, []any, error) {
	in, err := u.input(set, where)
	if err != nil {
		return "", nil, err
	}

	return u.session.CompileUpdate(ctx, in)
}

// Run executes the UPDATE. The write stays pending until the session is saved.
func (u *UpdateScreen) Run(ctx context.Context, set, where []compiler.Assignment) (*storage.QueryResult, error) {
	in, err := u.input(set, where)
	if err != nil {
		return nil, err
	}

	return u.session.RunUpdate(ctx, in)
}
