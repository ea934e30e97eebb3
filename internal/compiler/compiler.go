// Package compiler renders a query-builder selection and its join graph as SQL.
//
// Identifiers are interpolated into the SQL text, so every table and field is checked
// against a schema Validator first. Compilation is all-or-nothing.
package compiler

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/joins"
	"github.com/kyleking/sqlitegui/internal/selection"
)

// Validator answers whether identifiers exist in the schema.
// *catalog.Snapshot implements it.
type Validator interface {
	HasTable(table string) bool
	HasField(ref catalog.FieldRef) bool
}

// Input is everything a SELECT is compiled from
type Input struct {
	Selection *selection.Selection
	From      string
	Joins     []joins.Join
}

// Compile renders in as a SELECT statement:
//
//	SELECT t.f, ... FROM <from> <TYPE> JOIN <target> ON <left> <op> <right> ...
//
// Projection follows selection order and joins follow graph order, so identical input
// always yields identical text.
func Compile(in Input, v Validator) (string, error) {
	if in.Selection == nil || in.Selection.Len() == 0 {
		return "", errors.New(errors.ErrTypeEmptySelection, "no tables are selected").
			WithSuggestion("Select at least one table and field")
	}

	if in.From == "" {
		return "", errors.New(errors.ErrTypeValidation, "no from-table is set").
			WithSuggestion("Open the join builder on the table to select from")
	}

	if !in.Selection.IsTableIncluded(in.From) {
		return "", errors.Newf(errors.ErrTypeValidation, "from-table %s is not selected", in.From)
	}

	columns, err := projection(in.Selection, v)
	if err != nil {
		return "", err
	}

	if err := checkJoinCoverage(in); err != nil {
		return "", err
	}

	builder := sq.Select(columns...).From(in.From)

	for _, j := range in.Joins {
		clause, err := joinClause(in.From, j, v)
		if err != nil {
			return "", err
		}

		builder = builder.JoinClause(clause)
	}

	query, _, err := builder.ToSql()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeInternal, "failed to render query")
	}

	return query, nil
}

func projection(sel *selection.Selection, v Validator) ([]string, error) {
	var columns []string

	for _, table := range sel.IncludedTables() {
		if !v.HasTable(table) {
			return nil, unknownTable(table)
		}

		fields := sel.IncludedFields(table)
		if len(fields) == 0 {
			return nil, errors.NewEmptySelectionError(table)
		}

		for _, field := range fields {
			ref := catalog.FieldRef{Table: table, Field: field}
			if !v.HasField(ref) {
				return nil, unknownField(ref)
			}

			columns = append(columns, ref.String())
		}
	}

	return columns, nil
}

// checkJoinCoverage requires exactly one join per selected table besides the from-table
func checkJoinCoverage(in Input) error {
	seen := make(map[string]bool, len(in.Joins))

	for _, j := range in.Joins {
		switch {
		case j.Target == in.From:
			return errors.Newf(errors.ErrTypeValidation, "the from-table %s cannot be joined to itself", j.Target)
		case !in.Selection.IsTableIncluded(j.Target):
			return errors.Newf(errors.ErrTypeValidation, "join target %s is not selected", j.Target)
		case seen[j.Target]:
			return errors.Newf(errors.ErrTypeValidation, "table %s is joined more than once", j.Target)
		}

		seen[j.Target] = true
	}

	for _, table := range in.Selection.IncludedTables() {
		if table != in.From && !seen[table] {
			return errors.NewMissingJoinConditionError(table, "join")
		}
	}

	return nil
}

func joinClause(from string, j joins.Join, v Validator) (string, error) {
	if missing := j.Missing(); missing != "" {
		return "", errors.NewMissingJoinConditionError(j.Target, missing)
	}

	if !v.HasTable(j.Target) {
		return "", unknownTable(j.Target)
	}

	if j.Left.Table != from {
		return "", errors.Newf(errors.ErrTypeValidation,
			"left field %s of the join to %s must belong to %s", j.Left, j.Target, from)
	}

	if j.Right.Table != j.Target {
		return "", errors.Newf(errors.ErrTypeValidation,
			"right field %s of the join to %s must belong to %s", j.Right, j.Target, j.Target)
	}

	for _, ref := range []catalog.FieldRef{j.Left, j.Right} {
		if !v.HasField(ref) {
			return "", unknownField(ref)
		}
	}

	return fmt.Sprintf("%s JOIN %s ON %s", j.Type, j.Target, j.Condition()), nil
}

func unknownTable(table string) error {
	return errors.Newf(errors.ErrTypeUnknownIdentifier, "table %q does not exist", table).
		WithSuggestion("Refresh the table list; the schema may have changed")
}

func unknownField(ref catalog.FieldRef) error {
	return errors.Newf(errors.ErrTypeUnknownIdentifier, "field %q does not exist", ref.String()).
		WithSuggestion("Refresh the field list; the schema may have changed")
}
