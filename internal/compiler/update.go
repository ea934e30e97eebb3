package compiler

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
)

// Assignment pairs a field of the target table with a value
type Assignment struct {
	Field string
	Value any
}

// UpdateInput describes an UPDATE of one table. Where entries are ANDed equality tests;
// an empty Where updates every row.
type UpdateInput struct {
	Table string
	Set   []Assignment
	Where []Assignment
}

// CompileUpdate renders an UPDATE statement. Values are never interpolated; they are
// returned as positional args for the data source to bind.
func CompileUpdate(in UpdateInput, v Validator) (string, []any, error) {
	if !v.HasTable(in.Table) {
		return "", nil, unknownTable(in.Table)
	}

	if len(in.Set) == 0 {
		return "", nil, errors.Newf(errors.ErrTypeValidation, "update of %s sets no fields", in.Table).
			WithSuggestion("Provide at least one field=value assignment")
	}

	builder := sq.Update(in.Table)

	for _, a := range in.Set {
		if !v.HasField(catalog.FieldRef{Table: in.Table, Field: a.Field}) {
			return "", nil, unknownField(catalog.FieldRef{Table: in.Table, Field: a.Field})
		}

		builder = builder.Set(a.Field, a.Value)
	}

	if len(in.Where) > 0 {
		where := sq.Eq{}

		for _, a := range in.Where {
			if !v.HasField(catalog.FieldRef{Table: in.Table, Field: a.Field}) {
				return "", nil, unknownField(catalog.FieldRef{Table: in.Table, Field: a.Field})
			}

			where[a.Field] = a.Value
		}

		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrTypeInternal, "failed to render update")
	}

	return query, args, nil
}
