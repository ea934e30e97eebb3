package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/joins"
	"github.com/kyleking/sqlitegui/internal/selection"
	"github.com/kyleking/sqlitegui/internal/storage"
	"github.com/kyleking/sqlitegui/internal/testutil"
)

func ref(table, field string) catalog.FieldRef {
	return catalog.FieldRef{Table: table, Field: field}
}

func shopSnapshot(t *testing.T) (*catalog.Snapshot, storage.DataSource) {
	t.Helper()

	ds := storage.NewTestDB(t, testutil.ShopDDL+testutil.ShopSeed)

	snap, err := catalog.New(ds).Snapshot(context.Background())
	require.NoError(t, err)

	return snap, ds
}

// shopInput builds customers(id, name) INNER JOIN orders(total) on customer_id
func shopInput(t *testing.T) Input {
	t.Helper()

	sel := selection.New()
	sel.IncludeTable("customers")
	sel.IncludeTable("orders")
	require.NoError(t, sel.IncludeField("customers", "id"))
	require.NoError(t, sel.IncludeField("customers", "name"))
	require.NoError(t, sel.IncludeField("orders", "total"))

	g := joins.NewGraph()
	g.Recompute("customers", sel.IncludedTables())
	require.NoError(t, g.SetJoinType("orders", joins.Inner))
	require.NoError(t, g.SetMatch("orders", ref("customers", "id"), joins.Equal, ref("orders", "customer_id")))

	return Input{Selection: sel, From: g.From(), Joins: g.Joins()}
}

func TestCompileShopQuery(t *testing.T) {
	snap, ds := shopSnapshot(t)

	query, err := Compile(shopInput(t), snap)
	require.NoError(t, err)
	assert.Equal(t, testutil.ShopQuery, query)

	result, err := ds.Execute(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "total"}, result.Columns)
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, int64(storage.NoRowCount), result.RowsAffected)
}

func TestCompileIsDeterministic(t *testing.T) {
	snap, _ := shopSnapshot(t)
	in := shopInput(t)

	first, err := Compile(in, snap)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Compile(in, snap)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompileSingleTable(t *testing.T) {
	snap, _ := shopSnapshot(t)

	sel := selection.New()
	sel.IncludeTable("orders")
	require.NoError(t, sel.IncludeField("orders", "total"))
	require.NoError(t, sel.IncludeField("orders", "id"))

	query, err := Compile(Input{Selection: sel, From: "orders"}, snap)
	require.NoError(t, err)
	assert.Equal(t, "SELECT orders.total, orders.id FROM orders", query)
}

func TestCompileJoinTypes(t *testing.T) {
	snap, _ := shopSnapshot(t)

	for _, jt := range joins.JoinTypes {
		t.Run(string(jt), func(t *testing.T) {
			in := shopInput(t)
			in.Joins[0].Type = jt

			query, err := Compile(in, snap)
			require.NoError(t, err)
			assert.Contains(t, query, " "+string(jt)+" JOIN orders ON customers.id = orders.customer_id")
		})
	}
}

func TestCompileErrors(t *testing.T) {
	snap, _ := shopSnapshot(t)

	tests := []struct {
		name     string
		mutate   func(t *testing.T, in *Input)
		errType  errors.ErrorType
		contains string
	}{
		{
			name:    "nothing selected",
			mutate:  func(_ *testing.T, in *Input) { in.Selection = selection.New() },
			errType: errors.ErrTypeEmptySelection,
		},
		{
			name:    "no from-table",
			mutate:  func(_ *testing.T, in *Input) { in.From = "" },
			errType: errors.ErrTypeValidation,
		},
		{
			name:    "from-table not selected",
			mutate:  func(_ *testing.T, in *Input) { in.From = "payments" },
			errType: errors.ErrTypeValidation,
		},
		{
			name: "selected table without fields",
			mutate: func(t *testing.T, in *Input) {
				_, err := in.Selection.ToggleField("orders", "total")
				require.NoError(t, err)
			},
			errType:  errors.ErrTypeEmptySelection,
			contains: "orders",
		},
		{
			name:     "join type missing",
			mutate:   func(_ *testing.T, in *Input) { in.Joins[0].Type = joins.Unset },
			errType:  errors.ErrTypeMissingJoinCondition,
			contains: "join type",
		},
		{
			name:     "operator missing",
			mutate:   func(_ *testing.T, in *Input) { in.Joins[0].Operator = joins.NoOperator },
			errType:  errors.ErrTypeMissingJoinCondition,
			contains: "operator",
		},
		{
			name:     "right field missing",
			mutate:   func(_ *testing.T, in *Input) { in.Joins[0].Right = catalog.FieldRef{} },
			errType:  errors.ErrTypeMissingJoinCondition,
			contains: "right field",
		},
		{
			name:     "join absent for selected table",
			mutate:   func(_ *testing.T, in *Input) { in.Joins = nil },
			errType:  errors.ErrTypeMissingJoinCondition,
			contains: "orders",
		},
		{
			name: "join target not selected",
			mutate: func(_ *testing.T, in *Input) {
				in.Joins = append(in.Joins, joins.Join{Target: "payments"})
			},
			errType: errors.ErrTypeValidation,
		},
		{
			name: "duplicate join",
			mutate: func(_ *testing.T, in *Input) {
				in.Joins = append(in.Joins, in.Joins[0])
			},
			errType: errors.ErrTypeValidation,
		},
		{
			name: "left field on wrong table",
			mutate: func(_ *testing.T, in *Input) {
				in.Joins[0].Left = ref("orders", "id")
			},
			errType: errors.ErrTypeValidation,
		},
		{
			name: "unknown field in projection",
			mutate: func(t *testing.T, in *Input) {
				require.NoError(t, in.Selection.IncludeField("orders", "discount"))
			},
			errType:  errors.ErrTypeUnknownIdentifier,
			contains: "orders.discount",
		},
		{
			name: "unknown field in condition",
			mutate: func(_ *testing.T, in *Input) {
				in.Joins[0].Right = ref("orders", "buyer_id")
			},
			errType:  errors.ErrTypeUnknownIdentifier,
			contains: "orders.buyer_id",
		},
		{
			name: "unknown table",
			mutate: func(t *testing.T, in *Input) {
				in.Selection.IncludeTable("widgets")
				require.NoError(t, in.Selection.IncludeField("widgets", "id"))
			},
			errType:  errors.ErrTypeUnknownIdentifier,
			contains: "widgets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := shopInput(t)
			tt.mutate(t, &in)

			query, err := Compile(in, snap)
			require.Error(t, err)
			assert.Empty(t, query)
			assert.Equal(t, tt.errType, errors.GetType(err), err.Error())

			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestCompileUpdate(t *testing.T) {
	snap, ds := shopSnapshot(t)
	ctx := context.Background()

	query, args, err := CompileUpdate(UpdateInput{
		Table: "orders",
		Set:   []Assignment{{Field: "total", Value: 12.5}},
		Where: []Assignment{{Field: "customer_id", Value: 1}},
	}, snap)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE orders SET total = ? WHERE customer_id = ?", query)
	assert.Equal(t, []any{12.5, 1}, args)

	result, err := ds.Execute(ctx, query, args...)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.RowsAffected)
	require.NoError(t, ds.Rollback(ctx))
}

func TestCompileUpdateWithoutWhere(t *testing.T) {
	snap, _ := shopSnapshot(t)

	query, args, err := CompileUpdate(UpdateInput{
		Table: "customers",
		Set:   []Assignment{{Field: "name", Value: "anon"}},
	}, snap)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE customers SET name = ?", query)
	assert.Equal(t, []any{"anon"}, args)
}

func TestCompileUpdateErrors(t *testing.T) {
	snap, _ := shopSnapshot(t)

	tests := []struct {
		name    string
		in      UpdateInput
		errType errors.ErrorType
	}{
		{"unknown table", UpdateInput{Table: "widgets", Set: []Assignment{{Field: "id", Value: 1}}}, errors.ErrTypeUnknownIdentifier},
		{"no assignments", UpdateInput{Table: "orders"}, errors.ErrTypeValidation},
		{"unknown set field", UpdateInput{Table: "orders", Set: []Assignment{{Field: "discount", Value: 1}}}, errors.ErrTypeUnknownIdentifier},
		{
			"unknown where field",
			UpdateInput{Table: "orders", Set: []Assignment{{Field: "total", Value: 1}}, Where: []Assignment{{Field: "name", Value: "Ada"}}},
			errors.ErrTypeUnknownIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := CompileUpdate(tt.in, snap)
			require.Error(t, err)
			assert.Equal(t, tt.errType, errors.GetType(err))
		})
	}
}
