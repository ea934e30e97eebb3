package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/storage"
	"github.com/kyleking/sqlitegui/internal/testutil"
)

func newShopCatalog(t *testing.T) (*Catalog, storage.DataSource) {
	t.Helper()

	ds := storage.NewTestDB(t, testutil.ShopDDL)

	return New(ds), ds
}

func TestListTables(t *testing.T) {
	cat, _ := newShopCatalog(t)

	tables, err := cat.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)
}

func TestListFieldsOrderedByTableThenField(t *testing.T) {
	cat, _ := newShopCatalog(t)

	fields, err := cat.ListFields(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []FieldRef{
		{"customers", "id"},
		{"customers", "name"},
		{"orders", "customer_id"},
		{"orders", "id"},
		{"orders", "total"},
	}, fields)
}

func TestFieldsOfAndNotOf(t *testing.T) {
	ctx := context.Background()
	cat, _ := newShopCatalog(t)

	fields, err := cat.FieldsOf(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_id", "id", "total"}, fields)

	others, err := cat.FieldsNotOf(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, []FieldRef{{"customers", "id"}, {"customers", "name"}}, others)

	none, err := cat.FieldsOf(ctx, "widgets")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogSeesSchemaChangesWithoutCaching(t *testing.T) {
	ctx := context.Background()
	cat, ds := newShopCatalog(t)

	_, err := cat.ListTables(ctx)
	require.NoError(t, err)

	_, err = ds.Execute(ctx, "CREATE TABLE products (sku TEXT, price REAL)")
	require.NoError(t, err)
	_, err = ds.Execute(ctx, "ALTER TABLE customers ADD COLUMN email TEXT")
	require.NoError(t, err)

	tables, err := cat.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders", "products"}, tables)

	fields, err := cat.FieldsOf(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "id", "name"}, fields)
}

func TestHasTableAndField(t *testing.T) {
	ctx := context.Background()
	cat, _ := newShopCatalog(t)

	ok, err := cat.HasTable(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cat.HasTable(ctx, "orders; DROP TABLE orders")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cat.HasField(ctx, FieldRef{"orders", "total"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cat.HasField(ctx, FieldRef{"customers", "total"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	cat, _ := newShopCatalog(t)

	snap, err := cat.Snapshot(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.HasTable("customers"))
	assert.False(t, snap.HasTable("sqlite_master"))
	assert.True(t, snap.HasField(FieldRef{"orders", "customer_id"}))
	assert.False(t, snap.HasField(FieldRef{"orders", "name"}))
}

func TestDataSourceFailurePropagates(t *testing.T) {
	driverErr := errors.New("database disk image is malformed")
	querier := &testutil.FailingQuerier{Err: driverErr}
	cat := New(querier)

	_, err := cat.ListTables(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataSource))
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "database disk image is malformed")

	_, err = cat.FieldsNotOf(context.Background(), "orders")
	require.Error(t, err)
	assert.Equal(t, 2, querier.Calls)
}

func TestParseFieldRef(t *testing.T) {
	tests := []struct {
		input   string
		want    FieldRef
		wantErr bool
	}{
		{"customers.id", FieldRef{"customers", "id"}, false},
		{" orders.customer_id ", FieldRef{"orders", "customer_id"}, false},
		{"a.b.c", FieldRef{"a", "b.c"}, false},
		{"customers", FieldRef{}, true},
		{".id", FieldRef{}, true},
		{"customers.", FieldRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFieldRef(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Table+"."+tt.want.Field, got.String())
		})
	}
}
