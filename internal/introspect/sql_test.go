package introspect_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/kadirbelkuyu/schemer/internal/config"
	"github.com/kadirbelkuyu/schemer/internal/database"
	"github.com/kadirbelkuyu/schemer/internal/introspect"
	"github.com/kadirbelkuyu/schemer/internal/schema"
)

func newMockSource(t *testing.T, target config.Target) (introspect.Source, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src, err := introspect.NewSQLSource(database.Wrap(db, target))
	require.NoError(t, err)
	return src, mock
}

func TestMySQLSourceDescribesTables(t *testing.T) {
	src, mock := newMockSource(t, config.Target{ID: "prod", Type: "mysql"})

	mock.ExpectQuery(regexp.QuoteMeta("SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_app", "Table_type"}).
			AddRow("users", "BASE TABLE").
			AddRow("orders", "BASE TABLE"))
	mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", []byte("int(11)"), "NO", "PRI", nil, "auto_increment").
			AddRow("email", "varchar(255)", "YES", "", nil, ""))
	mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `orders`")).
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "int(11)", "NO", "PRI", int64(0), ""))

	snap, err := introspect.Capture(context.Background(), "prod", src)
	require.NoError(t, err)
	require.Equal(t, []string{"users", "orders"}, snap.Tables().Tables())

	users, ok := snap.Tables().Columns("users")
	require.True(t, ok)
	require.Equal(t, []schema.ColumnDescriptor{
		{"Field": "id", "Type": "int(11)", "Null": "NO", "Key": "PRI", "Default": nil, "Extra": "auto_increment"},
		{"Field": "email", "Type": "varchar(255)", "Null": "YES", "Key": "", "Default": nil, "Extra": ""},
	}, users)

	orders, _ := snap.Tables().Columns("orders")
	require.Equal(t, "0", orders[0]["Default"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSourceListsOnlyBaseTables(t *testing.T) {
	src, mock := newMockSource(t, config.Target{ID: "prod", Type: "mysql"})

	mock.ExpectQuery(regexp.QuoteMeta("SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_app", "Table_type"}).AddRow("users", "BASE TABLE"))

	tables, err := src.ListTables(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"users"}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSourceQuotesIdentifiers(t *testing.T) {
	src, mock := newMockSource(t, config.Target{ID: "prod", Type: "mysql"})

	mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `odd``name`")).
		WillReturnRows(sqlmock.NewRows([]string{"Field"}))

	columns, err := src.DescribeTable(context.Background(), "odd`name")
	require.NoError(t, err)
	require.Empty(t, columns)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSourceFailsOnDescribeError(t *testing.T) {
	src, mock := newMockSource(t, config.Target{ID: "prod", Type: "mysql"})

	mock.ExpectQuery(regexp.QuoteMeta("SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_app", "Table_type"}).AddRow("users", "BASE TABLE"))
	mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `users`")).
		WillReturnError(sql.ErrConnDone)

	snap, err := introspect.Capture(context.Background(), "prod", src)
	require.Nil(t, snap)
	require.ErrorIs(t, err, sql.ErrConnDone)

	var fetchErr *schema.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, "users", fetchErr.Table)
}

func TestPostgresSourceUsesConfiguredSchema(t *testing.T) {
	src, mock := newMockSource(t, config.Target{ID: "replica", Type: "postgres", Schema: "billing"})

	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("billing").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("invoices"))
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("billing", "invoices").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Default", "Length"}).
			AddRow("id", "integer", "NO", nil, nil).
			AddRow("code", "character varying", "YES", nil, int64(32)))

	snap, err := introspect.Capture(context.Background(), "replica", src)
	require.NoError(t, err)

	columns, ok := snap.Tables().Columns("invoices")
	require.True(t, ok)
	require.Len(t, columns, 2)
	require.Equal(t, "code", columns[1]["Field"])
	require.Equal(t, "32", columns[1]["Length"])
	require.Nil(t, columns[0]["Length"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSourceReadsRealDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL DEFAULT '', bio TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE audit (at TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	target := config.Target{ID: "local", Type: "sqlite", Path: path}
	src, err := introspect.Open(context.Background(), target, nil)
	require.NoError(t, err)
	defer src.Close()

	snap, err := introspect.Capture(context.Background(), "local", src)
	require.NoError(t, err)
	require.Equal(t, []string{"audit", "users"}, snap.Tables().Tables())

	users, _ := snap.Tables().Columns("users")
	require.Equal(t, []schema.ColumnDescriptor{
		{"Field": "id", "Type": "INTEGER", "Null": "YES", "Key": "PRI", "Default": nil},
		{"Field": "email", "Type": "TEXT", "Null": "NO", "Key": "", "Default": "''"},
		{"Field": "bio", "Type": "TEXT", "Null": "YES", "Key": "", "Default": nil},
	}, users)
}

func TestNewSQLSourceRejectsUnknownType(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = introspect.NewSQLSource(database.Wrap(db, config.Target{Type: "mongo"}))
	require.Error(t, err)
}
