package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kadirbelkuyu/schemer/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type Connection struct {
	DB     *sql.DB
	Target config.Target
}

func NewConnection(ctx context.Context, target config.Target) (*Connection, error) {
	driver := target.DriverName()
	if driver == "" {
		return nil, fmt.Errorf("unsupported database type for SQL connection: %s", target.Type)
	}

	db, err := sql.Open(driver, target.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return &Connection{
		DB:     db,
		Target: target,
	}, nil
}

// Wrap adopts an already opened handle, used with sqlmock in tests.
func Wrap(db *sql.DB, target config.Target) *Connection {
	return &Connection{DB: db, Target: target}
}

func (c *Connection) Close() error {
	return c.DB.Close()
}
