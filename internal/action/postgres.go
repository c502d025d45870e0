package action

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PostgresAdmin implements DatabaseAdmin against a local Postgres
// server, connecting as the superuser for each administrative call.
type PostgresAdmin struct {
	dsn string
}

// NewPostgresAdmin builds the admin for the postgres superuser with the
// given password, talking to the default local server.
func NewPostgresAdmin(rootPassword string) *PostgresAdmin {
	return &PostgresAdmin{
		dsn: fmt.Sprintf("postgres://postgres:%s@localhost:5432/postgres", url.QueryEscape(rootPassword)),
	}
}

func (a *PostgresAdmin) withConn(ctx context.Context, fn func(*pgx.Conn) error) error {
	conn, err := pgx.Connect(ctx, a.dsn)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close(ctx)
	return fn(conn)
}

func (a *PostgresAdmin) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := a.withConn(ctx, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	})
	return exists, err
}

func (a *PostgresAdmin) CreateDatabase(ctx context.Context, name string) error {
	// DDL cannot be parameterized; identifiers are sanitized instead.
	return a.withConn(ctx, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{name}.Sanitize()))
		return err
	})
}

func (a *PostgresAdmin) RoleExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := a.withConn(ctx, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", name).Scan(&exists)
	})
	return exists, err
}

func (a *PostgresAdmin) CreateRole(ctx context.Context, name, password string) error {
	return a.withConn(ctx, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("CREATE ROLE %s LOGIN PASSWORD %s",
			pgx.Identifier{name}.Sanitize(), quoteLiteral(password)))
		return err
	})
}

func (a *PostgresAdmin) Grant(ctx context.Context, database, role string) error {
	return a.withConn(ctx, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s",
			pgx.Identifier{database}.Sanitize(), pgx.Identifier{role}.Sanitize()))
		return err
	})
}

// quoteLiteral renders a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
