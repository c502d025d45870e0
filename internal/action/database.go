package action

import (
	"context"
	"fmt"
	"time"

	"provision/internal/inputs"
)

// DatabaseAdmin is the port to the database server. The pgx-backed
// implementation lives in postgres.go; tests substitute a fake.
type DatabaseAdmin interface {
	DatabaseExists(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name string) error
	RoleExists(ctx context.Context, name string) (bool, error)
	CreateRole(ctx context.Context, name, password string) error
	Grant(ctx context.Context, database, role string) error
}

// DatabaseCreate ensures the application database exists.
type DatabaseCreate struct {
	meta
	admin DatabaseAdmin
}

// NewDatabaseCreate creates the database-create action.
func NewDatabaseCreate(admin DatabaseAdmin, timeout time.Duration) *DatabaseCreate {
	return &DatabaseCreate{
		meta:  meta{name: "database.create", dependsOn: []string{"packages.install"}, timeout: timeout},
		admin: admin,
	}
}

func (d *DatabaseCreate) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	return d.admin.DatabaseExists(ctx, ec.Value(inputs.ParamDBName))
}

func (d *DatabaseCreate) Apply(ctx context.Context, ec *inputs.Context) error {
	if err := d.admin.CreateDatabase(ctx, ec.Value(inputs.ParamDBName)); err != nil {
		return fmt.Errorf("creating database %q: %w", ec.Value(inputs.ParamDBName), err)
	}
	return nil
}

// DatabaseUser ensures the application role exists with its password
// and holds privileges on the application database.
type DatabaseUser struct {
	meta
	admin DatabaseAdmin
}

// NewDatabaseUser creates the database-user action.
func NewDatabaseUser(admin DatabaseAdmin, timeout time.Duration) *DatabaseUser {
	return &DatabaseUser{
		meta:  meta{name: "database.user", dependsOn: []string{"database.create"}, timeout: timeout},
		admin: admin,
	}
}

func (d *DatabaseUser) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	return d.admin.RoleExists(ctx, ec.Value(inputs.ParamDBUser))
}

func (d *DatabaseUser) Apply(ctx context.Context, ec *inputs.Context) error {
	user := ec.Value(inputs.ParamDBUser)
	if err := d.admin.CreateRole(ctx, user, ec.Value(inputs.ParamDBPassword)); err != nil {
		return fmt.Errorf("creating role %q: %w", user, err)
	}
	if err := d.admin.Grant(ctx, ec.Value(inputs.ParamDBName), user); err != nil {
		return fmt.Errorf("granting on %q to %q: %w", ec.Value(inputs.ParamDBName), user, err)
	}
	return nil
}
