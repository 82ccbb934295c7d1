package entity

import (
	"context"

	"github.com/betalky/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Guild{},
		&Role{},
		&Member{},
		&Channel{},
		&Ban{},
		&Invite{},
		&AuditLog{},
	)
}
