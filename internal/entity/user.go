package entity

import "database/sql"

type User struct {
	Base
	Username      string `gorm:"uniqueIndex:idx_users_username_discriminator"`
	Discriminator string `gorm:"uniqueIndex:idx_users_username_discriminator;size:4"`
	Email         string `gorm:"unique"`
	Password      string
	About         sql.NullString
	Avatar        sql.NullString
}
