package testutil

import (
	"context"
	"database/sql"
	"sync"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/crypto"
)

const FixturePassword = "password"

var (
	User1 = &entity.User{
		Base:          entity.Base{ID: "user1"},
		Username:      "alice",
		Discriminator: "0001",
		Email:         "alice@example.com",
	}

	User2 = &entity.User{
		Base:          entity.Base{ID: "user2"},
		Username:      "bob",
		Discriminator: "0002",
		Email:         "bob@example.com",
	}

	User3 = &entity.User{
		Base:          entity.Base{ID: "user3"},
		Username:      "carol",
		Discriminator: "0003",
		Email:         "carol@example.com",
		About:         sql.NullString{Valid: true, String: "hello"},
	}

	User4 = &entity.User{
		Base:          entity.Base{ID: "user4"},
		Username:      "alice",
		Discriminator: "0004",
		Email:         "alice4@example.com",
	}

	Users = []*entity.User{User1, User2, User3, User4}
)

var (
	hashedPassword     string
	hashedPasswordOnce sync.Once
)

func CreateFixtureDb(ctx context.Context) {
	hashedPasswordOnce.Do(func() {
		var err error
		hashedPassword, err = crypto.HashPassword(FixturePassword)
		if err != nil {
			panic(err)
		}
	})

	userRepo := repository.NewUserRepository()
	for _, u := range Users {
		user := *u
		user.Password = hashedPassword
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}
