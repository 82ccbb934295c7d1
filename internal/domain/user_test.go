package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/crypto"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_userDomain_GetUser(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()

	me, err := d.user.GetMe(ctx, &model.GetMeRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.Email, me.User.Email)

	other, err := d.user.GetUser(ctx, &model.GetUserRequest{UserID: testutil.User3.ID})
	require.NoError(t, err)
	require.Equal(t, "carol", other.User.Username)
	require.Equal(t, "hello", other.User.About)
	require.Empty(t, other.User.Email)

	_, err = d.user.GetUser(ctx, &model.GetUserRequest{UserID: "unknown"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found user"), err)
}

func Test_userDomain_UpdateMe(t *testing.T) {
	str := func(s string) *string { return &s }

	type args struct {
		ctx context.Context
		req *model.UpdateMeRequest
	}

	tests := []struct {
		name    string
		args    args
		want    model.User
		wantErr error
	}{
		{
			name: "happy case",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.UpdateMeRequest{
					Password:      testutil.FixturePassword,
					Username:      str("alicia"),
					Discriminator: str("0042"),
					About:         str("new about"),
				},
			},
			want: model.User{
				ID:            testutil.User1.ID,
				Username:      "alicia",
				Discriminator: "0042",
				Email:         testutil.User1.Email,
				About:         "new about",
			},
		},
		{
			name: "wrong password",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.UpdateMeRequest{Password: "wrong", About: str("new about")},
			},
			wantErr: errorx.New(errorx.Unauthenticated, "Wrong password"),
		},
		{
			name: "taken tag",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.UpdateMeRequest{
					Password:      testutil.FixturePassword,
					Discriminator: str(testutil.User4.Discriminator),
				},
			},
			wantErr: errorx.New(errorx.Conflict, "The tag alice#0004 is already taken"),
		},
		{
			name: "taken email",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.UpdateMeRequest{
					Password: testutil.FixturePassword,
					Email:    str(testutil.User2.Email),
				},
			},
			wantErr: errorx.New(errorx.Conflict, "The email is already used"),
		},
		{
			name: "invalid discriminator",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.UpdateMeRequest{Password: testutil.FixturePassword, Discriminator: str("12a4")},
			},
			wantErr: errorx.New(errorx.BadRequest, "Discriminator must be 4 digits"),
		},
		{
			name: "username too long",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.UpdateMeRequest{
					Password: testutil.FixturePassword,
					Username: str(strings.Repeat("u", 31)),
				},
			},
			wantErr: errorx.New(errorx.BadRequest, "Username too long (at most 30 characters)"),
		},
		{
			name: "about too long",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.UpdateMeRequest{
					Password: testutil.FixturePassword,
					About:    str(strings.Repeat("a", 1001)),
				},
			},
			wantErr: errorx.New(errorx.BadRequest, "About too long (at most 1000 characters)"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDomains()
			got, err := d.user.UpdateMe(tt.args.ctx, tt.args.req)
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				require.Empty(t, d.notifier.Events(testutil.User1.ID))
				return
			}

			require.NoError(t, err)
			tt.want.Creation = got.User.Creation
			require.Equal(t, tt.want, got.User)
			require.Equal(t, []event.Kind{event.UserEditedKind}, d.notifier.Kinds(testutil.User1.ID))
		})
	}
}

func Test_userDomain_UpdatePassword(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d := newTestDomains()

	newPassword := "correct horse battery staple"
	_, err := d.user.UpdateMe(ctx, &model.UpdateMeRequest{
		Password:    testutil.FixturePassword,
		NewPassword: &newPassword,
	})
	require.NoError(t, err)

	user, err := d.userRepo.GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)

	ok, err := crypto.VerifyPassword(user.Password, newPassword)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = d.user.UpdateMe(ctx, &model.UpdateMeRequest{Password: testutil.FixturePassword})
	require.Equal(t, errorx.New(errorx.Unauthenticated, "Wrong password"), err)
}

// staleUserRepository misses the rows written by concurrent requests, so the
// uniqueness checks pass and only the unique index catches the duplicate.
type staleUserRepository struct {
	repository.UserRepository
}

func (staleUserRepository) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (staleUserRepository) GetByUsernameAndDiscriminator(context.Context, string, string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func Test_userDomain_UpdateMe_DuplicateKey(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		req     *model.UpdateMeRequest
		wantErr error
	}{
		{
			name: "email taken",
			req: &model.UpdateMeRequest{
				Password: testutil.FixturePassword,
				Email:    str(testutil.User2.Email),
			},
			wantErr: errorx.New(errorx.Conflict, "The email is already used"),
		},
		{
			name: "tag taken",
			req: &model.UpdateMeRequest{
				Password:      testutil.FixturePassword,
				Username:      str(testutil.User2.Username),
				Discriminator: str(testutil.User2.Discriminator),
			},
			wantErr: errorx.New(errorx.Conflict, "The tag bob#0002 or the email is already used"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContextWithUserID(testutil.User1.ID)
			notifier := testutil.NewMockNotifier()
			d := NewUserDomain(staleUserRepository{repository.NewUserRepository()}, notifier)

			_, err := d.UpdateMe(ctx, tt.req)
			require.Equal(t, tt.wantErr, err)
			require.Empty(t, notifier.Events(testutil.User1.ID))

			me, err := d.GetMe(ctx, &model.GetMeRequest{})
			require.NoError(t, err)
			require.Equal(t, testutil.User1.Email, me.User.Email)
			require.Equal(t, testutil.User1.Username, me.User.Username)
		})
	}
}
