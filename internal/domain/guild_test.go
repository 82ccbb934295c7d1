package domain

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/storage"
	"github.com/betalky/backend/pkg/testutil"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_guildDomain_Create(t *testing.T) {
	type args struct {
		ctx context.Context
		req *model.CreateGuildRequest
	}

	tests := []struct {
		name    string
		args    args
		wantErr error
	}{
		{
			name: "happy case",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.CreateGuildRequest{Name: "my guild", Description: "about us"},
			},
		},
		{
			name: "empty name",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.CreateGuildRequest{Name: "  "},
			},
			wantErr: errorx.New(errorx.BadRequest, "Not allow empty name"),
		},
		{
			name: "name too long",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.CreateGuildRequest{Name: strings.Repeat("a", 31)},
			},
			wantErr: errorx.New(errorx.BadRequest, "Name too long (at most 30 characters)"),
		},
		{
			name: "description too long",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.CreateGuildRequest{Name: "guild", Description: strings.Repeat("a", 1001)},
			},
			wantErr: errorx.New(errorx.BadRequest, "Description too long (at most 1000 characters)"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDomains()
			got, err := d.guild.Create(tt.args.ctx, tt.args.req)
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				require.Empty(t, d.notifier.Events(testutil.User1.ID))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.args.req.Name, got.Guild.Name)
			require.Equal(t, 1, got.Guild.Members)
			require.Len(t, got.Guild.Roles, 2)

			guild := loadTestGuild(t, tt.args.ctx, d, got.Guild.ID)
			require.Equal(t, testutil.User1.ID, requireSingleOwner(t, guild))
			require.Len(t, guild.Channels, 1)
			require.Equal(t, "general", guild.Channels[0].Name)
			require.Equal(t, entity.TextChannel, guild.Channels[0].Type)
			require.Equal(t, entity.ADMINISTRATOR, common.OwnerRole(guild).Permissions)
			require.Equal(t, entity.DefaultMemberPermissions, common.DefaultRole(guild).Permissions)
			require.True(t, common.CheckChannelPermission(
				guild, guild.Channels[0].ID, testutil.User1.ID, entity.MANAGE_MESSAGES))

			require.Equal(t, []event.Kind{event.GuildJoinedKind}, d.notifier.Kinds(testutil.User1.ID))
		})
	}
}

func Test_guildDomain_Get(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	resp, err := d.guild.Get(asUser(ctx, testutil.User2.ID), &model.GetGuildRequest{GuildID: guild.ID})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Guild.Members)

	_, err = d.guild.Get(asUser(ctx, testutil.User3.ID), &model.GetGuildRequest{GuildID: guild.ID})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found guild"), err)

	_, err = d.guild.Get(ctx, &model.GetGuildRequest{GuildID: "unknown"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found guild"), err)

	mine, err := d.guild.GetMyGuilds(asUser(ctx, testutil.User2.ID), &model.GetMyGuildsRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Guilds, 1)
	require.Equal(t, guild.ID, mine.Guilds[0].ID)

	mine, err = d.guild.GetMyGuilds(asUser(ctx, testutil.User3.ID), &model.GetMyGuildsRequest{})
	require.NoError(t, err)
	require.Empty(t, mine.Guilds)
}

func Test_guildDomain_Update(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	name := "renamed"
	public := true
	tooLong := strings.Repeat("a", 31)

	tests := []struct {
		name    string
		ctx     context.Context
		req     *model.UpdateGuildRequest
		wantErr error
	}{
		{
			name:    "name too long",
			ctx:     ctx,
			req:     &model.UpdateGuildRequest{GuildID: guild.ID, Name: &tooLong},
			wantErr: errorx.New(errorx.BadRequest, "Name too long (at most 30 characters)"),
		},
		{
			name:    "member without manage guild",
			ctx:     asUser(ctx, testutil.User2.ID),
			req:     &model.UpdateGuildRequest{GuildID: guild.ID, Name: &name},
			wantErr: errorx.New(errorx.PermissionDenied, "Permission denied"),
		},
		{
			name:    "non member",
			ctx:     asUser(ctx, testutil.User3.ID),
			req:     &model.UpdateGuildRequest{GuildID: guild.ID, Name: &name},
			wantErr: errorx.New(errorx.NotFound, "Not found guild"),
		},
		{
			name: "happy case",
			ctx:  ctx,
			req:  &model.UpdateGuildRequest{GuildID: guild.ID, Name: &name, Public: &public},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.notifier.Reset()
			got, err := d.guild.Update(tt.ctx, tt.req)
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, name, got.Guild.Name)
			require.True(t, got.Guild.Public)

			for _, id := range []string{testutil.User1.ID, testutil.User2.ID} {
				require.Equal(t, []event.Kind{event.GuildEditedKind}, d.notifier.Kinds(id))
			}
			require.Empty(t, d.notifier.Events(testutil.User3.ID))

			stored := loadTestGuild(t, ctx, d, guild.ID)
			require.Equal(t, name, stored.Name)
			require.True(t, stored.Public)
		})
	}
}

func Test_guildDomain_Delete(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.User3.ID)

	_, err := d.guild.Delete(asUser(ctx, testutil.User2.ID), &model.DeleteGuildRequest{GuildID: guild.ID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the owner can do this"), err)

	_, err = d.guild.Delete(ctx, &model.DeleteGuildRequest{GuildID: guild.ID})
	require.NoError(t, err)

	for _, id := range []string{testutil.User1.ID, testutil.User2.ID, testutil.User3.ID} {
		events := d.notifier.Events(id)
		require.Len(t, events, 1)
		require.Equal(t, event.GuildLeftKind, events[0].Event)
		require.Equal(t, guild.ID, events[0].GuildID)
	}

	_, err = d.guild.Get(ctx, &model.GetGuildRequest{GuildID: guild.ID})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found guild"), err)

	mine, err := d.guild.GetMyGuilds(asUser(ctx, testutil.User2.ID), &model.GetMyGuildsRequest{})
	require.NoError(t, err)
	require.Empty(t, mine.Guilds)
}

func Test_guildDomain_TransferOwnership(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	// Transfer to self changes nothing.
	_, err := d.guild.TransferOwnership(ctx, &model.TransferGuildOwnershipRequest{
		GuildID: guild.ID,
		UserID:  testutil.User1.ID,
	})
	require.NoError(t, err)
	require.Empty(t, d.notifier.Events(testutil.User1.ID))
	require.Equal(t, testutil.User1.ID, requireSingleOwner(t, loadTestGuild(t, ctx, d, guild.ID)))

	_, err = d.guild.TransferOwnership(ctx, &model.TransferGuildOwnershipRequest{
		GuildID: guild.ID,
		UserID:  testutil.User3.ID,
	})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found member"), err)

	_, err = d.guild.TransferOwnership(asUser(ctx, testutil.User2.ID), &model.TransferGuildOwnershipRequest{
		GuildID: guild.ID,
		UserID:  testutil.User2.ID,
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Permission denied"), err)

	resp, err := d.guild.TransferOwnership(ctx, &model.TransferGuildOwnershipRequest{
		GuildID: guild.ID,
		UserID:  testutil.User2.ID,
	})
	require.NoError(t, err)
	require.Equal(t, guild.ID, resp.Guild.ID)

	stored := loadTestGuild(t, ctx, d, guild.ID)
	require.Equal(t, testutil.User2.ID, requireSingleOwner(t, stored))
	require.True(t, common.CheckGuildPermission(stored, testutil.User2.ID, entity.MANAGE_GUILD))
	require.False(t, common.CheckGuildPermission(stored, testutil.User1.ID, entity.MANAGE_GUILD))
	require.True(t, common.CheckGuildPermission(stored, testutil.User1.ID, entity.CREATE_INVITE))

	for _, id := range []string{testutil.User1.ID, testutil.User2.ID} {
		require.Equal(t, []event.Kind{event.GuildEditedKind}, d.notifier.Kinds(id))
	}

	// The previous owner lost the right to transfer.
	_, err = d.guild.TransferOwnership(ctx, &model.TransferGuildOwnershipRequest{
		GuildID: guild.ID,
		UserID:  testutil.User1.ID,
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Permission denied"), err)
}

func Test_guildDomain_TransferOwnership_NotOwner(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	manager, err := d.role.Create(ctx, &model.CreateRoleRequest{
		GuildID:     guild.ID,
		Name:        "manager",
		Permissions: uint64(entity.MANAGE_GUILD),
	})
	require.NoError(t, err)

	_, err = d.role.Assign(ctx, &model.AssignRoleRequest{
		GuildID: guild.ID,
		RoleID:  manager.Role.ID,
		UserID:  testutil.User2.ID,
	})
	require.NoError(t, err)
	d.notifier.Reset()

	user2 := asUser(ctx, testutil.User2.ID)
	require.True(t, common.CheckGuildPermission(loadTestGuild(t, ctx, d, guild.ID), testutil.User2.ID, entity.MANAGE_GUILD))

	_, err = d.guild.TransferOwnership(user2, &model.TransferGuildOwnershipRequest{
		GuildID: guild.ID,
		UserID:  testutil.User2.ID,
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the owner can do this"), err)
	require.Equal(t, testutil.User1.ID, requireSingleOwner(t, loadTestGuild(t, ctx, d, guild.ID)))
	require.Empty(t, d.notifier.Events(testutil.User1.ID))
	require.Empty(t, d.notifier.Events(testutil.User2.ID))
}

func Test_guildDomain_UploadIcon(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	var uploaded *storage.UploadObject
	d.storage.UploadFunc = func(ctx context.Context, obj *storage.UploadObject) (*storage.UploadResponse, error) {
		uploaded = obj
		return &storage.UploadResponse{Url: "https://cdn/" + obj.Prefix + "/" + obj.FileName}, nil
	}

	newRequest := func(t *testing.T) context.Context {
		img := image.NewRGBA(image.Rect(0, 0, 256, 256))
		imgBuf := new(bytes.Buffer)
		require.NoError(t, png.Encode(imgBuf, img))

		body := new(bytes.Buffer)
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("image", "icon.png")
		require.NoError(t, err)
		_, err = part.Write(imgBuf.Bytes())
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest("POST", "/uploadGuildIcon", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return xcontext.WithHTTPRequest(ctx, req)
	}

	_, err := d.guild.UploadIcon(asUser(newRequest(t), testutil.User2.ID),
		&model.UploadGuildIconRequest{GuildID: guild.ID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Permission denied"), err)
	require.Nil(t, uploaded)

	_, err = d.guild.UploadIcon(ctx, &model.UploadGuildIconRequest{GuildID: guild.ID})
	require.Equal(t, errorx.New(errorx.BadRequest, "Request must be multipart form"), err)

	resp, err := d.guild.UploadIcon(newRequest(t), &model.UploadGuildIconRequest{GuildID: guild.ID})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/guilds/"+guild.ID+"/64x64-icon.png", resp.Icon)
	require.Equal(t, "icons", uploaded.Bucket)

	decoded, err := png.Decode(bytes.NewReader(uploaded.Data))
	require.NoError(t, err)
	require.Equal(t, 64, decoded.Bounds().Dx())

	stored := loadTestGuild(t, ctx, d, guild.ID)
	require.Equal(t, resp.Icon, stored.Icon.String)
	require.Equal(t, []event.Kind{event.GuildEditedKind}, d.notifier.Kinds(testutil.User2.ID))
}

func Test_guildDomain_GetChannels(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	resp, err := d.guild.GetChannels(asUser(ctx, testutil.User2.ID), &model.GetChannelsRequest{GuildID: guild.ID})
	require.NoError(t, err)
	require.Len(t, resp.Channels, 1)
	require.Equal(t, "general", resp.Channels[0].Name)

	_, err = d.guild.GetChannels(asUser(ctx, testutil.User3.ID), &model.GetChannelsRequest{GuildID: guild.ID})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found guild"), err)
}
