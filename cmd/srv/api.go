package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/betalky/backend/internal/domain/notification/proxy"
	"github.com/betalky/backend/internal/domain/notification/relay"
	"github.com/betalky/backend/internal/middleware"
	"github.com/betalky/backend/pkg/router"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadStorage()
	s.loadNotifier()
	s.loadRepos()
	s.loadDomains()

	if stopper, ok := s.publisher.(interface{ Stop(context.Context) error }); ok {
		defer stopper.Stop(s.ctx)
	}

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.loadRouter().Handler(cfg.ApiServer.ServerConfigs),
	}

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		s.registry.Run(ctx)
		return nil
	})

	if s.redisClient != nil {
		defer s.redisClient.Close()
		subscriber := relay.NewSubscriber(s.redisClient, cfg.Notification.RelayChannel, s.registry)
		g.Go(func() error {
			return subscriber.Run(ctx)
		})
	}

	g.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Server start in port: %s", cfg.ApiServer.Port)
		return httpSrv.ListenAndServe()
	})

	g.Go(func() error {
		<-ctx.Done()
		return httpSrv.Shutdown(context.Background())
	})

	err := g.Wait()
	xcontext.Logger(s.ctx).Infof("Server stop")
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (s *srv) loadRouter() *router.Router {
	cfg := xcontext.Configs(s.ctx)
	defaultRouter := router.New(s.ctx)
	defaultRouter.AddCloser(middleware.Logger(cfg.Env))

	// Every api needs an access token.
	authRouter := defaultRouter.Branch()
	authRouter.Before(middleware.NewAuthVerifier(s.tokenEngine).WithAccessToken().Middleware())
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.GET(authRouter, "/getUser", s.userDomain.GetUser)
		router.POST(authRouter, "/updateMe", s.userDomain.UpdateMe)

		// Guild API
		router.GET(authRouter, "/getGuild", s.guildDomain.Get)
		router.GET(authRouter, "/getMyGuilds", s.guildDomain.GetMyGuilds)
		router.GET(authRouter, "/getChannels", s.guildDomain.GetChannels)
		router.POST(authRouter, "/createGuild", s.guildDomain.Create)
		router.POST(authRouter, "/updateGuild", s.guildDomain.Update)
		router.POST(authRouter, "/deleteGuild", s.guildDomain.Delete)
		router.POST(authRouter, "/transferGuildOwnership", s.guildDomain.TransferOwnership)
		router.POST(authRouter, "/uploadGuildIcon", s.guildDomain.UploadIcon)

		// Invite API
		router.GET(authRouter, "/getInvites", s.inviteDomain.GetList)
		router.GET(authRouter, "/resolveInvite", s.inviteDomain.Resolve)
		router.POST(authRouter, "/createInvite", s.inviteDomain.Create)
		router.POST(authRouter, "/joinGuild", s.inviteDomain.Join)
		router.POST(authRouter, "/deleteInvite", s.inviteDomain.Delete)

		// Member API
		router.GET(authRouter, "/getMembers", s.memberDomain.GetList)
		router.GET(authRouter, "/getBans", s.memberDomain.GetBans)
		router.POST(authRouter, "/banMember", s.memberDomain.Ban)
		router.POST(authRouter, "/unbanMember", s.memberDomain.Unban)
		router.POST(authRouter, "/kickMember", s.memberDomain.Kick)
		router.POST(authRouter, "/leaveGuild", s.memberDomain.Leave)
		router.POST(authRouter, "/updateNickname", s.memberDomain.SetNickname)

		// Role API
		router.POST(authRouter, "/createRole", s.roleDomain.Create)
		router.POST(authRouter, "/updateRole", s.roleDomain.Update)
		router.POST(authRouter, "/deleteRole", s.roleDomain.Delete)
		router.POST(authRouter, "/assignRole", s.roleDomain.Assign)
		router.POST(authRouter, "/unassignRole", s.roleDomain.Unassign)

		// Audit log API
		router.GET(authRouter, "/getAuditLogs", s.auditLogDomain.GetList)

		// Notification
		router.Websocket(authRouter, "/notification", proxy.NewProxyServer(s.registry).ServeProxy)
	}

	return defaultRouter
}
