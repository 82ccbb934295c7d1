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

func (s *srv) startNotificationProxy(*cli.Context) error {
	s.loadRedisClient()
	if s.redisClient == nil {
		return errors.New("notification proxy needs a redis address")
	}
	defer s.redisClient.Close()

	cfg := xcontext.Configs(s.ctx)
	s.loadNotifier()
	subscriber := relay.NewSubscriber(s.redisClient, cfg.Notification.RelayChannel, s.registry)

	defaultRouter := router.New(s.ctx)
	defaultRouter.AddCloser(middleware.Logger(cfg.Env))
	defaultRouter.Before(middleware.NewAuthVerifier(s.tokenEngine).WithAccessToken().Middleware())
	router.Websocket(defaultRouter, "/notification", proxy.NewProxyServer(s.registry).ServeProxy)

	httpSrv := &http.Server{
		Addr:    cfg.Notification.ProxyServer.Address(),
		Handler: defaultRouter.Handler(cfg.Notification.ProxyServer),
	}

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		s.registry.Run(ctx)
		return nil
	})

	g.Go(func() error {
		return subscriber.Run(ctx)
	})

	g.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Server start in port: %s", cfg.Notification.ProxyServer.Port)
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
