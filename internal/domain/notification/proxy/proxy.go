package proxy

import (
	"context"
	"encoding/json"

	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
)

type ProxyServer struct {
	registry *Registry
}

func NewProxyServer(registry *Registry) *ProxyServer {
	return &ProxyServer{registry: registry}
}

// ServeProxy streams the events of the requesting user to its websocket
// connection. It returns when the client disconnects or the session is
// dropped.
func (s *ProxyServer) ServeProxy(ctx context.Context, req *model.ServeNotificationProxyRequest) error {
	userID := xcontext.RequestUserID(ctx)
	session := s.registry.Subscribe(userID)
	defer session.Close()

	xcontext.Logger(ctx).Debugf("User %s opened session %s", userID, session.ID())
	defer xcontext.Logger(ctx).Debugf("User %s closed session %s", userID, session.ID())

	wsClient := xcontext.WSClient(ctx)
	for {
		select {
		case ev, ok := <-session.C():
			if !ok {
				return errorx.New(errorx.SessionClosed, "Session is closed")
			}

			b, err := json.Marshal(ev)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot marshal event: %v", err)
				continue
			}

			if err := wsClient.Write(b); err != nil {
				return nil
			}

		case _, ok := <-wsClient.R:
			// Clients only send keep-alive frames.
			if !ok {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}
