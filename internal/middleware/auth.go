package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/pkg/authenticator"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/router"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/golang-jwt/jwt/v4"
)

type verifyFunc func(ctx context.Context) (string, error)

// AuthVerifier resolves the requesting user from one of the enabled
// credentials. The first credential which identifies a user wins.
type AuthVerifier struct {
	engine    *authenticator.TokenEngine
	verifiers []verifyFunc
}

func NewAuthVerifier(engine *authenticator.TokenEngine) *AuthVerifier {
	return &AuthVerifier{engine: engine}
}

// WithAccessToken accepts an access token from the Authorization header, the
// token query parameter or the access token cookie.
func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.verifiers = append(a.verifiers, a.verifyAccessToken)
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		for _, verify := range a.verifiers {
			userID, err := verify(ctx)
			if err != nil {
				return ctx, err
			}

			if userID != "" {
				return xcontext.WithRequestUserID(ctx, userID), nil
			}
		}

		return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}
}

func (a *AuthVerifier) verifyAccessToken(ctx context.Context) (string, error) {
	token := accessTokenOf(ctx)
	if token == "" {
		return "", nil
	}

	var info model.AccessToken
	if err := a.engine.Verify(token, &info); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errorx.New(errorx.TokenExpired, "Token is expired")
		}

		xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
		return "", errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	if info.ID == "" {
		return "", errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	return info.ID, nil
}

func accessTokenOf(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	if token, ok := cutPrefixFold(authorization, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	if token := req.URL.Query().Get("token"); token != "" {
		return token
	}

	name := xcontext.Configs(ctx).Auth.AccessToken.Name
	if name == "" {
		return ""
	}

	cookie, err := req.Cookie(name)
	if err != nil {
		return ""
	}

	return cookie.Value
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}

	return s[len(prefix):], true
}
