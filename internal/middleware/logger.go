package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/router"
	"github.com/betalky/backend/pkg/xcontext"
)

// Logger writes one line per request. Client errors are logged as warnings,
// unexpected ones as errors. The test environment only logs failures.
func Logger(env string) router.CloserFunc {
	return func(ctx context.Context, err error) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)
		if userID := xcontext.RequestUserID(ctx); userID != "" {
			info = fmt.Sprintf("%s | %s", info, userID)
		}

		if err == nil {
			if env != "test" {
				xcontext.Logger(ctx).Infof("%s | %s", info, time.Now().Format(time.RFC3339))
			}
			return
		}

		var errx errorx.Error
		if errors.As(err, &errx) && errx.Code != errorx.Unknown.Code {
			xcontext.Logger(ctx).Warnf("%s | %d | %s", info, errx.Code, errx.Message)
		} else {
			xcontext.Logger(ctx).Errorf("%s | %v", info, err)
		}
	}
}
