package router

import (
	"context"
	"net/http"

	"github.com/betalky/backend/config"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/ws"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)
type WebsocketHandlerFunc[Request any] func(ctx context.Context, req *Request) error

// MiddlewareFunc runs before the handler. It may enrich the context or abort
// the request by returning an error.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler with the error it returned, if any.
type CloserFunc func(ctx context.Context, err error)

type Router struct {
	ctx     context.Context
	mux     *http.ServeMux
	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	return &Router{ctx: ctx, mux: http.NewServeMux()}
}

// Branch returns a router sharing the same mux. Middlewares added to the
// branch do not affect the parent.
func (r *Router) Branch() *Router {
	return &Router{
		ctx:     r.ctx,
		mux:     r.mux,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

func (r *Router) Handler(cfg config.ServerConfigs) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodPost, pattern, handler)
}

func route[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(req)
		if req.Method != method {
			writeError(ctx, w, errorx.New(errorx.BadRequest, "Method %s is not allowed", req.Method))
			return
		}

		resp, err := func() (*Response, error) {
			var err error
			if ctx, err = r.runBefores(ctx); err != nil {
				return nil, err
			}

			request := new(Request)
			if err := bind(req, method, request); err != nil {
				return nil, errorx.New(errorx.BadRequest, "Invalid request: %v", err)
			}

			return handler(ctx, request)
		}()

		r.runClosers(ctx, err)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeData(ctx, w, resp)
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced by Handler for the plain endpoints; websocket clients
	// authenticate with a token instead of cookies.
	CheckOrigin: func(*http.Request) bool { return true },
}

func Websocket[Request any](r *Router, pattern string, handler WebsocketHandlerFunc[Request]) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(req)

		ctx, err := r.runBefores(ctx)
		if err != nil {
			r.runClosers(ctx, err)
			writeError(ctx, w, err)
			return
		}

		request := new(Request)
		if err := bind(req, http.MethodGet, request); err != nil {
			err = errorx.New(errorx.BadRequest, "Invalid request: %v", err)
			r.runClosers(ctx, err)
			writeError(ctx, w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot upgrade websocket: %v", err)
			return
		}

		client := ws.NewClient(conn, req.URL.Query().Get("compress") == "true")
		defer client.Close()

		err = handler(xcontext.WithWSClient(ctx, client), request)
		r.runClosers(ctx, err)
	})
}

func (r *Router) newContext(req *http.Request) context.Context {
	ctx := req.Context()
	ctx = xcontext.WithConfigs(ctx, xcontext.Configs(r.ctx))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(r.ctx))
	if db := xcontext.DB(r.ctx); db != nil {
		ctx = xcontext.WithDB(ctx, db)
	}

	if node := xcontext.SnowFlake(r.ctx); node != nil {
		ctx = xcontext.WithSnowFlake(ctx, node)
	}

	return xcontext.WithHTTPRequest(ctx, req)
}

func (r *Router) runBefores(ctx context.Context) (context.Context, error) {
	for _, before := range r.befores {
		var err error
		if ctx, err = before(ctx); err != nil {
			return ctx, err
		}
	}

	return ctx, nil
}

func (r *Router) runClosers(ctx context.Context, err error) {
	for _, closer := range r.closers {
		closer(ctx, err)
	}
}
