package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/chat"
	"github.com/aussiebroadwan/stackplate/internal/server/resetkeys"
	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/aussiebroadwan/stackplate/internal/server/store"
	"github.com/aussiebroadwan/stackplate/pkg/httpx"
	"github.com/aussiebroadwan/stackplate/pkg/jwtx"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"

	_ "github.com/aussiebroadwan/stackplate/api/server" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	limits       httpx.RateLimitProfiles
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store     store.Store
	resetKeys resetkeys.Store

	AuthService *service.AuthService
	UserService *service.UserService
	ChatHub     *chat.Hub
}

func NewRouter(
	verifier jwtx.Verifier,
	limits httpx.RateLimitProfiles,
	buildVersion string,
	st store.Store,
	keys resetkeys.Store,
	corsOrigins []string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		resetKeys:    keys,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.CORS(corsOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerReset()
	r.registerUsers()
	r.registerChat()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Stackplate API
//	@version		0.1.0
//	@description	Username/password accounts with a two token session scheme, password reset by email and a broadcast chat room.
//	@description
//	@description				Login and registration return a long-lived session token in the Authorization header.
//	@description				GET /auth/request exchanges it for a short-lived access token used by privileged routes.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/stackplate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:3001
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session or access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	// Login is limited per IP + username to slow down guessing one account
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "username"),
		),
	)

	// Session -> access exchange
	r.Mux.Handle("GET /auth/request",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.AuthnMiddleware(r.verifier, jwtx.KindSession),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)

	r.Mux.Handle("GET /auth/test",
		httpx.Chain(http.HandlerFunc(h.HandleTest),
			httpx.AuthnMiddleware(r.verifier, jwtx.KindAccess),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
}

func (r *Router) registerReset() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /auth/reset",
		httpx.Chain(http.HandlerFunc(h.HandleRequestReset),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("POST /auth/reset/{key}",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /user/info",
		httpx.Chain(http.HandlerFunc(h.HandleInfo),
			httpx.AuthnMiddleware(r.verifier, jwtx.KindSession),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)

	// Admin operations need an access token minted for a privileged account
	r.Mux.Handle("GET /user/all",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier, jwtx.KindAccess),
			httpx.RequirePrivileged(),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
	r.Mux.Handle("DELETE /user",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier, jwtx.KindAccess),
			httpx.RequirePrivileged(),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerChat() {
	if r.ChatHub == nil {
		return
	}
	r.Mux.Handle("GET /ws",
		httpx.Chain(r.ChatHub,
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.resetKeys),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
}
