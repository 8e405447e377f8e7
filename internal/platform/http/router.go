package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/pkg/httpx"
	"github.com/aussiebroadwan/lectern/pkg/slogx"

	_ "github.com/aussiebroadwan/lectern/api/lectern" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// TokenVerifier is the part of jwtx.Manager the router needs.
type TokenVerifier interface {
	httpx.AccessVerifier
	Validator
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens         TokenVerifier
	box            Validator
	db             Pinger
	limits         httpx.RateLimitProfiles
	storageEnabled bool
	buildVersion   string
	startTime      time.Time
	logger         *slog.Logger

	AuthService        *service.AuthService
	MFAService         *service.MFAService
	IntegrationService *service.IntegrationService
	DocumentService    *service.DocumentService
}

func NewRouter(
	tokens TokenVerifier,
	box Validator,
	db Pinger,
	limits httpx.RateLimitProfiles,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		box:          box,
		db:           db,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RecoverMiddleware(),
	}

	return r
}

// EnableStorage marks document storage as configured for readiness reports.
// Call it before ApplyRoutes.
func (r *Router) EnableStorage() { r.storageEnabled = true }

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMe()
	r.registerMFA()
	r.registerIntegrations()
	r.registerDocuments()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Lectern Platform API
//	@version		0.1.0
//	@description	Accounts, sessions, second factors, linked provider accounts and course documents
//	@description	for the Lectern teaching platform.
//	@description
//	@description				Access and refresh tokens are HS256 JWTs. Access tokens live 15 minutes, refresh tokens 7 days.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/lectern
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h with access token verification and a per-user limit.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig, extra ...httpx.Middleware) http.Handler {
	mws := append([]httpx.Middleware{
		httpx.AuthnMiddleware(r.tokens),
		httpx.RateLimitByUser(limit),
	}, extra...)
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Public signup - strict by IP
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	// Login - strict by IP + email to slow credential stuffing against one account
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerMe() {
	h := &MeHandler{AuthService: r.AuthService}

	r.Mux.Handle("GET /v1/me", r.authed(h.HandleGet, r.limits.Lenient))
	r.Mux.Handle("PUT /v1/me/password", r.authed(h.HandleChangePassword, r.limits.Strict))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{AuthService: r.AuthService, MFAService: r.MFAService}

	r.Mux.Handle("POST /v1/mfa/totp/enroll", r.authed(h.HandleEnroll, r.limits.Moderate))
	// Code checks are strict to keep 6-digit guessing impractical
	r.Mux.Handle("POST /v1/mfa/totp/confirm", r.authed(h.HandleConfirm, r.limits.Strict))
	r.Mux.Handle("DELETE /v1/mfa/totp", r.authed(h.HandleDisable, r.limits.Strict))
}

func (r *Router) registerIntegrations() {
	h := &IntegrationsHandler{IntegrationService: r.IntegrationService}

	r.Mux.Handle("GET /v1/integrations", r.authed(h.HandleList, r.limits.Lenient))
	r.Mux.Handle("PUT /v1/integrations/{provider}", r.authed(h.HandleLink, r.limits.Moderate))
	r.Mux.Handle("GET /v1/integrations/{provider}/token", r.authed(h.HandleToken, r.limits.Moderate))
	r.Mux.Handle("DELETE /v1/integrations/{provider}", r.authed(h.HandleUnlink, r.limits.Moderate))
}

func (r *Router) registerDocuments() {
	h := &DocumentsHandler{DocumentService: r.DocumentService}

	r.Mux.Handle("GET /v1/documents", r.authed(h.HandleList, r.limits.Lenient))
	r.Mux.Handle("POST /v1/documents", r.authed(h.HandleCreate, r.limits.Moderate,
		httpx.RequireRole(domain.RoleTeacher.String(), domain.RoleAdmin.String()),
	))
	r.Mux.Handle("GET /v1/documents/{id}/download", r.authed(h.HandleDownload, r.limits.Lenient))
}

func (r *Router) registerSystem() {
	// Monitoring may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db, r.tokens, r.box, r.storageEnabled),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
}
