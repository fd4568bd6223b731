// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	alumnifeature "github.com/dalemusser/peerhub/internal/app/features/alumni"
	auditlogfeature "github.com/dalemusser/peerhub/internal/app/features/auditlog"
	chatfeature "github.com/dalemusser/peerhub/internal/app/features/chat"
	errorsfeature "github.com/dalemusser/peerhub/internal/app/features/errors"
	feedfeature "github.com/dalemusser/peerhub/internal/app/features/feed"
	healthfeature "github.com/dalemusser/peerhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/peerhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/peerhub/internal/app/features/logout"
	matchesfeature "github.com/dalemusser/peerhub/internal/app/features/matches"
	profilefeature "github.com/dalemusser/peerhub/internal/app/features/profile"
	requestsfeature "github.com/dalemusser/peerhub/internal/app/features/requests"
	signupfeature "github.com/dalemusser/peerhub/internal/app/features/signup"
	systemusersfeature "github.com/dalemusser/peerhub/internal/app/features/systemusers"
	alumnistore "github.com/dalemusser/peerhub/internal/app/store/alumni"
	auditstore "github.com/dalemusser/peerhub/internal/app/store/audit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so every service in deps.Runtime is ready.
//
// Single endpoints (signup, login, password reset, logout, create-admin) are
// registered directly; feature areas with several routes are mounted under
// their prefix and guard themselves with auth.RequireSignedIn.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.Runtime
	if rt == nil || rt.Auth == nil {
		return nil, errors.New("build handler: startup did not run")
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the signed-in account into context when
	// the request carries a valid token cookie or bearer header.
	r.Use(rt.Auth.LoadUser)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Signup and email verification
	signupHandler := signupfeature.NewHandler(rt.Provisioner, logger)
	r.Post("/signup", signupHandler.HandleSignup)
	r.Post("/verify-otp", signupHandler.HandleVerify)
	r.Post("/resend-otp", signupHandler.HandleResend)

	// Authentication and password reset
	loginHandler := loginfeature.NewHandler(rt.Provisioner, rt.Auth, rt.Login, logger)
	r.Post("/login", loginHandler.HandleLogin)
	r.Post("/forgot-password", loginHandler.HandleForgotPassword)
	r.Post("/reset-password", loginHandler.HandleResetPassword)

	logoutHandler := logoutfeature.NewHandler(rt.Auth, logger)
	r.Post("/logout", logoutHandler.HandleLogout)

	adminHandler := systemusersfeature.NewHandler(rt.Provisioner, logger)
	r.Post("/create-admin", adminHandler.HandleCreateAdmin)

	// Signed-in areas
	profileHandler := profilefeature.NewHandler(rt.Accounts, rt.Provisioner, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	matchesHandler := matchesfeature.NewHandler(rt.Matcher, logger)
	r.Mount("/matches", matchesfeature.Routes(matchesHandler))

	feedHandler := feedfeature.NewHandler(rt.Accounts, rt.Requests, logger)
	r.Mount("/feed", feedfeature.Routes(feedHandler))

	requestsHandler := requestsfeature.NewHandler(rt.Requests, logger)
	r.Mount("/request", requestsfeature.Routes(requestsHandler))
	r.Mount("/user", requestsfeature.UserRoutes(requestsHandler))

	chatHandler := chatfeature.NewHandler(rt.Chat, rt.Requests, allowedOrigins(appCfg.FrontendURL), logger)
	r.Mount("/ws", chatfeature.Routes(chatHandler))

	// Alumni directory: members browse, admins curate
	alumniHandler := alumnifeature.NewHandler(alumnistore.New(deps.MongoDatabase), logger)
	r.Mount("/alumni", alumnifeature.Routes(alumniHandler))

	// Admin-only audit trail
	auditHandler := auditlogfeature.NewHandler(auditstore.New(deps.MongoDatabase), logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler))

	return r, nil
}
