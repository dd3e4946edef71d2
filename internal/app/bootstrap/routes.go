// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	batchesfeature "github.com/dalemusser/missionhub/internal/app/features/batches"
	groupsfeature "github.com/dalemusser/missionhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/missionhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/missionhub/internal/app/features/login"
	mentorsfeature "github.com/dalemusser/missionhub/internal/app/features/mentors"
	missionsfeature "github.com/dalemusser/missionhub/internal/app/features/missions"
	usersfeature "github.com/dalemusser/missionhub/internal/app/features/users"
	"github.com/dalemusser/missionhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// MissionHub initializes the session store, applies session middleware,
// and mounts the JSON feature routers: health, login, missions (with
// enrollment and reconciliation), groups, mentors, users, and batches.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MissionHubMongoDatabase

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MissionHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, logger)
	r.Mount("/", loginfeature.Routes(loginHandler))

	// Missions: CRUD, enrollment, reconciliation
	missionsHandler := missionsfeature.NewHandler(db, logger)
	r.Mount("/missions", missionsfeature.Routes(missionsHandler))

	// Mentor assignments, keyed by mission
	mentorsHandler := mentorsfeature.NewHandler(db, logger)
	r.Mount("/mentors", mentorsfeature.Routes(mentorsHandler))

	// Mentorship groups
	groupsHandler := groupsfeature.NewHandler(db, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler))

	// Users
	usersHandler := usersfeature.NewHandler(db, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Batch memberships
	batchesHandler := batchesfeature.NewHandler(db, logger)
	r.Mount("/batches", batchesfeature.Routes(batchesHandler))

	return r, nil
}
