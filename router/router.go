// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/apiclient"
	"github.com/danielhkuo/odr-frontend/auth"
	"github.com/danielhkuo/odr-frontend/cliparse"
	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/handlers"
	"github.com/danielhkuo/odr-frontend/metrics"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/storage"
	"github.com/danielhkuo/odr-frontend/upload"
)

// Deps are the shared services every handler is built from
type Deps struct {
	DB        *gorm.DB
	Config    cliparse.Config
	Sessions  *auth.SessionManager
	API       *apiclient.Client
	Store     storage.Store
	Features  *features.Service
	Metrics   *metrics.Metrics
	Providers []string
}

// NewRouter registers every route and wraps the mux in the request
// pipeline: CORS, request id, metrics, session lookup, then the gate.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	log := middleware.WithLogging

	home := handlers.NewHomeHandler(d.Features, d.Store, d.Config.MaxUploadSize)
	authH := handlers.NewAuthHandler(d.DB, d.Config, d.Sessions, d.API, d.Providers)
	dco := handlers.NewDCOHandler(d.DB)
	admin := handlers.NewAdminHandler(d.DB, d.Features)
	moderation := handlers.NewModerationHandler(d.DB, d.Store)
	uploads := handlers.NewUploadHandler(upload.NewPipeline(d.DB, d.API, d.Store, d.Metrics), d.Features, d.Config.MaxUploadSize)

	users := handlers.NewUserHandler(d.DB)
	teams := handlers.NewTeamHandler(d.DB)
	userTeams := handlers.NewUserTeamHandler(d.DB)
	contents := handlers.NewContentHandler(d.DB)
	annotations := handlers.NewAnnotationHandler(d.DB)
	sources := handlers.NewAnnotationSourceHandler(d.DB)
	embeddings := handlers.NewEmbeddingHandler(d.DB)
	toggles := handlers.NewFeatureToggleHandler(d.DB, d.Features)

	// Public
	mux.HandleFunc("GET /health", home.Health)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	// Pages and their actions
	mux.HandleFunc("GET /{$}", log(home.Home))
	mux.HandleFunc("POST /{$}", log(home.Upload))
	mux.HandleFunc("GET /upload/images", log(home.UploadPage))
	mux.HandleFunc("GET /upload/annotations", log(home.UploadPage))
	mux.HandleFunc("POST /upload/images", log(uploads.Images))
	mux.HandleFunc("POST /upload/annotations", log(uploads.Annotations))
	mux.HandleFunc("GET /uploads/pending/{file}", log(moderation.Preview))

	// Authentication
	mux.HandleFunc("GET /auth", log(authH.Providers))
	mux.HandleFunc("GET /auth/{provider}", log(authH.Begin))
	mux.HandleFunc("GET /auth/{provider}/callback", log(authH.Callback))
	mux.HandleFunc("POST /auth/login", log(authH.Login))
	mux.HandleFunc("POST /auth/register", log(authH.Register))
	mux.HandleFunc("POST /signout", log(authH.Signout))
	mux.HandleFunc("GET /inactive", log(authH.Inactive))

	// DCO
	mux.HandleFunc("GET /dco", log(dco.Page))
	mux.HandleFunc("POST /dco", log(dco.Accept))
	mux.HandleFunc("PUT /dco/api", log(dco.Set))

	// Administration (superuser only, enforced by the gate)
	mux.HandleFunc("GET /admin/users", log(admin.Users))
	mux.HandleFunc("GET /admin/users/{id}", log(admin.UserDetail))
	mux.HandleFunc("PUT /admin/users/api/toggleActive", log(admin.ToggleActive))
	mux.HandleFunc("PUT /admin/users/api/toggleSuperUser", log(admin.ToggleSuperUser))
	mux.HandleFunc("GET /admin/teams", log(admin.Teams))
	mux.HandleFunc("POST /admin/teams/api", log(admin.CreateTeam))
	mux.HandleFunc("DELETE /admin/teams/api", log(admin.DeleteTeam))
	mux.HandleFunc("POST /admin/teams/api/addUser", log(admin.AddUser))
	mux.HandleFunc("POST /admin/teams/api/removeUser", log(admin.RemoveUser))
	mux.HandleFunc("GET /admin/feature-toggles", log(admin.FeatureToggles))
	mux.HandleFunc("GET /admin/feature-toggles/api", log(admin.FeatureToggleList))
	mux.HandleFunc("PUT /admin/feature-toggles/api/toggleFeature", log(admin.ToggleFeature))
	mux.HandleFunc("GET /admin/moderation", log(moderation.List))
	mux.HandleFunc("POST /admin/moderation/accept", log(moderation.Accept))
	mux.HandleFunc("POST /admin/moderation/reject", log(moderation.Reject))

	// REST API
	mux.HandleFunc("GET /api/users", log(users.List))
	mux.HandleFunc("POST /api/users", log(users.Create))
	mux.HandleFunc("GET /api/users/{id}", log(users.Get))
	mux.HandleFunc("PUT /api/users/{id}", log(users.Update))
	mux.HandleFunc("DELETE /api/users/{id}", log(users.Delete))

	mux.HandleFunc("GET /api/teams", log(teams.List))
	mux.HandleFunc("POST /api/teams", log(teams.Create))
	mux.HandleFunc("GET /api/teams/{id}", log(teams.Get))
	mux.HandleFunc("PUT /api/teams/{id}", log(teams.Update))
	mux.HandleFunc("DELETE /api/teams/{id}", log(teams.Delete))
	mux.HandleFunc("GET /api/teams/{id}/members", log(teams.Members))

	mux.HandleFunc("GET /api/user-teams", log(userTeams.List))
	mux.HandleFunc("POST /api/user-teams", log(userTeams.Create))
	mux.HandleFunc("DELETE /api/user-teams", log(userTeams.Delete))

	mux.HandleFunc("GET /api/contents", log(contents.List))
	mux.HandleFunc("POST /api/contents", log(contents.Create))
	mux.HandleFunc("GET /api/contents/{id}", log(contents.Get))
	mux.HandleFunc("PUT /api/contents/{id}", log(contents.Update))
	mux.HandleFunc("DELETE /api/contents/{id}", log(contents.Delete))

	mux.HandleFunc("GET /api/annotations", log(annotations.List))
	mux.HandleFunc("POST /api/annotations", log(annotations.Create))
	mux.HandleFunc("GET /api/annotations/{id}", log(annotations.Get))
	mux.HandleFunc("PUT /api/annotations/{id}", log(annotations.Update))
	mux.HandleFunc("DELETE /api/annotations/{id}", log(annotations.Delete))

	mux.HandleFunc("GET /api/annotation-sources", log(sources.List))
	mux.HandleFunc("POST /api/annotation-sources", log(sources.Create))
	mux.HandleFunc("GET /api/annotation-sources/{id}", log(sources.Get))

	mux.HandleFunc("GET /api/embeddings", log(embeddings.List))
	mux.HandleFunc("POST /api/embeddings", log(embeddings.Create))
	mux.HandleFunc("GET /api/embeddings/engines", log(embeddings.ListEngines))
	mux.HandleFunc("POST /api/embeddings/engines", log(embeddings.CreateEngine))

	mux.HandleFunc("GET /api/feature-toggles", log(toggles.List))
	mux.HandleFunc("POST /api/feature-toggles", log(toggles.Create))
	mux.HandleFunc("PUT /api/feature-toggles/{name}", log(toggles.Update))

	return middleware.Chain(mux,
		middleware.CORS(d.Config.CORSOrigins),
		middleware.RequestID,
		middleware.WithMetrics(d.Metrics),
		middleware.Authenticate(d.Sessions),
		middleware.Authorize,
	)
}
