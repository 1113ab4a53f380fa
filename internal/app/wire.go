package app

import (
	"log/slog"

	"github.com/compclass/platform/internal/auth"
	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/engine"
	"github.com/compclass/platform/internal/handler"
	"github.com/compclass/platform/internal/pin"
	"github.com/compclass/platform/internal/repository"
	"github.com/compclass/platform/internal/service"
	"github.com/compclass/platform/internal/stream"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	JWTMgr             *auth.JWTManager
	Logger             *slog.Logger
	PinMask            int64
	CORSAllowedOrigins string
	Publisher          engine.Publisher
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	db := repository.NewPgxDB(deps.Pool)

	// Repositories
	sessionRepo := repository.NewSessionRepository()
	teamRepo := repository.NewTeamRepository()
	userRepo := repository.NewUserRepository()

	// Core engine
	hub := stream.NewHub()
	resolver := engine.NewPlayerResolver(sessionRepo, teamRepo)
	eng := engine.New(db, resolver, hub, logger,
		engine.NewCreateTeamRule(sessionRepo, teamRepo),
		engine.NewJoinTeamRule(sessionRepo, teamRepo, userRepo),
		engine.NewLeaveTeamRule(sessionRepo, teamRepo, userRepo),
		engine.NewSubmitStrategyRule(sessionRepo, teamRepo),
		engine.NewChangeStageRule(sessionRepo),
	)
	if deps.Publisher != nil {
		eng = eng.WithPublisher(deps.Publisher)
	}

	// Services
	pins := pin.NewCodec(deps.PinMask)
	authSvc := service.NewAuthService(db, userRepo, deps.JWTMgr)
	competitionSvc := service.NewCompetitionService(db, sessionRepo, pins, logger)
	processSvc := service.NewProcessService(db, eng, hub, pins, sessionRepo, teamRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	competitionHandler := handler.NewCompetitionHandler(competitionSvc, processSvc, authSvc)
	eventsHandler := handler.NewEventsHandler(processSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Pool))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Use(handler.JSONContentType)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Authenticated routes
	r.Route("/competitions", func(r chi.Router) {
		r.Use(auth.Authenticate(deps.JWTMgr))

		// SSE endpoints set their own content type.
		r.Get("/{pin}/events", eventsHandler.Raw)
		r.Get("/{pin}/rounds", eventsHandler.Rounds)

		r.Group(func(r chi.Router) {
			r.Use(handler.JSONContentType)
			r.With(auth.RequireRole(domain.RoleTeacher)).Post("/", competitionHandler.Create)
			r.Post("/check_pin", competitionHandler.CheckPin)
			r.Post("/{pin}/commands", competitionHandler.SubmitCommand)
			r.Get("/{pin}/student_info", competitionHandler.StudentInfo)
		})
	})

	return r
}
