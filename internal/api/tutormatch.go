package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/studyhall/tutormatch/internal/config"
	"github.com/studyhall/tutormatch/internal/database"
	"github.com/studyhall/tutormatch/internal/match"
	"github.com/studyhall/tutormatch/internal/queue"
)

type TutorMatchApp struct {
	log            *log.Logger
	db             database.TutorMatchRepository
	mux            *http.Server
	mc             *match.Coordinator
	tracker        *queue.Tracker
	signingKey     []byte
	allowedOrigins []string
}

func NewTutorMatchApp(mux *http.ServeMux, logger *log.Logger, mc *match.Coordinator, db database.TutorMatchRepository, tracker *queue.Tracker, cfg *config.Config) *TutorMatchApp {
	s := &TutorMatchApp{
		log:            logger,
		db:             db,
		mc:             mc,
		tracker:        tracker,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("GET /api/account", s.authMiddleware(s.account))
	mux.Handle("POST /api/tutors", s.authMiddleware(s.becomeTutor))
	mux.Handle("GET /api/tutors", s.authMiddleware(s.getTutor))
	mux.Handle("GET /api/queue/history", s.authMiddleware(s.queueHistory))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *TutorMatchApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *TutorMatchApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
