package lifeosserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/slok/go-http-metrics/metrics/prometheus"
	metricsMiddleware "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
	"golang.org/x/oauth2"

	v1 "github.com/lifeos/lifeos/pkg/apis/config/v1"
	"github.com/lifeos/lifeos/pkg/apis/queue"
	"github.com/lifeos/lifeos/pkg/db"
	"github.com/lifeos/lifeos/pkg/study"
	"github.com/lifeos/lifeos/pkg/summary"
	"github.com/lifeos/lifeos/pkg/vector"
)

// Server hosts the LifeOS JSON API.
type Server struct {
	db         *db.DB
	listenAddr string
	config     *v1.LifeOSConfig

	queue     queue.Queue
	assistant *study.Assistant
	embedder  study.Embedder
	index     vector.Index
	generator *summary.Generator

	auth        *TokenManager
	googleOAuth *oauth2.Config

	// fetchGoogleUser is swapped out in tests.
	fetchGoogleUser func(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*googleUser, error)

	httpServer *http.Server
}

type Options struct {
	DB         *db.DB
	ListenAddr string
	Config     *v1.LifeOSConfig

	Queue     queue.Queue
	Assistant *study.Assistant
	Embedder  study.Embedder
	Index     vector.Index
	Generator *summary.Generator

	Auth        *TokenManager
	GoogleOAuth *oauth2.Config
}

func NewServer(opts Options) *Server {
	return &Server{
		db:              opts.DB,
		listenAddr:      opts.ListenAddr,
		config:          opts.Config,
		queue:           opts.Queue,
		assistant:       opts.Assistant,
		embedder:        opts.Embedder,
		index:           opts.Index,
		generator:       opts.Generator,
		auth:            opts.Auth,
		googleOAuth:     opts.GoogleOAuth,
		fetchGoogleUser: googleUserInfo,
	}
}

func (s *Server) Serve() {
	router := mux.NewRouter()

	router.HandleFunc("/api/health", s.jsonHealth).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/register", s.jsonRegister).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", s.jsonLogin).Methods(http.MethodPost)
	if s.googleOAuth != nil {
		router.HandleFunc("/api/auth/google", s.googleLogin).Methods(http.MethodGet)
		router.HandleFunc("/api/auth/google/callback", s.googleCallback).Methods(http.MethodGet)
	}

	authed := router.NewRoute().Subrouter()
	authed.Use(s.requireSession)

	authed.HandleFunc("/api/auth/me", s.jsonCurrentUser).Methods(http.MethodGet)

	authed.HandleFunc("/api/messages/create", s.jsonCreateMessage).Methods(http.MethodPost)
	authed.HandleFunc("/api/messages/get", s.jsonMessagesByCategory).Methods(http.MethodGet)
	authed.HandleFunc("/api/messages/timeline", s.jsonTimeline).Methods(http.MethodGet)
	authed.HandleFunc("/api/messages/stats", s.jsonMessageStats).Methods(http.MethodGet)
	authed.HandleFunc("/api/messages/{id}", s.jsonGetMessage).Methods(http.MethodGet)
	authed.HandleFunc("/api/messages/{id}", s.jsonUpdateMessage).Methods(http.MethodPut)
	authed.HandleFunc("/api/messages/{id}", s.jsonToggleMessage).Methods(http.MethodPatch)
	authed.HandleFunc("/api/messages/{id}", s.jsonDeleteMessage).Methods(http.MethodDelete)

	authed.HandleFunc("/api/idea/{messageId}", s.jsonGetIdea).Methods(http.MethodGet)
	authed.HandleFunc("/api/idea/{messageId}", s.jsonUpsertIdea).Methods(http.MethodPut)
	authed.HandleFunc("/api/task/{messageId}", s.jsonGetTask).Methods(http.MethodGet)
	authed.HandleFunc("/api/task/{messageId}", s.jsonUpsertTask).Methods(http.MethodPut)

	authed.HandleFunc("/api/study/ask", s.jsonStudyAsk).Methods(http.MethodPost)
	authed.HandleFunc("/api/study/embed", s.jsonStudyEmbed).Methods(http.MethodPost)

	authed.HandleFunc("/api/summary", s.jsonWeeklySummary).Methods(http.MethodGet)

	authed.HandleFunc("/api/profile", s.jsonGetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/api/profile", s.patchProfile).Methods(http.MethodPatch)

	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.config.Uploads.Dir)))
	router.PathPrefix("/uploads/").Handler(uploads).Methods(http.MethodGet)

	mdw := metricsMiddleware.New(metricsMiddleware.Config{
		Recorder: prometheus.NewRecorder(prometheus.Config{}),
	})
	handler := std.Handler("", mdw, router)

	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Serving API reports on %s", s.listenAddr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Error("server exited")
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
