package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquilax/debateboard/database"
	"github.com/aquilax/debateboard/database/cached"
	"github.com/aquilax/debateboard/database/memory"
	"github.com/aquilax/debateboard/database/postgres"
	"github.com/aquilax/debateboard/database/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

type DebateBoard struct {
	config     *Config
	m          *Model
	tp         *TransPool
	sg         *SpamGuard
	auth       *Auth
	log        *slog.Logger
	metrics    *Metrics
	registry   *prometheus.Registry
	summarizer *Summarizer
	validate   *validator.Validate
}

type appHandler func(http.ResponseWriter, *http.Request) error

func NewDebateBoard() *DebateBoard {
	return &DebateBoard{}
}

func openDatabase(c *Config) (database.Database, error) {
	var db database.Database
	switch c.Database {
	case "postgres":
		db = postgres.New()
	case "memory":
		db = memory.New()
	default:
		db = sqlite.New()
	}
	if err := db.Open(c.Database, c.Dsn); err != nil {
		return nil, fmt.Errorf("opening %s database: %w", c.Database, err)
	}
	if c.Cache {
		db = cached.New(db)
	}
	return db, nil
}

func (d *DebateBoard) Run(args []string) error {
	d.config = NewConfig()
	if err := d.config.Load(args); err != nil {
		return err
	}

	logger := newLogger(os.Stderr, d.config.LogLevel, os.Getenv("GO_ENV") != "")
	slog.SetDefault(logger)

	db, err := openDatabase(d.config)
	if err != nil {
		return err
	}
	defer db.Close()

	d.setup(d.config, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if d.config.Seed {
		if err := d.m.seedTopics(ctx); err != nil {
			return fmt.Errorf("seeding topics: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              d.config.Server,
		Handler:           d.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		d.log.Info("starting server", "addr", d.config.Server, "database", d.config.Database)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	d.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setup wires every component around an opened database.
func (d *DebateBoard) setup(c *Config, db database.Database, logger *slog.Logger) {
	d.config = c
	d.log = logger
	d.m = NewModel(db, c.TreeWorkers)
	d.tp = NewTransPool(c.Language)
	d.sg = NewSpamGuard(c.PostInterval)
	d.auth = NewAuth(c.TokenSecret, c.TokenMaxAge)
	d.registry = prometheus.NewRegistry()
	d.metrics = NewMetrics(d.registry)
	d.summarizer = NewSummarizer(c.OpenAI)
	d.validate = validator.New()
}

func (d *DebateBoard) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(d.instrument, d.auth.Middleware)

	r.HandleFunc("/debate/tree/{topicID}", d.serve(d.treeHandler)).Methods("GET")
	r.HandleFunc("/debate/tree/{topicID}/summary", d.serve(d.summaryHandler)).Methods("POST")
	r.HandleFunc("/debate/argument", d.serve(d.addArgumentHandler)).Methods("POST")
	r.HandleFunc("/debate/argument/{argumentID}", d.serve(d.deleteArgumentHandler)).Methods("DELETE")
	r.HandleFunc("/debate/argument/{argumentID}/vote", d.serve(d.voteHandler)).Methods("POST")
	r.HandleFunc("/debate/argument/{argumentID}/vote", d.serve(d.getVoteHandler)).Methods("GET")

	r.HandleFunc("/auth/register", d.serve(d.registerHandler)).Methods("POST")
	r.HandleFunc("/auth/login", d.serve(d.loginHandler)).Methods("POST")
	r.HandleFunc("/auth/me", d.serve(d.meHandler)).Methods("GET")

	r.HandleFunc("/topics", d.serve(d.topicsHandler)).Methods("GET")
	r.HandleFunc("/topics", d.serve(d.addTopicHandler)).Methods("POST")
	r.HandleFunc("/topics/{topicID}", d.serve(d.topicHandler)).Methods("GET")
	r.HandleFunc("/admin/topics", d.serve(d.moderationQueueHandler)).Methods("GET")
	r.HandleFunc("/admin/topics/{topicID}/status", d.serve(d.topicStatusHandler)).Methods("PATCH")

	r.HandleFunc("/users/{userID}/points", d.serve(d.pointsHandler)).Methods("GET")

	r.HandleFunc("/feed.xml", d.serve(d.feedHandler)).Methods("GET")
	r.HandleFunc("/sitemap.xml", d.serve(d.sitemapHandler)).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("GET")

	return r
}

func (d *DebateBoard) session(r *http.Request) *Session {
	return NewSession(d.tp.ForAcceptLanguage(r.Header.Get("Accept-Language")), identityFrom(r.Context()))
}

func (d *DebateBoard) serve(fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			d.writeError(w, r, err)
		}
	}
}

func (d *DebateBoard) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s := d.session(r)
	var httpError *HTTPError
	switch {
	case errors.As(err, &httpError):
		if httpError.Code >= http.StatusInternalServerError {
			d.log.Error("request failed", "route", routeName(r), "err", err)
		}
		resp := Response{"message": httpError.Message}
		if len(httpError.Fields) > 0 {
			resp["fields"] = httpError.Fields
		}
		s.render(w, httpError.Code, resp)
	case errors.Is(err, database.ErrNotFound):
		s.render(w, http.StatusNotFound, s.Message("Not found."))
	case errors.Is(err, database.ErrConflict):
		s.render(w, http.StatusConflict, s.Message("Conflict."))
	case errors.Is(err, context.Canceled):
		// The client went away; there is nobody to answer.
	default:
		// Default to 500 Internal Server Error
		d.log.Error("request failed", "route", routeName(r), "err", err)
		s.render(w, http.StatusInternalServerError, s.Message("Internal server error."))
	}
}

// decode reads a JSON body into v and validates it.
func (d *DebateBoard) decode(r *http.Request, s *Session, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return badRequest(s.Lang("Invalid request body."), err)
	}
	if err := d.validate.Struct(v); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			names := make([]string, len(fields))
			for i, f := range fields {
				names[i] = f.Field()
			}
			return &HTTPError{
				Err:     err,
				Message: s.Lang("Invalid request body."),
				Code:    http.StatusBadRequest,
				Fields:  names,
			}
		}
		return badRequest(s.Lang("Invalid request body."), err)
	}
	return nil
}

// requireUser returns the caller's identity or a 401.
func requireUser(s *Session) (*Identity, error) {
	if s.id == nil {
		return nil, newHTTPError(http.StatusUnauthorized, s.Lang("Authentication required."), nil)
	}
	return s.id, nil
}
