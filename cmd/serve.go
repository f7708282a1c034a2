package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecostats/ecostats/internal/bls/period"
	"github.com/ecostats/ecostats/internal/bls/program"
	"github.com/ecostats/ecostats/internal/bls/series"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP API for series ID tooling",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API routes.
func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/programs", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, program.List())
	})

	r.Get("/programs/{code}", func(w http.ResponseWriter, req *http.Request) {
		p, err := program.Get(chi.URLParam(req, "code"))
		if err != nil {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respond(w, http.StatusOK, p)
	})

	r.Get("/series/{id}", func(w http.ResponseWriter, req *http.Request) {
		fields, err := series.Parse(chi.URLParam(req, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		respond(w, http.StatusOK, fields)
	})

	r.Post("/series/build", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Program    string            `json:"program"`
			Components map[string]string `json:"components"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		id, err := series.Build(body.Program, body.Components)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		respond(w, http.StatusOK, map[string]string{"series_id": id})
	})

	r.Get("/resolve", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("year must be an integer"))
			return
		}
		day := 1
		if d := q.Get("day"); d != "" {
			if day, err = strconv.Atoi(d); err != nil {
				respondError(w, http.StatusBadRequest, errors.New("day must be an integer"))
				return
			}
		}

		d, ok := period.Resolve(year, q.Get("period"), day)
		if !ok {
			respond(w, http.StatusOK, map[string]any{"date": nil})
			return
		}
		respond(w, http.StatusOK, map[string]any{"date": d.Format("2006-01-02")})
	})

	return r
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respond(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
