package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/seatforge/seatforge/backend-go/internal/auth"
	"github.com/seatforge/seatforge/backend-go/internal/chart"
	"github.com/seatforge/seatforge/backend-go/internal/collab"
	"github.com/seatforge/seatforge/backend-go/internal/config"
	"github.com/seatforge/seatforge/backend-go/internal/db"
	"github.com/seatforge/seatforge/backend-go/internal/ident"
	mw "github.com/seatforge/seatforge/backend-go/internal/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := db.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	chartService := chart.NewService(queries)
	chartHandler := chart.NewHandler(chartService)

	// Layout loader for the collaboration hub
	chartLoader := func(chartID string) (json.RawMessage, error) {
		snap, err := queries.GetLatestSnapshot(context.Background(), chartID)
		if err != nil {
			return nil, err
		}
		return snap.Document, nil
	}

	// Layout saver for the collaboration hub
	chartSaver := func(chartID string, doc json.RawMessage) error {
		nextVersion := int32(1)
		if snap, err := queries.GetLatestSnapshot(context.Background(), chartID); err == nil {
			nextVersion = snap.Version + 1
		}

		_, err := queries.CreateSnapshot(context.Background(), db.CreateSnapshotParams{
			ID:       ident.NewSnapshotID(),
			ChartID:  chartID,
			Version:  nextVersion,
			Document: doc,
		})
		if err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}
		return nil
	}

	hub := collab.NewHub(chartLoader, chartSaver)
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Middleware)

	api.HandleFunc("/charts", chartHandler.List).Methods("GET")
	api.HandleFunc("/charts", chartHandler.Create).Methods("POST")
	api.HandleFunc("/charts/{chartId}", chartHandler.Get).Methods("GET")
	api.HandleFunc("/charts/{chartId}", chartHandler.Delete).Methods("DELETE")
	api.HandleFunc("/charts/{chartId}/invite", chartHandler.Invite).Methods("POST")
	api.HandleFunc("/charts/{chartId}/members", chartHandler.ListMembers).Methods("GET")
	api.HandleFunc("/charts/{chartId}/members/{userId}", chartHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/charts/{chartId}/snapshots/latest", chartHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/charts/{chartId}/export", chartHandler.Export).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/chart/{chartId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, queries, cfg)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty charts
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, queries *db.Queries, cfg *config.Config) {
	vars := mux.Vars(r)
	chartID := vars["chartId"]

	var userID string
	var displayName string

	// Playground chart allows anonymous access
	const playgroundChartID = "chart_playground"
	if chartID == playgroundChartID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for real charts
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		_, err = queries.GetChartMember(r.Context(), db.GetChartMemberParams{
			ChartID: chartID,
			UserID:  userID,
		})
		if err != nil {
			http.Error(w, "not a chart member", http.StatusForbidden)
			return
		}

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(cfg.AllowedOrigins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, chartID, clientID)

	if !hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func originPatterns(allowedOrigins string) []string {
	var patterns []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
