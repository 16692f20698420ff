package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/psylab-id/smds27/internal/api"
	"github.com/psylab-id/smds27/internal/db"
	"github.com/psylab-id/smds27/internal/generator"
	"github.com/psylab-id/smds27/internal/middleware"
	"github.com/psylab-id/smds27/internal/services"
	"github.com/psylab-id/smds27/internal/sheets"
	"github.com/psylab-id/smds27/internal/utils"
)

func main() {
	_ = godotenv.Load()

	addr := utils.SafeEnv("SMDS_ADDR", ":8080")
	commit := os.Getenv("SMDS_COMMIT")
	buildTime := os.Getenv("SMDS_BUILD_TIME")
	ctx := context.Background()

	scorer, err := services.NewScorer(services.DefaultSeverityBands())
	if err != nil {
		log.Fatalf("severity bands: %v", err)
	}

	store, err := db.Open(utils.SafeEnv("SMDS_DB_PATH", "smds27.db"))
	if err != nil {
		log.Fatalf("open record store: %v", err)
	}
	defer store.Close()

	var gen services.NarrativeGenerator
	if g, err := generator.NewFromEnv(ctx); err != nil {
		if !errors.Is(err, generator.ErrNotConfigured) {
			log.Fatalf("narrative generator: %v", err)
		}
		log.Printf("narrative generator not configured; reports will carry the unavailable notice")
	} else {
		gen = g
	}

	var appender services.RecordAppender
	if credsFile := os.Getenv("SHEETS_CREDENTIALS_FILE"); credsFile != "" {
		creds, err := os.ReadFile(credsFile)
		if err != nil {
			log.Fatalf("read sheets credentials: %v", err)
		}
		a, err := sheets.NewAppender(ctx, creds, os.Getenv("SHEETS_SPREADSHEET_ID"))
		if err != nil {
			log.Fatalf("sheets appender: %v", err)
		}
		if err := a.EnsureHeader(ctx); err != nil {
			log.Printf("sheets header init failed: %v", err)
		}
		appender = a
	} else {
		log.Printf("spreadsheet persistence not configured; results will carry a warning")
	}

	sessions := api.NewMemorySessionStore()
	svc := services.NewSessionService(services.SessionServiceConfig{
		Sessions:  sessions,
		Records:   store,
		Generator: gen,
		Appender:  appender,
		Scorer:    scorer,
		Post:      services.NewPostProcessor(nil),
		Builder:   services.DefaultBuilderOptions(),
	})
	auth := services.NewAuthService(services.AdminCredentials{
		Email:        os.Getenv("SMDS_ADMIN_EMAIL"),
		PasswordHash: os.Getenv("SMDS_ADMIN_PASSWORD_HASH"),
	}, middleware.SignToken)

	mux := http.NewServeMux()
	api.NewRouter(svc, auth, store).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "SMDS-27 API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Static frontend, if bundled alongside the API.
	if staticDir := os.Getenv("SMDS_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	limiter := middleware.NewIPRateLimiter(5, 10)
	handler := middleware.SecureHeaders(
		middleware.CORS(
			middleware.NoStore(
				middleware.LocaleMiddleware(
					middleware.WithAuth(
						limiter.Middleware(mux))))))

	log.Printf("SMDS-27 server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
