package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/protomem/night-stations/internal/database"
	"github.com/protomem/night-stations/internal/env"
	"github.com/protomem/night-stations/internal/external_api/railwaystations"
	"github.com/protomem/night-stations/internal/external_api/stada"
	"github.com/protomem/night-stations/internal/version"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	_cfgFile     = flag.String("cfg", "", "path to config file")
	_showVersion = flag.Bool("version", false, "display version and exit")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

type config struct {
	httpHost string
	httpPort int
	db       struct {
		dsn         string
		automigrate bool
	}
	google struct {
		clientID     string
		clientSecret string
		redirectURL  string
	}
	stada struct {
		baseURL  string
		clientID string
		apiKey   string
	}
	photos struct {
		baseURL string
	}
	session struct {
		ttl time.Duration
	}
}

type application struct {
	config config
	db     *database.DB
	logger *slog.Logger
	photos *railwaystations.Client
	stada  *stada.Client
	google *oauth2.Config
	wg     sync.WaitGroup
}

func run(logger *slog.Logger) error {
	var cfg config

	if *_cfgFile != "" {
		err := env.Load(*_cfgFile)
		if err != nil {
			return err
		}
	}

	cfg.httpHost = env.GetString("HTTP_HOST", "localhost")
	cfg.httpPort = env.GetInt("HTTP_PORT", 8080)
	cfg.db.dsn = env.GetString("DB_DSN", "postgres:postgres@localhost:5432/postgres")
	cfg.db.automigrate = env.GetBool("DB_AUTOMIGRATE", true)
	cfg.google.clientID = env.GetString("GOOGLE_CLIENT_ID", "")
	cfg.google.clientSecret = env.GetString("GOOGLE_CLIENT_SECRET", "")
	cfg.google.redirectURL = env.GetString("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/callback/google")
	cfg.stada.baseURL = env.GetString("STADA_BASE_URL", "")
	cfg.stada.clientID = env.GetString("STADA_CLIENT_ID", "")
	cfg.stada.apiKey = env.GetString("STADA_API_KEY", "")
	cfg.photos.baseURL = env.GetString("PHOTO_API_BASE_URL", "")
	cfg.session.ttl = env.GetDuration("SESSION_TTL", 30*24*time.Hour)

	if *_showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	db, err := database.New(cfg.db.dsn, cfg.db.automigrate)
	if err != nil {
		return err
	}
	defer db.Close()

	app := &application{
		config: cfg,
		db:     db,
		logger: logger,
		photos: railwaystations.NewClient(cfg.photos.baseURL, nil),
		stada:  stada.NewClient(cfg.stada.baseURL, cfg.stada.clientID, cfg.stada.apiKey, nil),
		google: &oauth2.Config{
			ClientID:     cfg.google.clientID,
			ClientSecret: cfg.google.clientSecret,
			RedirectURL:  cfg.google.redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
	}

	go app.cleanupExpiredSessions()

	return app.serveHTTP()
}
