package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"

	"clinic-receptionist/internal/calendar"
	"clinic-receptionist/internal/core"
	"clinic-receptionist/internal/db"
	httpserver "clinic-receptionist/internal/http"
	"clinic-receptionist/internal/llm"
	"clinic-receptionist/internal/session"
	"clinic-receptionist/internal/voice"
	logx "clinic-receptionist/pkg/logger"
	redisx "clinic-receptionist/pkg/redis"
)

// AppConfig holds all environment-driven settings for the server.
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	SessionStore string        `envconfig:"SESSION_STORE" default:"memory"`
	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	Redis        redisx.Config

	ClinicTimezone string `envconfig:"CLINIC_TIMEZONE" default:"Asia/Kolkata"`
	ClinicName     string `envconfig:"CLINIC_NAME" default:"Dental Clinic"`
	ClinicLocation string `envconfig:"CLINIC_LOCATION" default:"Dental Clinic"`

	VoiceEnabled bool `envconfig:"VOICE_ENABLED" default:"false"`
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to load configuration")
	}
	logx.Init(logx.Options{Production: cfg.Environment == "production"})

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logx.Fatal().Err(err).Str("timezone", cfg.ClinicTimezone).Msg("invalid clinic timezone")
	}

	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to open database")
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		logx.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logx.Fatal().Err(err).Msg("failed to run migrations")
	}
	repo := db.NewRepository(dbConn)

	sessions, err := newSessionStore(&cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise session store")
	}
	defer sessions.Close()

	llmClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	links := calendar.NewBuilder(loc)
	recept := core.NewReceptionist(llmClient, repo, links, core.Config{
		Location:       loc,
		ClinicLocation: cfg.ClinicLocation,
	})

	var speaker *voice.Speaker
	var capture *voice.Capture
	if cfg.VoiceEnabled {
		speaker = voice.NewSpeaker(voice.LogEngine{})
		defer speaker.Close()
		capture = voice.NewCapture(voice.NopRecognizer{})
	}

	srv := httpserver.NewServer(recept, sessions, speaker, capture)
	addr := ":" + cfg.Port
	logx.Info().
		Str("addr", addr).
		Str("clinic", cfg.ClinicName).
		Str("session_store", cfg.SessionStore).
		Msg("listening")
	if err := http.ListenAndServe(addr, srv); err != nil {
		logx.Fatal().Err(err).Msg("server error")
	}
}

// newSessionStore builds the configured session store, connecting to
// Redis only when that driver is selected.
func newSessionStore(cfg *AppConfig) (session.Store, error) {
	storeType := session.StoreType(cfg.SessionStore)
	if storeType != session.StoreTypeRedis {
		return session.NewStore(storeType)
	}
	client, err := cfg.Redis.New()
	if err != nil {
		return nil, err
	}
	return session.NewStore(storeType,
		session.WithRedisClient(client),
		session.WithRedisTTL(cfg.SessionTTL),
	)
}
