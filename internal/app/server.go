package app

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"github.com/caarlos0/env/v6"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/meal-mate-devs/payouts/internal/handlers"
	"github.com/meal-mate-devs/payouts/internal/logger"
	"github.com/meal-mate-devs/payouts/internal/service"
	"github.com/meal-mate-devs/payouts/internal/storage"
	"github.com/rs/zerolog/log"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func Start() {
	cfg := loadConfig()
	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if cfg.APIAddress == "" {
		log.Fatal().Msg("Backend API address must be configured")
	}
	db, userStore := initStore(cfg)
	defer db.Close()
	defer userStore.Close()
	secretKey, err := getSecret(cfg.SecretFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Error while reading secret key")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := service.NewMonetizationClient(cfg.APIAddress)
	authService := &service.AuthServiceImpl{Store: userStore, Chefs: client, SecretKey: secretKey}
	monetizationService := service.NewMonetizationService(client, cfg.RequestTimeout)

	r := handlers.NewRouter(authService, monetizationService)
	refreshWorker, err := service.NewRefreshWorker(monetizationService, cfg.PollInterval, cfg.DashboardIdleTTL, cfg.PollWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("Create refresh worker error")
	}
	go refreshWorker.Run(ctx)

	server := &http.Server{Addr: cfg.Address, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("address", cfg.Address).Str("api", cfg.APIAddress).Msg("Started server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server error")
	}
}

func loadConfig() internal.Config {
	// .env is optional; variables from the real environment take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Error while loading .env")
	}
	var cfg internal.Config
	flag.StringVar(&cfg.Address, "a", "localhost:8080", "address to listen on")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database connection string")
	flag.StringVar(&cfg.APIAddress, "r", "", "marketplace backend address")
	flag.StringVar(&cfg.SecretFile, "s", "", "path to file with secret")
	flag.DurationVar(&cfg.RequestTimeout, "t", 30*time.Second, "timeout for balance and account status requests")
	flag.DurationVar(&cfg.PollInterval, "p", time.Minute, "interval between background dashboard refreshes")
	flag.DurationVar(&cfg.DashboardIdleTTL, "idle", 15*time.Minute, "close dashboards idle for longer than this")
	flag.IntVar(&cfg.PollWorkers, "w", 8, "dashboards refreshed concurrently by the background poll")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level")
	flag.BoolVar(&cfg.LogPretty, "log-pretty", false, "human readable logs")
	flag.Parse()
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("Error while parsing env")
	}
	return cfg
}

func initStore(cfg internal.Config) (*sql.DB, storage.UserStorage) {
	if cfg.DatabaseURI == "" {
		log.Fatal().Msg("Database URI must be configured")
	}
	db, err := sql.Open("pgx", cfg.DatabaseURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection error")
	}
	err = storage.DoMigrations(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Running migrations error")
	}
	log.Info().Msg("Using database storage")
	userStore, err := storage.NewDBUserStorage(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Create user store error")
	}
	return db, userStore
}

func getSecret(path string) ([]byte, error) {
	if path == "" {
		// Only for tests.
		return []byte("my secret key"), nil
	}
	return os.ReadFile(path)
}
