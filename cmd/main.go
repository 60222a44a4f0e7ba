package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	_ "github.com/sbilibin2017/fdg-inventory-auth/docs"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/handlers"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/jwt"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/middlewares"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds everything read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PgHost         string
	PgPort         int
	PgUser         string
	PgPassword     string
	PgDB           string
	PgMaxOpenConns int
	PgMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	JWTSecretKey string
	JWTExpSecond int

	KafkaBrokers []string
	KafkaTopic   string

	AuthEndpoint          string
	AuthLoginPath         string
	LoginResponseShape    loginform.Shape
	LoginFailureMessage   string
	CookieHashKey         string
	CookieSecure          bool
	BrowserStoreExpSecond int
	StaticDir             string
}

// @title fdg-inventory-auth API
// @version 1.0.0
// @description Authentication service and login page of the Flor de Grace School inventory management system
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, database, Redis, Kafka, JWT and login page configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PgHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PgUser = getEnv("POSTGRES_USER", "user")
	cfg.PgPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PgDB = getEnv("POSTGRES_DB", "database")
	if cfg.PgPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PgMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PgMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.JWTExpSecond, err = getInt("JWT_EXP_SECOND", "3600"); err != nil {
		return
	}

	// Kafka config, empty brokers disables the audit stream
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "auth-events")

	// Login page config
	cfg.AuthEndpoint = getEnv("AUTH_ENDPOINT", fmt.Sprintf("http://%s:%s", cfg.AppHost, cfg.AppPort))
	cfg.AuthLoginPath = getEnv("AUTH_LOGIN_PATH", loginform.DefaultPath)
	if cfg.LoginResponseShape, err = loginform.ParseShape(getEnv("LOGIN_RESPONSE_SHAPE", "token")); err != nil {
		return
	}
	cfg.LoginFailureMessage = getEnv("LOGIN_FAILURE_MESSAGE", loginform.DefaultFailureMessage)
	cfg.CookieHashKey = getEnv("COOKIE_HASH_KEY", "")
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "false")); err != nil {
		err = fmt.Errorf("COOKIE_SECURE: %w", err)
		return
	}
	if cfg.BrowserStoreExpSecond, err = getInt("BROWSER_STORE_EXP_SECOND", "0"); err != nil {
		return
	}
	cfg.StaticDir = getEnv("STATIC_DIR", "web/static")

	return
}

// run initializes the logger, database, Redis, Kafka writer and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PgUser, cfg.PgPassword, cfg.PgHost, cfg.PgPort, cfg.PgDB)
	logger.Log.Infow("connecting to PostgreSQL", "host", cfg.PgHost, "port", cfg.PgPort, "db", cfg.PgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PgMaxOpenConns)
	db.SetMaxIdleConns(cfg.PgMaxIdleConns)

	if err := repositories.EnsureUserSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to prepare users table: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Audit stream
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		kafkaWriter = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
	} else {
		logger.Log.Warn("KAFKA_BROKERS is empty, auth events are not published")
	}
	events := services.NewKafkaEventPublisher(kafkaWriter)
	defer events.Close()

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(time.Duration(cfg.JWTExpSecond)*time.Second),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db, middlewares.GetTxFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	browserRepo := repositories.NewRedisKVRepository(rdb, time.Duration(cfg.BrowserStoreExpSecond)*time.Second)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens, events)

	// Login page
	tmpl, err := handlers.ParseTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	storage := func(browserID string) handlers.BrowserStore {
		return browserRepo.Namespace(browserID)
	}
	formCfg := loginform.Config{
		Endpoint:       cfg.AuthEndpoint,
		Path:           cfg.AuthLoginPath,
		Shape:          cfg.LoginResponseShape,
		FailureMessage: cfg.LoginFailureMessage,
	}

	hashKey := []byte(cfg.CookieHashKey)
	if len(hashKey) == 0 {
		logger.Log.Warn("COOKIE_HASH_KEY is empty, browser ids will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
	}

	r := newRouter(routerDeps{
		authService: authService,
		tokens:      tokens,
		db:          db,
		tmpl:        tmpl,
		storage:     storage,
		formCfg:     formCfg,
		client:      &http.Client{},
		hashKey:     hashKey,
		secure:      cfg.CookieSecure,
		staticDir:   cfg.StaticDir,
		swaggerURL:  fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorw("HTTP server shutdown error", "error", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

type routerDeps struct {
	authService *services.AuthService
	tokens      *jwt.JWT
	db          *sqlx.DB
	tmpl        *handlers.Templates
	storage     handlers.BrowserStorage
	formCfg     loginform.Config
	client      loginform.Doer
	hashKey     []byte
	secure      bool
	staticDir   string
	swaggerURL  string
}

// newRouter wires the JSON API, the login pages, static assets and API docs.
func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		loginHandler := handlers.NewLoginHandler(d.authService)
		r.Post("/login", loginHandler)
		r.Post("/users/login", loginHandler)
		r.With(middlewares.TxMiddleware(d.db)).Post("/users/create", handlers.NewRegisterHandler(d.authService))
		r.With(middlewares.AuthMiddleware(d.tokens)).Post("/users/logout", handlers.NewLogoutHandler(d.authService))
	})

	// Login pages
	r.Group(func(r chi.Router) {
		r.Use(middlewares.BrowserMiddleware(d.hashKey, d.secure))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/login", http.StatusFound)
		})
		r.Get("/login", handlers.NewLoginPageHandler(d.tmpl, d.storage, loginform.DefaultDashboardPath))
		r.Post("/login", handlers.NewLoginSubmitHandler(d.tmpl, d.storage, d.formCfg, d.client))
		r.Get("/dashboard", handlers.NewDashboardHandler(d.tmpl, d.storage))
		r.Post("/logout", handlers.NewPageLogoutHandler(d.storage))
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(d.staticDir))))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(d.swaggerURL),
	))

	return r
}
