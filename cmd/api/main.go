package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	_ "deliveryflow/docs"
	"deliveryflow/pkg/auth"
	"deliveryflow/pkg/cart"
	"deliveryflow/pkg/config"
	"deliveryflow/pkg/kvstore"
	kvmemory "deliveryflow/pkg/kvstore/memory"
	kvredis "deliveryflow/pkg/kvstore/redis"
	kvsqlite "deliveryflow/pkg/kvstore/sqlite"
	"deliveryflow/pkg/logger"
	"deliveryflow/pkg/metrics"
	"deliveryflow/pkg/order"
	"deliveryflow/pkg/otel"
	"deliveryflow/pkg/queue"
	"deliveryflow/pkg/user"
	usermemory "deliveryflow/pkg/user/memory"
	userpg "deliveryflow/pkg/user/postgres"
)

var (
	log       *logger.Logger
	tracer    trace.Tracer
	srvMetric *metrics.ServerMetrics

	cartStore *cart.Store
	ledger    *order.Ledger
	authSvc   *auth.Service
	publisher *queue.Publisher
)

const usersSchema = `CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	phone         TEXT,
	birth_date    DATE,
	address       TEXT,
	city          TEXT,
	country       TEXT,
	postal_code   TEXT,
	notifications BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// @title DeliveryFlow API
// @version 1.0
// @description API for the delivery-service cart, orders and tracking
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// Absence of a .env file is fine, the process environment still applies.
	_ = godotenv.Load()

	log = logger.New(os.Stdout, logger.LevelInfo, "deliveryflow", otel.GetTraceID)
	ctx := context.Background()

	cfg := config.Load()

	tp, shutdown, err := otel.InitTracing(log, otel.Config{
		ServiceName: "deliveryflow",
		Host:        cfg.OTELHost,
		Probability: cfg.TraceProb,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(ctx)
	tracer = tp.Tracer("deliveryflow")

	srvMetric = metrics.New("api")

	// Cart and ledger persistence: Redis when configured, otherwise a local
	// SQLite file, otherwise memory.
	var kv kvstore.Store
	switch {
	case cfg.RedisAddr != "":
		kv = kvredis.New(goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr}))
		log.Info(ctx, "using redis persistence", "addr", cfg.RedisAddr)
	default:
		st, err := kvsqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Error(ctx, "open sqlite, falling back to memory", "error", err)
			kv = kvmemory.New()
		} else {
			defer st.Close()
			kv = st
			log.Info(ctx, "using sqlite persistence", "path", cfg.SQLitePath)
		}
	}

	cartStore = cart.New(ctx, kv, log, nil)
	ledger = order.NewLedger(ctx, kv, log)

	var users user.Repository
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error(ctx, "db connect", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if _, err := db.Exec(usersSchema); err != nil {
			log.Error(ctx, "create users table", "error", err)
			os.Exit(1)
		}
		users = userpg.New(db)
	} else {
		log.Info(ctx, "no DATABASE_URL, using in-memory user repository")
		users = usermemory.New()
	}
	authSvc, err = auth.New(users, []byte(cfg.JWTSecret))
	if err != nil {
		log.Error(ctx, "auth service", "error", err)
		os.Exit(1)
	}

	if cfg.RabbitMQURL != "" {
		publisher, err = queue.NewPublisher(cfg.RabbitMQURL, cfg.RabbitQueue)
		if err != nil {
			log.Error(ctx, "connect rabbitmq, publishing disabled", "error", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	r := mux.NewRouter()
	r.Use(traceMiddleware, metricsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", registerHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", loginHandler).Methods(http.MethodPost)
	api.Handle("/profile", authMiddleware(http.HandlerFunc(getProfileHandler))).Methods(http.MethodGet)
	api.Handle("/profile", authMiddleware(http.HandlerFunc(updateProfileHandler))).Methods(http.MethodPut)

	api.HandleFunc("/cart", getCartHandler).Methods(http.MethodGet)
	api.HandleFunc("/cart", clearCartHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", addCartItemHandler).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", removeCartItemHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items/{id}", updateQuantityHandler).Methods(http.MethodPatch)

	api.HandleFunc("/orders", createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders", listOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", getOrderHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/timeline", timelineHandler).Methods(http.MethodGet)

	api.HandleFunc("/pickup-points", listPickupPointsHandler).Methods(http.MethodGet)
	api.HandleFunc("/pickup-points/{id}", getPickupPointHandler).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	r.Handle("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server closed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutdown", "error", err)
	}
}
