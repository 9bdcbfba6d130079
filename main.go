package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/flow-hydraulics/nft-wallet-api/configs"
	"github.com/flow-hydraulics/nft-wallet-api/datastore/gorm"
	"github.com/flow-hydraulics/nft-wallet-api/handlers"
	"github.com/flow-hydraulics/nft-wallet-api/jobs"
	"github.com/flow-hydraulics/nft-wallet-api/otel"
	"github.com/flow-hydraulics/nft-wallet-api/transfers"
	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/ratelimit"
	gorm_lib "gorm.io/gorm"
)

const version = "0.1.0"

var (
	sha1ver   string // sha1 revision used to build the program
	buildTime string // when the executable was built
)

func main() {
	var printVersion bool

	// If we should just print the version number and exit
	flag.BoolVar(&printVersion, "version", false, "if true, print version and exit")
	flag.Parse()

	if printVersion {
		fmt.Printf("v%s build on %s from sha1 %s\n", version, buildTime, sha1ver)
		os.Exit(0)
	}

	cfg, err := configs.Parse()
	if err != nil {
		panic(err)
	}

	runServer(cfg)

	os.Exit(0)
}

func newSender(cfg *configs.Config) transfers.Sender {
	if cfg.WalletURL == "" {
		log.Warn("No wallet URL configured, transfers are only simulated")
		return transfers.DryRunSender{}
	}

	return transfers.NewRemoteSender(cfg.WalletURL, cfg.WalletRequestTimeout, cfg.WalletMaxAttempts)
}

func runServer(cfg *configs.Config) {
	configs.ConfigureLogger(cfg.LogLevel)

	log.
		WithFields(log.Fields{"network": cfg.Bech32Hrp}).
		Info("Starting server")

	if cfg.TracingEnabled {
		tp, err := otel.InitTracer(cfg.TracingProjectID, cfg.TracingSampleRatio)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn(err)
			}
			log.Info("Stopped tracer provider")
		}()
	}

	// Database
	db, err := gorm.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer gorm.Close(db)

	// Create a worker pool
	wp := jobs.NewWorkerPool(
		jobs.NewGormStore(db),
		cfg.WorkerQueueCapacity,
		cfg.WorkerCount,
		jobs.WithJobStatusWebhook(cfg.JobStatusWebhookUrl, cfg.JobStatusWebhookTimeout),
		jobs.WithMaxJobErrorCount(cfg.MaxJobErrorCount),
		jobs.WithDbJobPollInterval(cfg.DBJobPollInterval),
		jobs.WithAcceptedGracePeriod(cfg.AcceptedGracePeriod),
		jobs.WithReSchedulableGracePeriod(cfg.ReSchedulableGracePeriod),
	)

	defer func() {
		wp.Stop()
		log.Info("Stopped workerpool")
	}()

	h, closeHandler, err := newHandler(cfg, db, wp, newSender(cfg))
	if err != nil {
		log.Fatal(err)
	}
	defer closeHandler()

	wp.Start()
	log.Info("Started workerpool")

	// Server boilerplate
	srv := &http.Server{
		Handler:      h,
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		WriteTimeout: 0, // Disabled, set cfg.ServerRequestTimeout instead
		ReadTimeout:  0, // Disabled, set cfg.ServerRequestTimeout instead
	}

	// Run our server in a goroutine so that it doesn't block.
	go func() {
		log.
			WithFields(log.Fields{
				"host": cfg.Host,
				"port": cfg.Port,
			}).
			Info("Server listening")
		if err := srv.ListenAndServe(); err != nil {
			log.Warn(err)
		}
	}()

	// Trap interupt and gracefully shutdown the server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Block until we receive our signal.
	sig := <-c

	log.Infof("Got signal: %s. Shutting down..", sig)

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("Error in server shutdown: %s", err)
	}
}

// newHandler wires services, routes and middleware. The returned function
// releases resources held by the middleware.
func newHandler(cfg *configs.Config, db *gorm_lib.DB, wp jobs.WorkerPool, sender transfers.Sender) (http.Handler, func(), error) {
	cleanup := func() {}

	txRatelimiter := ratelimit.New(cfg.TransferMaxSendRate, ratelimit.WithoutSlack)

	// Services
	jobsService := jobs.NewService(jobs.NewGormStore(db))
	transferService := transfers.NewService(
		cfg,
		transfers.NewGormStore(db),
		sender,
		wp,
		transfers.WithTxRatelimiter(txRatelimiter),
	)

	// HTTP handling
	jobsHandler := handlers.NewJobs(jobsService)
	transferHandler := handlers.NewTransfers(transferService)
	addressHandler := handlers.NewAddresses(cfg.Bech32Hrp)

	r := mux.NewRouter()

	if cfg.TracingEnabled {
		r.Use(otelmux.Middleware("nft-wallet-api"))
	}

	// Catch the api version
	rv := r.PathPrefix("/{apiVersion}").Subrouter()

	// Debug
	rv.Handle("/debug", handlers.Debug("https://github.com/flow-hydraulics/nft-wallet-api", sha1ver, buildTime, cfg.Bech32Hrp)).Methods(http.MethodGet)

	// Health
	rv.HandleFunc("/health/ready", handlers.HandleHealthReady).Methods(http.MethodGet)
	rv.Handle("/health/liveness", handlers.Liveness(func() (interface{}, error) {
		return wp.Status()
	})).Methods(http.MethodGet)

	// Jobs
	rv.Handle("/jobs", jobsHandler.List()).Methods(http.MethodGet)            // list
	rv.Handle("/jobs/{jobId}", jobsHandler.Details()).Methods(http.MethodGet) // details

	// NFT transfers
	rv.Handle("/nft-transfers", transferHandler.List()).Methods(http.MethodGet)                  // list
	rv.Handle("/nft-transfers", handlers.UseJson(transferHandler.Send())).Methods(http.MethodPost) // send
	rv.Handle("/nft-transfers/{transferId}", transferHandler.Details()).Methods(http.MethodGet)   // details

	// Addresses
	rv.Handle("/addresses/{address}", addressHandler.Details()).Methods(http.MethodGet)
	rv.Handle("/utils/bech32-to-hex", handlers.UseJson(addressHandler.Bech32ToHex())).Methods(http.MethodPost)
	rv.Handle("/utils/hex-to-bech32", handlers.UseJson(addressHandler.HexToBech32())).Methods(http.MethodPost)
	rv.Handle("/utils/nft-id-to-bech32", handlers.UseJson(addressHandler.NftIdToBech32())).Methods(http.MethodPost)
	rv.Handle("/utils/public-key-to-bech32", handlers.UseJson(addressHandler.PublicKeyToBech32())).Methods(http.MethodPost)

	h := http.TimeoutHandler(r, cfg.ServerRequestTimeout, "request timed out")
	if !cfg.DisableRateLimit {
		h = handlers.UseRateLimit(h, cfg.RequestRateLimit, cfg.RequestRateBurst)
	}
	h = handlers.UseCors(h)
	h = handlers.UseLogging(h)
	h = handlers.UseCompress(h)

	// Setup idempotency key middleware if it's enabled
	if !cfg.DisableIdempotencyMiddleware {
		var is handlers.IdempotencyStore
		switch cfg.IdempotencyMiddlewareDatabaseType {
		// Shared SQL/Gorm store (same as for main app)
		case handlers.IdempotencyStoreTypeShared.String():
			is = handlers.NewIdempotencyStoreGorm(db)
		// Redis, separate from app db
		case handlers.IdempotencyStoreTypeRedis.String():
			if cfg.IdempotencyMiddlewareRedisURL == "" {
				return nil, nil, fmt.Errorf("idempotency middleware db set to redis but Redis URL is empty")
			}
			pool := &redis.Pool{
				MaxIdle:     80,
				MaxActive:   12000,
				IdleTimeout: 5 * time.Minute,
				Dial: func() (redis.Conn, error) {
					return redis.DialURL(cfg.IdempotencyMiddlewareRedisURL)
				},
			}

			cleanup = func() {
				log.Info("Closing Redis pool..")
				if err := pool.Close(); err != nil {
					log.Warn(err)
				}
			}

			is = handlers.NewIdempotencyStoreRedis(pool)
		case handlers.IdempotencyStoreTypeLocal.String():
			is = handlers.NewIdempotencyStoreLocal()
		default:
			return nil, nil, fmt.Errorf("unknown idempotency middleware db type '%s'", cfg.IdempotencyMiddlewareDatabaseType)
		}

		h = handlers.UseIdempotency(h, handlers.IdempotencyHandlerOptions{
			Expiry:      1 * time.Hour,
			IgnorePaths: []string{"/v1/utils"}, // Conversions are read-only
		}, is)
	}

	return h, cleanup, nil
}
