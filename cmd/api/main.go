package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payrolled/config"
	"payrolled/internal/adapter/chain/cctp"
	"payrolled/internal/adapter/chain/ens"
	"payrolled/internal/adapter/chain/settlement"
	httpHandler "payrolled/internal/adapter/http/handler"
	pgStorage "payrolled/internal/adapter/storage/postgres"
	redisStorage "payrolled/internal/adapter/storage/redis"
	"payrolled/internal/core/ports"
	"payrolled/internal/service"
	"payrolled/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Int64("home_chain", cfg.Chain.HomeChainID).
		Msg("Starting PayRolled")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	employeeRepo := pgStorage.NewEmployeeRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	runLock := redisStorage.NewRunLock(rdb)

	// Chain clients. The naming registry, the home chain and every bridge
	// destination may each sit behind a different RPC endpoint.
	ensClient, err := ethclient.DialContext(ctx, cfg.ENS.RPCURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to naming registry RPC")
	}
	defer ensClient.Close()

	homeClient, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to home chain RPC")
	}
	defer homeClient.Close()

	registry, err := ens.NewResolver(ensClient, cfg.ENS.RegistryAddress, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize naming registry resolver")
	}

	executor, err := settlement.NewExecutor(homeClient, settlement.Config{
		ContractAddress: cfg.Chain.DistributorAddress,
		ChainID:         cfg.Chain.HomeChainID,
		SignerKeyHex:    cfg.Chain.SignerKey,
		TokenDecimals:   cfg.Chain.TokenDecimals,
		ConfirmTimeout:  cfg.Chain.ConfirmTimeout,
		PollInterval:    cfg.Chain.PollInterval,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize settlement executor")
	}

	bridge, err := buildBridge(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize bridge client")
	}

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	authSvc := service.NewAuthService(cfg.Auth.OperatorUsername, cfg.Auth.OperatorPasswordHash, hashSvc, tokenSvc)

	resolver := service.NewResolverService(
		registry,
		cfg.Chain.HomeChainID,
		cfg.Payroll.DefaultToken,
		cfg.ENS.ChainKey,
		cfg.ENS.TokenKey,
		log,
	)
	classifier := service.NewClassifierService(resolver, cfg.Chain.HomeChainID, log)
	orchestrator := service.NewOrchestratorService(
		employeeRepo,
		paymentRepo,
		classifier,
		executor,
		bridge,
		runLock,
		cfg.Chain.HomeChainID,
		cfg.Payroll.RunLockTTL,
		log,
	)
	rosterSvc := service.NewRosterService(employeeRepo)
	historySvc := service.NewHistoryService(paymentRepo, employeeRepo)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		RosterSvc:      rosterSvc,
		HistorySvc:     historySvc,
		Orchestrator:   orchestrator,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildBridge dials every configured CCTP endpoint and assembles the bridge
// client. The source endpoint is the home chain's CCTP deployment.
func buildBridge(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*cctp.Bridge, error) {
	source, err := dialEndpoint(ctx, cfg.Bridge.Source)
	if err != nil {
		return nil, fmt.Errorf("dialing source endpoint: %w", err)
	}

	destinations := make([]cctp.Endpoint, 0, len(cfg.Bridge.Destinations))
	for name, dest := range cfg.Bridge.Destinations {
		ep, err := dialEndpoint(ctx, dest)
		if err != nil {
			return nil, fmt.Errorf("dialing destination %s: %w", name, err)
		}
		destinations = append(destinations, ep)
	}

	return cctp.NewBridge(cctp.Config{
		Source:             source,
		Destinations:       destinations,
		SignerKeyHex:       cfg.Chain.SignerKey,
		TokenDecimals:      cfg.Chain.TokenDecimals,
		AttestationURL:     cfg.Bridge.AttestationURL,
		AttestationTimeout: cfg.Bridge.AttestationTimeout,
		PollInterval:       cfg.Bridge.PollInterval,
	}, log)
}

func dialEndpoint(ctx context.Context, cfg config.BridgeChainConfig) (cctp.Endpoint, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return cctp.Endpoint{}, err
	}
	return cctp.Endpoint{
		ChainID:            cfg.ChainID,
		Client:             client,
		USDC:               common.HexToAddress(cfg.USDCAddress),
		TokenMessenger:     common.HexToAddress(cfg.TokenMessenger),
		MessageTransmitter: common.HexToAddress(cfg.MessageTransmitter),
		Domain:             cfg.Domain,
	}, nil
}
