package app

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Snehagupta1907/monad-journal/internal/aggregator"
	"github.com/Snehagupta1907/monad-journal/internal/chain"
	"github.com/Snehagupta1907/monad-journal/internal/config"
	"github.com/Snehagupta1907/monad-journal/internal/contentstore"
	"github.com/Snehagupta1907/monad-journal/internal/eligibility"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
	"github.com/Snehagupta1907/monad-journal/internal/index"
	"github.com/Snehagupta1907/monad-journal/internal/journal"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metadata"
	"github.com/Snehagupta1907/monad-journal/internal/redis"
	"github.com/Snehagupta1907/monad-journal/internal/scheduler"
	redisstore "github.com/Snehagupta1907/monad-journal/internal/store/redis"
	"github.com/Snehagupta1907/monad-journal/internal/utils"
	"github.com/Snehagupta1907/monad-journal/internal/version"
)

const startupTimeout = time.Minute

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	ethClient   *ethclient.Client
	redisClient *goredis.Client
	guard       *eligibility.Guard
	session     chain.WalletSession
	refresher   *scheduler.EntryRefresher
	watcher     *scheduler.EligibilityWatcher
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Chain: registry gateway and the wallet session minting runs under
	loggerClient.Infof("Connecting to chain at %s (chain id %d)", cfg.RPCURL, cfg.ChainID)
	ethClient, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, err
	}

	gateway, err := chain.New(cfg.RegistryAddress, ethClient, loggerClient, chain.WithWaitTimeout(cfg.ReceiptTimeout))
	if err != nil {
		ethClient.Close()
		return nil, fmt.Errorf("failed to bind registry: %w", err)
	}

	session, err := chain.NewWalletSession(cfg.PrivateKey, big.NewInt(cfg.ChainID))
	if err != nil {
		ethClient.Close()
		return nil, fmt.Errorf("invalid wallet key: %w", err)
	}
	if session.Connected {
		loggerClient.Info("wallet session connected", logger.String("address", session.Hex()))
	} else {
		loggerClient.Warn("no wallet key configured, minting disabled")
	}

	// Redis is optional: metadata cache and warm-start snapshot
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
		cache       contentstore.MetadataCache
		snapshots   scheduler.SnapshotStore
		redisPinger deps.Pinger
	)
	if cfg.RedisEnabled() {
		redisClient, err = redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("continuing without redis", logger.Error(err))
		} else {
			store = redisstore.NewStore(redisClient)
			cache, snapshots, redisPinger = store, store, store
		}
	} else {
		loggerClient.Info("redis not configured, metadata cache disabled")
	}

	// Content store: uploads through Filebase, reads through the IPFS gateway
	filebase, err := contentstore.NewFilebaseStore(ctx, contentstore.FilebaseOptions{
		Endpoint:  cfg.FilebaseEndpoint,
		Region:    cfg.FilebaseRegion,
		Bucket:    cfg.FilebaseBucket,
		AccessKey: cfg.FilebaseAccessKey,
		SecretKey: cfg.FilebaseSecretKey,
	}, loggerClient)
	if err != nil {
		ethClient.Close()
		return nil, fmt.Errorf("failed to configure content store: %w", err)
	}
	uploads := contentstore.WithRetry(filebase, contentstore.RetryPolicy{
		Retries:     cfg.StoreRetries,
		InitialWait: cfg.StoreRetryInterval,
		MaxWait:     cfg.StoreRetryMaxWait,
	}, loggerClient)

	resolver := contentstore.NewResolver(cfg.IPFSGateway)
	fetcher := contentstore.NewCachedFetcher(contentstore.NewHTTPFetcher(resolver, cfg.FetchTimeout), cache, loggerClient)

	// Entry view
	memIndex := index.NewMemoryIndex()
	agg := aggregator.New(gateway, fetcher, resolver, cfg.AggregateConcurrency, loggerClient)

	if snapshots != nil {
		syncer := scheduler.NewRedisSyncer(snapshots, memIndex, loggerClient)
		if err := syncer.Sync(ctx); err != nil {
			loggerClient.Warn("failed to sync from redis on startup, will load from chain",
				logger.Error(err))
		}
	}

	refresher := scheduler.NewEntryRefresher(agg, snapshots, memIndex, loggerClient, cfg.RefreshInterval, make(chan struct{}, 1))

	// Eligibility and the minting pipeline
	guard := eligibility.New(gateway, loggerClient)
	watcher := scheduler.NewEligibilityWatcher(guard, loggerClient, cfg.EligibilityInterval)

	svc := journal.NewService(
		uploads,
		metadata.NewAssembler(cfg.FallbackImage),
		gateway,
		guard,
		refresher,
		journal.Options{
			MaxImageBytes:       cfg.MaxImageBytes,
			DefaultPortfolioURL: cfg.DefaultPortfolioURL,
		},
		loggerClient,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		WriteBurst:    cfg.MintBurst,
		WriteRefill:   cfg.MintRefillPerMin,
		MaxImageBytes: cfg.MaxImageBytes,
		Index:         memIndex,
		Entries:       agg,
		Registry:      gateway,
		Guard:         guard,
		Journal:       svc,
		Refresher:     refresher,
		Redis:         redisPinger,
		RegistryAddr:  gateway.Address().Hex(),
		Gateway:       resolver.Gateway(),
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		ethClient:   ethClient,
		redisClient: redisClient,
		guard:       guard,
		session:     session,
		refresher:   refresher,
		watcher:     watcher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting journal v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// First eligibility verdict for the configured wallet
	state := a.guard.SetSession(ctx, a.session)
	a.logger.Info("eligibility evaluated", logger.String("state", string(state)))

	// Start entry refresher (first aggregation pass, then periodic refresh)
	a.refresher.Start(ctx)
	a.logger.Info("entry refresher started",
		logger.Duration("interval", a.cfg.RefreshInterval))

	// Start eligibility watcher (UTC day rollover)
	a.watcher.Start(ctx)
	a.logger.Info("eligibility watcher started",
		logger.Duration("interval", a.cfg.EligibilityInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.shutdownBackground()
		return err
	}

	a.shutdownBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}
	a.ethClient.Close()

	a.logger.Info("✅ journal stopped cleanly")
	return nil
}

// shutdownBackground stops the refresher and the watcher; no refresh result is applied afterwards.
func (a *App) shutdownBackground() {
	a.refresher.Stop()
	a.watcher.Stop()
}
