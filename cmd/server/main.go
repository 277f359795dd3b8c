package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/finbooks/finbooks/internal/api"
	"github.com/finbooks/finbooks/internal/app"
	"github.com/finbooks/finbooks/internal/auth"
	"github.com/finbooks/finbooks/internal/cache"
	"github.com/finbooks/finbooks/internal/chain"
	"github.com/finbooks/finbooks/internal/database"
	"github.com/finbooks/finbooks/internal/handlers"
	"github.com/finbooks/finbooks/internal/rates"
	"github.com/finbooks/finbooks/internal/services"
	"github.com/finbooks/finbooks/pkg/localstore"
	"github.com/finbooks/finbooks/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(configPath string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return err
	}
	if err := database.AutoMigrateAndSeed(db); err != nil {
		return err
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.Issuer,
		AccessTokenTTL: cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}

	var store cache.Store
	if cfg.Cache.Backend == "database" {
		store = cache.NewDatabaseStore(db)
	} else {
		store = cache.NewMemoryStore()
	}
	statsCache := cache.NewStatsCache(cfg.Cache.StatsTTL)
	dispatcher := cache.NewDispatcher(store, statsCache)

	snapshotStore, err := localstore.New(afero.NewOsFs(), cfg.Snapshot.Dir)
	if err != nil {
		return err
	}

	authService, err := services.NewAuthService(db, jwtService)
	if err != nil {
		return err
	}
	companyService, err := services.NewCompanyService(db)
	if err != nil {
		return err
	}
	clientService, err := services.NewClientService(db)
	if err != nil {
		return err
	}
	invoiceService, err := services.NewInvoiceService(db)
	if err != nil {
		return err
	}
	productService, err := services.NewProductService(db)
	if err != nil {
		return err
	}
	paymentMethodService, err := services.NewPaymentMethodService(db)
	if err != nil {
		return err
	}
	bankAccountService, err := services.NewBankAccountService(db, []byte(cfg.Auth.EncryptionKey))
	if err != nil {
		return err
	}
	walletService, err := services.NewWalletService(db)
	if err != nil {
		return err
	}
	transactionService, err := services.NewTransactionService(db)
	if err != nil {
		return err
	}
	entryService, err := services.NewEntryService(db)
	if err != nil {
		return err
	}
	rateService, err := services.NewRateService(db)
	if err != nil {
		return err
	}
	snapshotService, err := services.NewSnapshotService(db, snapshotStore)
	if err != nil {
		return err
	}

	// Warm-up repopulates the statistics cache and the client snapshots.
	dispatcher.RegisterWarmer(func(ctx context.Context) error {
		stats, err := companyService.Statistics(ctx)
		if err != nil {
			return err
		}
		statsCache.Set(stats)
		return nil
	})
	dispatcher.RegisterWarmer(snapshotService.SyncAll)

	explorer := chain.NewExplorerClient(chain.ExplorerConfig{
		APIKey:  cfg.Chain.APIKey,
		Timeout: cfg.Chain.Timeout,
	})
	importer, err := chain.NewImporter(db, explorer)
	if err != nil {
		return err
	}

	pairs, err := rates.ParsePairs(cfg.Rates.Pairs)
	if err != nil {
		return err
	}
	quoteClient := rates.NewHTTPQuoteClient(rates.HTTPQuoteClientConfig{Endpoint: cfg.Rates.Endpoint})
	rateScheduler, err := rates.NewScheduler(quoteClient, rateService, pairs, cfg.Rates.Schedule)
	if err != nil {
		return err
	}
	if err := rateScheduler.Start(); err != nil {
		return err
	}
	defer rateScheduler.Stop()

	router := api.NewRouter(jwtService, api.Handlers{
		Auth:           handlers.NewAuthHandler(authService),
		Companies:      handlers.NewCompanyHandler(companyService, statsCache, dispatcher),
		Clients:        handlers.NewClientHandler(clientService, dispatcher),
		Invoices:       handlers.NewInvoiceHandler(invoiceService, dispatcher),
		Products:       handlers.NewProductHandler(productService),
		PaymentMethods: handlers.NewPaymentMethodHandler(paymentMethodService),
		BankAccounts:   handlers.NewBankAccountHandler(bankAccountService, snapshotService),
		Wallets:        handlers.NewWalletHandler(walletService, importer, snapshotService),
		Transactions:   handlers.NewTransactionHandler(transactionService),
		Entries:        handlers.NewEntryHandler(entryService),
		Rates:          handlers.NewRateHandler(rateService, rateScheduler),
		Cache:          handlers.NewCacheHandler(dispatcher),
		Health:         handlers.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
