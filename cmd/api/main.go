package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/finsim/trading-ledger/internal/auth"
	"github.com/finsim/trading-ledger/internal/config"
	"github.com/finsim/trading-ledger/internal/handlers"
	"github.com/finsim/trading-ledger/internal/ledger"
	"github.com/finsim/trading-ledger/internal/quote"
	"github.com/finsim/trading-ledger/internal/session"
	"github.com/finsim/trading-ledger/internal/store"
)

func main() {
	log := logrus.WithField("component", "main")

	cfg := config.Load()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer st.Close()

	// Quote provider: the simulator by default, an external API when
	// configured. The stream endpoint only exists in sim mode.
	var (
		provider quote.Provider
		sim      *quote.SimProvider
	)
	switch cfg.QuoteProvider {
	case "http":
		if cfg.QuoteURL == "" {
			log.Fatal("QUOTE_URL is required with QUOTE_PROVIDER=http")
		}
		provider = quote.NewHTTPProvider(cfg.QuoteURL, cfg.QuoteAPIKey, cfg.QuoteTimeout)
	default:
		sim = quote.NewSimProvider()
		provider = sim
	}

	sessions := session.NewStore(st, cfg.SessionTTL)
	ledgerSvc := ledger.New(st, provider)
	authSvc := auth.New(st, sessions)

	trades := ledger.NewProcessor(ledgerSvc, cfg.NumWorkers)
	trades.Start()
	defer trades.Stop()

	h := handlers.New(authSvc, ledgerSvc, trades, sessions, sim)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
