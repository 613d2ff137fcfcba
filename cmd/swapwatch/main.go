// Command swapwatch runs the swap synchronization engine against a live
// marketplace: it keeps the local collection fresh, consumes real-time
// status pushes and periodically prints aggregate statistics.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"bookswap-client/internal/marketclient"
	"bookswap-client/internal/realtime"
	"bookswap-client/internal/state"
	"bookswap-client/internal/syncer"
)

func main() {
	var (
		apiEndpoint = flag.String("api", envOr("SWAP_API_URL", "http://localhost:8080"), "marketplace API base URL")
		wsEndpoint  = flag.String("ws", envOr("SWAP_WS_URL", ""), "real-time channel URL (empty disables)")
		userID      = flag.String("user", envOr("SWAP_USER_ID", ""), "marketplace user id")
		interval    = flag.Duration("interval", time.Minute, "refresh check interval")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *userID == "" {
		log.Fatal("user id is required (-user or SWAP_USER_ID)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("shutting down")
		cancel()
	}()

	engine := state.NewEngine()
	api := marketclient.New(*apiEndpoint)
	sync := syncer.New(syncer.Options{
		API:    api,
		Engine: engine,
		UserID: *userID,
		Logger: log,
	})

	if err := sync.Refresh(ctx, true); err != nil {
		log.WithError(err).Fatal("initial fetch failed")
	}

	if *wsEndpoint != "" {
		rt, err := realtime.Dial(ctx, *wsEndpoint, *userID, nil, log)
		if err != nil {
			log.WithError(err).Fatal("real-time channel dial failed")
		}
		defer rt.Close()
		go sync.Pump(ctx, rt.Events())
		log.WithField("endpoint", *wsEndpoint).Info("real-time channel connected")
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	printStats(log, engine, *userID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Refresh only when the cache went stale; pushes keep it warm.
			if err := sync.Refresh(ctx, false); err != nil {
				log.WithError(err).Warn("refresh failed, keeping cached state")
			}
			printStats(log, engine, *userID)
		}
	}
}

func printStats(log *logrus.Logger, engine *state.Engine, userID string) {
	stats := engine.ComputeStatistics()
	log.WithFields(logrus.Fields{
		"swaps":           stats.TotalSwaps,
		"auctions":        stats.TotalAuctions,
		"cash_swaps":      stats.TotalCashSwaps,
		"avg_cash_offer":  stats.AverageCashOffer,
		"auction_success": stats.AuctionSuccessRate,
		"need_action":     len(engine.SwapsRequiringAction(userID)),
		"cache_valid":     engine.CacheValid(),
	}).Info("collection state")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
