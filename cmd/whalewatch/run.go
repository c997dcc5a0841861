package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Vitor-VarelAI/Polymarket/internal/notify"
	"github.com/Vitor-VarelAI/Polymarket/internal/observability"
)

// assetIndexLimit caps the CLOB token lookup built for the live feed.
const assetIndexLimit = 300

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler loop: detection cycles plus scheduled digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runLoop(ctx, a)
		},
	}
}

func runLoop(ctx context.Context, a *app) error {
	go serveMetrics(ctx, a.cfg.MetricsPort)

	if a.feed != nil {
		assets, err := a.gamma.AssetIndex(ctx, assetIndexLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Asset index fetch failed, live feed starts unsubscribed")
		} else {
			a.feed.SetAssets(assets)
		}
		a.feed.Start(ctx)
	}

	log.Info().
		Dur("poll_interval", a.cfg.PollInterval).
		Int("market_limit", a.cfg.MarketLimit).
		Msg("Scheduler loop started")

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	tick(ctx, a)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Scheduler loop stopping")
			return nil
		case <-ticker.C:
			tick(ctx, a)
		}
	}
}

// tick runs one detection cycle, one scanner pass and, when a slot is
// due, the digest. Failures are logged and the loop keeps going; only
// shutdown stops it.
func tick(ctx context.Context, a *app) {
	if _, err := a.runner.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Detection cycle failed")
	}

	if _, err := a.scanner.Scan(ctx, time.Now().UnixMilli()); err != nil {
		log.Warn().Err(err).Msg("Value scan failed")
	}

	if edition, due := a.schedule.Due(time.Now()); due {
		if err := a.sendDigest(ctx, edition); err != nil {
			log.Error().Err(err).Str("edition", edition).Msg("Digest delivery failed")
		} else {
			a.schedule.MarkSent(time.Now())
		}
	}
}

// sendDigest builds the digest from the scanner's queue, delivers it
// and retires the picked markets from the queue.
func (a *app) sendDigest(ctx context.Context, edition string) error {
	d := a.digests.Build(ctx, a.scanner.Candidates(), edition, time.Now())
	if d == nil {
		log.Info().Str("edition", edition).Msg("No value bets queued, skipping digest")
		return nil
	}

	if err := a.channel.Send(ctx, d.Body); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			log.Warn().Msg("Telegram not configured, digest not delivered")
			return nil
		}
		observability.RecordSendError()
		return err
	}

	ids := make([]string, 0, len(d.Picks))
	for _, p := range d.Picks {
		ids = append(ids, p.Candidate.Market.MarketID)
	}
	a.scanner.ClearSent(ids)
	observability.RecordDigestSent(d.Edition)

	log.Info().
		Str("edition", d.Edition).
		Int("picks", len(d.Picks)).
		Msg("Digest delivered")
	return nil
}

func serveMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", port).Msg("Metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("Metrics server stopped")
	}
}
