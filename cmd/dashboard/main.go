// Command dashboard is a headless reconciliation client: it keeps a local
// copy of the session list in step with the server and logs what changed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"capture-backend/internal/dashboard"
	"capture-backend/internal/logging"

	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "capture server base URL")
	interval := flag.Duration("interval", 5*time.Second, "poll interval")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	limit := flag.Int("limit", 100, "sessions to track")
	token := flag.String("token", os.Getenv("ADMIN_TOKEN"), "bearer token for admin routes")
	merge := flag.String("merge", "", "comma-separated session ids to merge, then exit")
	remove := flag.String("delete", "", "comma-separated session ids to delete, then exit")
	reset := flag.Bool("reset", false, "delete all sessions, then exit")
	flag.Parse()

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "console", "capture-dashboard")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	client := dashboard.NewAPIClient(*server, *token, *timeout, logger)
	poller := dashboard.NewPoller(client, logger, dashboard.PollerOptions{
		Limit:    *limit,
		Interval: *interval,
		Timeout:  *timeout,
		OnTick: func(r dashboard.TickReport) {
			if r.Result.Empty() {
				return
			}
			for _, s := range r.Result.Inserted {
				logger.Info("new session",
					zap.Uint("id", s.ID),
					zap.String("device", s.DeviceLabel),
					zap.Int("barcodes", s.TotalEntryCount),
				)
			}
			for _, s := range r.Result.Updated {
				logger.Info("session changed",
					zap.Uint("id", s.ID),
					zap.Int("processed", s.ProcessedCount),
					zap.Int("pending", s.PendingCount),
				)
			}
			logger.Info("totals",
				zap.Int("sessions", r.Stats.Sessions),
				zap.Int("barcodes", r.Stats.Entries),
				zap.Int("processed", r.Stats.Processed),
				zap.Int("pending", r.Stats.Pending),
			)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *merge != "" || *remove != "" || *reset {
		if err := runAction(ctx, poller, logger, *merge, *remove, *reset); err != nil {
			logger.Fatal("action failed", zap.Error(err))
		}
		return
	}

	logger.Info("polling", zap.String("server", *server), zap.Duration("interval", *interval))
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("poller stopped", zap.Error(err))
	}
	st := poller.Stats()
	logger.Info("stopped", zap.Int("sessions", st.Sessions), zap.Int("barcodes", st.Entries))
}

// runAction performs one mutation through the poller's selection, the same
// path an interactive user takes.
func runAction(ctx context.Context, p *dashboard.Poller, logger *zap.Logger, merge, remove string, reset bool) error {
	if reset {
		res, err := p.Reset(ctx)
		if err != nil {
			return err
		}
		logger.Info("reset", zap.Int64("sessions", res.Sessions), zap.Int64("barcodes", res.Entries))
		return nil
	}

	if err := p.Load(ctx); err != nil {
		return err
	}
	raw := merge
	if raw == "" {
		raw = remove
	}
	ids, err := parseIDs(raw)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p.Toggle(id)
	}

	if merge != "" {
		res, err := p.MergeSelected(ctx)
		if err != nil {
			return err
		}
		logger.Info("merged",
			zap.Uint("new_session", res.NewSessionID),
			zap.Int("sessions", res.MergedSessions),
			zap.Int("barcodes", res.ConsolidatedEntries),
		)
		return nil
	}
	res, err := p.DeleteSelected(ctx)
	if err != nil {
		return err
	}
	logger.Info("deleted", zap.Int64("sessions", res.Sessions), zap.Int64("barcodes", res.Entries))
	return nil
}

func parseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q", part)
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}
