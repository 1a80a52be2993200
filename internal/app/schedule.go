package app

import (
	"context"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
)

var scheduledKinds = []ingestrun.Kind{ingestrun.KindGames, ingestrun.KindPlayers}

// RunSchedule refreshes games and then players once at start and again every
// interval until ctx is done. A failed run is logged and does not stop the
// loop; the players run still reads whatever games are stored.
func (a *App) RunSchedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	a.logger.InfoContext(ctx, "ingestion schedule started", "interval", interval.String(), "league_id", a.cfg.LeagueID)
	a.runScheduledCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("ingestion schedule stopped")
			return
		case <-ticker.C:
			a.runScheduledCycle(ctx)
		}
	}
}

func (a *App) runScheduledCycle(ctx context.Context) {
	for _, kind := range scheduledKinds {
		if ctx.Err() != nil {
			return
		}
		run, err := a.IngestRuns.Execute(ctx, kind)
		if err != nil {
			a.logger.WarnContext(ctx, "scheduled ingestion failed", "kind", kind, "run_id", run.RunID, "error", err)
			continue
		}
		a.logger.InfoContext(ctx, "scheduled ingestion finished",
			"kind", kind,
			"run_id", run.RunID,
			"fetched", run.Fetched,
			"saved", run.Saved,
			"errors", run.Errors,
		)
	}
}
