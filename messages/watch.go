package messages

import (
	"context"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"socialclient/utils"
)

const watchRetryDelay = 30 * time.Second

// Watch calls refresh on every tick of the cron expression until ctx is
// done. Refresh failures are logged and the schedule continues.
func Watch(ctx context.Context, cronExpr string, refresh func(context.Context) error, logger *zap.Logger) error {
	if !gronx.IsValid(cronExpr) {
		return utils.Validation("invalid refresh schedule: " + cronExpr)
	}
	next := func(now time.Time) (time.Time, error) {
		return gronx.NextTickAfter(cronExpr, now, false)
	}
	watch(ctx, next, refresh, utils.OrNop(logger).With(zap.String("cron", cronExpr)))
	return nil
}

func watch(ctx context.Context, next func(time.Time) (time.Time, error), refresh func(context.Context) error, logger *zap.Logger) {
	for {
		wait := watchRetryDelay
		tick, err := next(time.Now())
		if err != nil {
			logger.Error("watch_next_tick_failed", zap.Error(err))
		} else {
			wait = time.Until(tick)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err != nil {
			continue
		}
		if err := refresh(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("watch_refresh_failed", zap.Error(err))
		}
	}
}
