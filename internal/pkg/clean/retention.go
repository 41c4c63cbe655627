package clean

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
)

// AuditDB removes old audit records
type AuditDB interface {
	DeleteAuditOlder(ctx context.Context, t time.Time) (int64, error)
}

// RetentionData configures the audit retention timer
type RetentionData struct {
	DB       AuditDB
	Keep     time.Duration
	RunEvery time.Duration

	now func() time.Time
}

// StartAuditRetention deletes audit events older than Keep every RunEvery,
// returns channel closed when the timer stops
func StartAuditRetention(ctx context.Context, data *RetentionData) (<-chan struct{}, error) {
	if data.DB == nil {
		return nil, fmt.Errorf("no audit DB")
	}
	if data.Keep <= 0 {
		return nil, fmt.Errorf("wrong keep duration %v", data.Keep)
	}
	if data.RunEvery <= 0 {
		return nil, fmt.Errorf("wrong run duration %v", data.RunEvery)
	}
	if data.now == nil {
		data.now = time.Now
	}
	goapp.Log.Info().Dur("keep", data.Keep).Dur("every", data.RunEvery).Msg("audit retention")
	res := make(chan struct{})
	go func() {
		defer close(res)
		ticker := time.NewTicker(data.RunEvery)
		defer ticker.Stop()
		for {
			removeAudit(ctx, data)
			select {
			case <-ctx.Done():
				goapp.Log.Info().Msg("audit retention stopped")
				return
			case <-ticker.C:
			}
		}
	}()
	return res, nil
}

func removeAudit(ctx context.Context, data *RetentionData) {
	n, err := data.DB.DeleteAuditOlder(ctx, data.now().Add(-data.Keep))
	if err != nil {
		goapp.Log.Error().Err(err).Msg("can't delete old audit events")
		return
	}
	goapp.Log.Info().Int64("rows", n).Msg("old audit events deleted")
}
