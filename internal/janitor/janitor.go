package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/metrics"
	"github.com/proview/proview-api/internal/rag/vectorDB"
	"github.com/proview/proview-api/pkg/logger_i"
)

// Janitor evicts chunks whose ingestion timestamp has aged past the session
// timeout. It runs on its own timer, decoupled from request handling, and
// is strictly best-effort: a failing store must never cost a serving path
// anything, so failures log and count as zero.
type Janitor struct {
	store  vectorDB.SessionStore
	logger *logger_i.Logger
	clock  func() time.Time
}

func New(store vectorDB.SessionStore) *Janitor {
	return &Janitor{
		store:  store,
		logger: logger_i.NewLogger("Janitor"),
		clock:  time.Now,
	}
}

// RunOnce deletes every chunk older than thresholdHours across all
// sessions and returns how many went. Running twice back to back with no
// new writes deletes zero the second time.
func (j *Janitor) RunOnce(ctx context.Context, thresholdHours float64) int {
	if thresholdHours <= 0 {
		thresholdHours = config.SessionTimeoutHours
	}
	cutoff := j.clock().Unix() - int64(thresholdHours*3600)

	storeCtx, cancel := context.WithTimeout(ctx, config.JanitorStoreDeadline)
	defer cancel()

	deleted, err := j.store.DeleteOlderThan(storeCtx, cutoff)
	if err != nil {
		j.logger.Error("cleanup pass failed", "error", err)
		return 0
	}

	if deleted > 0 {
		metrics.AddJanitorDeletions(deleted)
		j.logger.Info("cleanup pass complete", "deleted", deleted, "cutoffHours", thresholdHours)
	} else {
		j.logger.Debug("cleanup pass complete, nothing expired")
	}
	return deleted
}

// Start runs periodic cleanup until the stop channel closes. The WaitGroup
// lets shutdown wait for an in-flight pass.
func (j *Janitor) Start(stop chan bool, group *sync.WaitGroup) {
	group.Add(1)
	go j.loop(stop, group)
	j.logger.Info("Janitor started", "interval", config.JanitorTickInterval.String())
}

func (j *Janitor) loop(stop chan bool, group *sync.WaitGroup) {
	defer group.Done()

	ticker := time.NewTicker(config.JanitorTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce(context.Background(), config.SessionTimeoutHours)
		case <-stop:
			j.logger.Info("Janitor stopping")
			return
		}
	}
}
