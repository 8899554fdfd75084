// internal/app/system/workers/trashsweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	orderstore "github.com/rafaelGenish111/Alu-Control/internal/app/store/orders"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/tenant"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/timeouts"
)

// TrashSweep is a background worker that permanently removes soft-deleted
// orders whose retention window has elapsed. Stores are tenant-bound, so the
// sweep first discovers which tenants currently hold trashed orders and then
// purges each one through its own scoped store.
type TrashSweep struct {
	db        *mongo.Database
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewTrashSweep creates a new trash sweep worker.
func NewTrashSweep(db *mongo.Database, logger *zap.Logger, interval, retention time.Duration) *TrashSweep {
	return &TrashSweep{
		db:        db,
		log:       logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *TrashSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("trash sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *TrashSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("trash sweep worker stopped")
}

func (w *TrashSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *TrashSweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long)
	defer cancel()

	tenants, err := w.db.Collection("orders").Distinct(ctx, "tenant_id",
		bson.M{"deleted_at": bson.M{"$ne": nil}})
	if err != nil {
		w.log.Error("failed to list tenants with trashed orders", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, t := range tenants {
		id, ok := t.(string)
		if !ok || id == "" {
			continue
		}
		store := orderstore.New(w.db, tenant.ID(id))
		count, err := store.PurgeExpired(ctx, now, w.retention)
		if err != nil {
			w.log.Error("trash purge completed with errors",
				zap.String("tenant", id),
				zap.Int64("purged", count),
				zap.Error(err))
			continue
		}
		if count > 0 {
			w.log.Info("purged expired trashed orders",
				zap.String("tenant", id),
				zap.Int64("count", count))
		}
	}
}
