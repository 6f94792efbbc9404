package quota

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/prometheus"
)

const bytesPerMB = 1024 * 1024

// TenantLister enumerates the tenants whose storage figures get refreshed.
type TenantLister interface {
	List(ctx context.Context) ([]model.Tenant, error)
}

// RecomputeStorageUsage sums the stored media bytes of the tenant's products
// and persists the result as the new cached figure. This scans every image
// row of the tenant, so it runs on the background loop rather than the
// request path; quota checks serve the cached value.
func (l *Ledger) RecomputeStorageUsage(ctx context.Context, tenantID uint) (float64, error) {
	start := time.Now()
	totalBytes, err := l.store.SumImageSizeBytes(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	usedMB := float64(totalBytes) / bytesPerMB
	if err := l.store.UpdateStorageUsed(ctx, tenantID, usedMB); err != nil {
		return 0, err
	}

	prometheus.ObserveStorageRecompute(time.Since(start).Seconds())
	prometheus.SetStorageUsed(tenantID, usedMB)

	l.logger.Debug("Storage usage recomputed",
		zap.Uint("tenant_id", tenantID),
		zap.Float64("used_mb", usedMB))
	return usedMB, nil
}

// RunRecomputeLoop refreshes every tenant's storage figure on the given
// interval until ctx is cancelled. A failing tenant is logged and skipped;
// one bad tenant must not stall the rest.
func (l *Ledger) RunRecomputeLoop(ctx context.Context, tenants TenantLister, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("Storage recompute loop started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Storage recompute loop stopped")
			return
		case <-ticker.C:
			l.recomputeAll(ctx, tenants)
		}
	}
}

func (l *Ledger) recomputeAll(ctx context.Context, tenants TenantLister) {
	list, err := tenants.List(ctx)
	if err != nil {
		l.logger.Error("Failed to list tenants for storage recompute", zap.Error(err))
		return
	}

	for _, tenant := range list {
		if _, err := l.RecomputeStorageUsage(ctx, tenant.ID); err != nil {
			l.logger.Error("Failed to recompute storage usage",
				zap.Uint("tenant_id", tenant.ID),
				zap.Error(err))
		}
	}
}
