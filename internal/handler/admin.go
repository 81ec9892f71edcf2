package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"guild-economy-api/pkg/apierror"
	"guild-economy-api/pkg/response"
)

// StoreStats exposes repository statistics.
type StoreStats interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// MaintenanceRunner triggers an immediate normalization pass.
type MaintenanceRunner interface {
	RunNow(ctx context.Context) (int, error)
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	store      StoreStats
	normalizer MaintenanceRunner
	storeType  string
	startTime  time.Time
}

// NewAdminHandler creates a new admin handler. normalizer may be nil.
func NewAdminHandler(store StoreStats, normalizer MaintenanceRunner, storeType string) *AdminHandler {
	return &AdminHandler{
		store:      store,
		normalizer: normalizer,
		storeType:  storeType,
		startTime:  time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"heap_alloc_mb":  float64(memStats.HeapAlloc) / 1024 / 1024,
		"heap_inuse_mb":  float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	storeStats, err := h.store.Stats(r.Context())
	if err == nil {
		storeStats["status"] = "connected"
		stats["store"] = storeStats
	} else {
		stats["store"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// Normalize handles POST /api/v1/admin/normalize
func (h *AdminHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	if h.normalizer == nil {
		response.Error(w, apierror.ServiceUnavailable("Maintenance is disabled"))
		return
	}
	n, err := h.normalizer.RunNow(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("Normalization failed"))
		return
	}
	response.OK(w, map[string]interface{}{"normalized": n})
}
