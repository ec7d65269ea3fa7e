package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/history"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/service"
	"github.com/Nithin9585/ipdr-vsr/internal/middleware"
)

// Handler exposes the dashboard state machine over HTTP. The history store
// is optional; history routes answer 503 when no backend is configured.
type Handler struct {
	dashboard      *service.Dashboard
	store          history.Store
	demoSize       int
	analyzeLimiter gin.HandlerFunc
}

// New creates the IPDR API handler. store may be nil.
func New(dashboard *service.Dashboard, store history.Store) *Handler {
	return &Handler{
		dashboard: dashboard,
		store:     store,
		demoSize:  50,
		// one manual analysis burst, then roughly one every ten seconds
		analyzeLimiter: middleware.AnalyzeRateLimit(rate.Every(10*time.Second), 1),
	}
}
