package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/Nithin9585/ipdr-vsr/internal/api/http"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/history"
	ipdrhttp "github.com/Nithin9585/ipdr-vsr/internal/ipdr/http"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/service"
	"github.com/Nithin9585/ipdr-vsr/internal/middleware"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	APIKey       string
	CORSOrigins  []string
	Dashboard    *service.Dashboard
	HistoryStore history.Store
	Redis        *redis.Client
	DB           *sql.DB
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())
	api.Use(middleware.APIKeyMiddleware(dep.APIKey))

	handler := ipdrhttp.New(dep.Dashboard, dep.HistoryStore)
	handler.Register(api)

	return r
}
