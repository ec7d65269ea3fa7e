package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/datasets", h.uploadDataset)
	rg.POST("/datasets/demo", h.loadDemoDataset)

	rg.GET("/sessions", h.listSessions)
	rg.GET("/graph", h.getGraph)
	rg.GET("/status", h.getStatus)

	rg.PUT("/filters", h.setFilters)
	rg.DELETE("/filters", h.resetFilters)

	rg.POST("/analyze", h.analyzeLimiter, h.analyze)

	rg.PUT("/selection/:id", h.selectNode)
	rg.GET("/selection", h.getSelection)
	rg.DELETE("/selection", h.clearSelection)

	rg.POST("/history", h.saveHistory)
	rg.GET("/history", h.listHistory)
	rg.POST("/history/:id/load", h.loadHistory)
	rg.DELETE("/history/:id", h.deleteHistory)
}
