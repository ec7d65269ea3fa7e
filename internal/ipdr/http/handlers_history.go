package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

// saveHistory snapshots the current dataset into the history store.
func (h *Handler) saveHistory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store not configured"})
		return
	}

	sessions, anomalyCount := h.dashboard.Snapshot()
	if len(sessions) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no dataset loaded"})
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	// body is optional; ignore bind errors on an empty body
	_ = c.ShouldBindJSON(&body)
	if body.Name == "" {
		body.Name = "Session " + time.Now().Format("2006-01-02 15:04:05")
	}

	entry := &domain.HistoryEntry{
		Name:         body.Name,
		SessionCount: len(sessions),
		AnomalyCount: anomalyCount,
		Sessions:     sessions,
	}
	if err := h.store.Save(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save history entry"})
		return
	}

	entry.Sessions = nil
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *Handler) listHistory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store not configured"})
		return
	}

	entries, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// loadHistory replaces the current dataset with a saved snapshot and starts
// re-analysis, same as a fresh upload.
func (h *Handler) loadHistory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store not configured"})
		return
	}

	entry, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history entry"})
		return
	}

	datasetID := h.dashboard.LoadDataset(entry.Sessions)
	if len(entry.Sessions) > 0 {
		h.dashboard.AnalyzeAsync()
	}

	c.JSON(http.StatusAccepted, gin.H{
		"dataset_id": datasetID,
		"sessions":   len(entry.Sessions),
		"analyzing":  len(entry.Sessions) > 0,
	})
}

func (h *Handler) deleteHistory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store not configured"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete history entry"})
		return
	}
	c.Status(http.StatusNoContent)
}
