package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/ingest"
)

// uploadDataset replaces the current dataset from a multipart CSV upload and
// starts background analysis over the new sessions.
func (h *Handler) uploadDataset(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing csv file field 'file'"})
		return
	}
	defer file.Close()

	sessions, err := ingest.LoadCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	datasetID := h.dashboard.LoadDataset(sessions)
	if len(sessions) > 0 {
		h.dashboard.AnalyzeAsync()
	}

	c.JSON(http.StatusAccepted, gin.H{
		"dataset_id": datasetID,
		"sessions":   len(sessions),
		"analyzing":  len(sessions) > 0,
	})
}

func (h *Handler) loadDemoDataset(c *gin.Context) {
	sessions := ingest.GenerateDemoSessions(h.demoSize)
	datasetID := h.dashboard.LoadDataset(sessions)
	h.dashboard.AnalyzeAsync()

	c.JSON(http.StatusAccepted, gin.H{
		"dataset_id": datasetID,
		"sessions":   len(sessions),
		"analyzing":  true,
	})
}

func (h *Handler) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.dashboard.Sessions()})
}

func (h *Handler) getGraph(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Graph())
}

func (h *Handler) getStatus(c *gin.Context) {
	status, analyzing := h.dashboard.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"analyzing": analyzing,
		"stats":     h.dashboard.Stats(),
		"filters":   h.dashboard.Filters(),
	})
}

func (h *Handler) setFilters(c *gin.Context) {
	var state domain.FilterState
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter state"})
		return
	}
	h.dashboard.SetFilters(state)
	c.JSON(http.StatusOK, gin.H{"filters": state, "stats": h.dashboard.Stats()})
}

func (h *Handler) resetFilters(c *gin.Context) {
	h.dashboard.ResetFilters()
	c.JSON(http.StatusOK, gin.H{"filters": h.dashboard.Filters()})
}

// analyze manually re-runs detection over the whole current dataset. The
// response reports whether the deterministic fallback stood in for the
// remote boundary; that is informational, never a failure.
func (h *Handler) analyze(c *gin.Context) {
	summary, err := h.dashboard.Analyze(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoDataset):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no dataset loaded"})
		case errors.Is(err, domain.ErrAnalysisInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "analysis already in progress"})
		case errors.Is(err, domain.ErrStaleAnalysis):
			c.JSON(http.StatusConflict, gin.H{"error": "dataset replaced during analysis, re-analysis started"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) selectNode(c *gin.Context) {
	id := c.Param("id")
	if err := h.dashboard.SelectNode(id); err != nil {
		if errors.Is(err, domain.ErrNodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "node not found in current graph"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "selection failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": id})
}

func (h *Handler) getSelection(c *gin.Context) {
	node, links := h.dashboard.Selection()
	if node == nil {
		c.JSON(http.StatusOK, gin.H{"node": nil, "links": []domain.Link{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node, "links": links})
}

func (h *Handler) clearSelection(c *gin.Context) {
	h.dashboard.ClearSelection()
	c.Status(http.StatusNoContent)
}
