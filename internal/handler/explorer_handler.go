package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
	"subsidyledger/internal/service/timeline"
)

// ExplorerService serves the public read side: project listings and the
// merged per-project timeline.
type ExplorerService interface {
	ListProjects(ctx context.Context, status string) ([]model.Project, error)
	GetProject(ctx context.Context, projectID string) (*timeline.ProjectView, error)
}

type ExplorerHandler struct {
	svc    ExplorerService
	logger *zap.Logger
}

func NewExplorerHandler(svc ExplorerService, logger *zap.Logger) *ExplorerHandler {
	return &ExplorerHandler{svc: svc, logger: logger}
}

func (h *ExplorerHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, h.logger, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ExplorerHandler) GetProject(c *gin.Context) {
	id := c.Param("id")

	view, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "GetProject", err)
		return
	}

	c.JSON(http.StatusOK, view)
}
