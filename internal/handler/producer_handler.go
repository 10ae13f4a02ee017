package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

// ProducerService is the slice of the workflow service producers use.
type ProducerService interface {
	ApplyProject(ctx context.Context, programID, name, email string) (*model.Project, error)
	ListProjects(ctx context.Context, status string) ([]model.Project, error)
}

type ProducerHandler struct {
	svc    ProducerService
	logger *zap.Logger
}

func NewProducerHandler(svc ProducerService, logger *zap.Logger) *ProducerHandler {
	return &ProducerHandler{svc: svc, logger: logger}
}

type applyRequest struct {
	Program string `json:"program" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// Apply files an application under the authenticated producer's email. The
// email comes from the token, never from the request body.
func (h *ProducerHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Apply: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "program and name required"})
		return
	}

	email := c.GetString("email")
	h.logger.Info("Apply request received",
		zap.String("program_id", req.Program),
		zap.String("email", email),
		zap.String("client_ip", c.ClientIP()),
	)

	project, err := h.svc.ApplyProject(c.Request.Context(), req.Program, req.Name, email)
	if err != nil {
		writeError(c, h.logger, "Apply", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// MyProjects lists the caller's own applications.
func (h *ProducerHandler) MyProjects(c *gin.Context) {
	email := c.GetString("email")

	projects, err := h.svc.ListProjects(c.Request.Context(), "")
	if err != nil {
		writeError(c, h.logger, "MyProjects", err)
		return
	}

	mine := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if p.Email == email {
			mine = append(mine, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{"projects": mine})
}
