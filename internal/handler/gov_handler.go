package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

// GovService is the slice of the workflow service the government dashboard
// drives: program setup, application review and release decisions.
type GovService interface {
	CreateProgram(ctx context.Context, name string, ratePerKwh *int64, unit string) (*model.Program, *model.TxIntent, error)
	DefineMilestone(ctx context.Context, programID, key, title string, amount int64, unit string) (*model.Milestone, *model.TxIntent, error)
	ApproveProject(ctx context.Context, projectID string) (*model.Project, *model.TxIntent, error)
	SuspendProject(ctx context.Context, projectID string) (*model.Project, error)
	RevokeProject(ctx context.Context, projectID string) (*model.Project, error)
	TriggerRelease(ctx context.Context, projectID, milestoneKey string) (*model.Disbursement, *model.TxIntent, error)
	Clawback(ctx context.Context, projectID, milestoneKey, reason string) (*model.Disbursement, error)
	ListPrograms(ctx context.Context) ([]model.Program, error)
	ListMilestones(ctx context.Context, programID string) ([]model.Milestone, error)
	ListProjects(ctx context.Context, status string) ([]model.Project, error)
}

type GovHandler struct {
	svc    GovService
	logger *zap.Logger
}

func NewGovHandler(svc GovService, logger *zap.Logger) *GovHandler {
	return &GovHandler{svc: svc, logger: logger}
}

type createProgramRequest struct {
	Name       string `json:"name" binding:"required"`
	RatePerKwh *int64 `json:"ratePerKwh"`
	Unit       string `json:"unit"`
}

func (h *GovHandler) CreateProgram(c *gin.Context) {
	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateProgram: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	h.logger.Info("CreateProgram request received",
		zap.String("name", req.Name),
		zap.String("client_ip", c.ClientIP()),
	)

	program, intent, err := h.svc.CreateProgram(c.Request.Context(), req.Name, req.RatePerKwh, req.Unit)
	if err != nil {
		writeError(c, h.logger, "CreateProgram", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"program": program, "chainIntent": intent})
}

func (h *GovHandler) ListPrograms(c *gin.Context) {
	programs, err := h.svc.ListPrograms(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "ListPrograms", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"programs": programs})
}

type defineMilestoneRequest struct {
	ProgramID string `json:"programId" binding:"required"`
	Key       string `json:"key" binding:"required"`
	Title     string `json:"title"`
	Amount    int64  `json:"amount" binding:"required"`
	Unit      string `json:"unit"`
}

func (h *GovHandler) DefineMilestone(c *gin.Context) {
	var req defineMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("DefineMilestone: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "programId, key and amount required"})
		return
	}

	milestone, intent, err := h.svc.DefineMilestone(c.Request.Context(),
		req.ProgramID, req.Key, req.Title, req.Amount, req.Unit)
	if err != nil {
		writeError(c, h.logger, "DefineMilestone", err)
		return
	}

	h.logger.Info("DefineMilestone: success",
		zap.String("program_id", req.ProgramID),
		zap.String("key", req.Key),
	)
	c.JSON(http.StatusCreated, gin.H{"milestone": milestone, "chainIntent": intent})
}

func (h *GovHandler) ListMilestones(c *gin.Context) {
	programID := c.Query("programId")
	if programID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "programId required"})
		return
	}

	milestones, err := h.svc.ListMilestones(c.Request.Context(), programID)
	if err != nil {
		writeError(c, h.logger, "ListMilestones", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

func (h *GovHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, h.logger, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *GovHandler) ApproveProject(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("ApproveProject request received",
		zap.String("project_id", id),
		zap.String("client_ip", c.ClientIP()),
	)

	project, intent, err := h.svc.ApproveProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "ApproveProject", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project, "chainIntent": intent})
}

func (h *GovHandler) SuspendProject(c *gin.Context) {
	id := c.Param("id")
	project, err := h.svc.SuspendProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "SuspendProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *GovHandler) RevokeProject(c *gin.Context) {
	id := c.Param("id")
	project, err := h.svc.RevokeProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "RevokeProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

type releaseRequest struct {
	ProjectID    string `json:"projectId" binding:"required"`
	MilestoneKey string `json:"milestoneKey" binding:"required"`
}

// TriggerRelease queues the payout; the response acknowledges the queued
// disbursement and the pending chain intent, not a settled payment.
func (h *GovHandler) TriggerRelease(c *gin.Context) {
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("TriggerRelease: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId and milestoneKey required"})
		return
	}

	h.logger.Info("TriggerRelease request received",
		zap.String("project_id", req.ProjectID),
		zap.String("milestone_key", req.MilestoneKey),
	)

	disbursement, intent, err := h.svc.TriggerRelease(c.Request.Context(), req.ProjectID, req.MilestoneKey)
	if err != nil {
		writeError(c, h.logger, "TriggerRelease", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"disbursement": disbursement, "chainIntent": intent})
}

type clawbackRequest struct {
	ProjectID    string `json:"projectId" binding:"required"`
	MilestoneKey string `json:"milestoneKey" binding:"required"`
	Reason       string `json:"reason"`
}

func (h *GovHandler) Clawback(c *gin.Context) {
	var req clawbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Clawback: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId and milestoneKey required"})
		return
	}

	disbursement, err := h.svc.Clawback(c.Request.Context(), req.ProjectID, req.MilestoneKey, req.Reason)
	if err != nil {
		writeError(c, h.logger, "Clawback", err)
		return
	}

	h.logger.Info("Clawback: success",
		zap.String("project_id", req.ProjectID),
		zap.String("milestone_key", req.MilestoneKey),
	)
	c.JSON(http.StatusCreated, gin.H{"disbursement": disbursement})
}
