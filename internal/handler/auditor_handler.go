package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
	"subsidyledger/internal/service/workflow"
)

// AuditorService is the slice of the workflow service auditors use.
type AuditorService interface {
	SubmitAttestation(ctx context.Context, in workflow.SubmitAttestationInput) (*model.Attestation, *model.TxIntent, error)
	ListProjects(ctx context.Context, status string) ([]model.Project, error)
}

type AuditorHandler struct {
	svc    AuditorService
	logger *zap.Logger
}

func NewAuditorHandler(svc AuditorService, logger *zap.Logger) *AuditorHandler {
	return &AuditorHandler{svc: svc, logger: logger}
}

// evidence uploads are capped; hashes commit to the bytes, not the file name
const maxEvidenceBytes = 10 << 20

// Attest takes a multipart form: projectId, milestoneKey, value, deadline,
// nonce and an evidence file. It answers 202: the attestation row exists,
// the on-chain write is queued behind it.
func (h *AuditorHandler) Attest(c *gin.Context) {
	projectID := c.PostForm("projectId")
	milestoneKey := c.PostForm("milestoneKey")
	if projectID == "" || milestoneKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId and milestoneKey required"})
		return
	}

	value, err := strconv.ParseInt(c.PostForm("value"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value"})
		return
	}

	deadline, err := strconv.ParseInt(c.PostForm("deadline"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
		return
	}

	// the nonce is the caller's replay guard; it goes into the signed struct
	nonce, err := strconv.ParseInt(c.PostForm("nonce"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid nonce"})
		return
	}

	fileHeader, err := c.FormFile("evidence")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "evidence file required"})
		return
	}
	if fileHeader.Size > maxEvidenceBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "evidence file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Attest: failed to open evidence upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read evidence"})
		return
	}
	defer file.Close()

	evidence, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Attest: failed to read evidence upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read evidence"})
		return
	}

	h.logger.Info("Attest request received",
		zap.String("project_id", projectID),
		zap.String("milestone_key", milestoneKey),
		zap.Int64("value", value),
		zap.Int("evidence_bytes", len(evidence)),
	)

	attestation, intent, err := h.svc.SubmitAttestation(c.Request.Context(), workflow.SubmitAttestationInput{
		ProjectID:    projectID,
		MilestoneKey: milestoneKey,
		Value:        value,
		Deadline:     deadline,
		Nonce:        nonce,
		Evidence:     evidence,
	})
	if err != nil {
		writeError(c, h.logger, "Attest", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"attestation": attestation, "chainIntent": intent})
}

// AssignedProjects lists approved projects awaiting audit work.
func (h *AuditorHandler) AssignedProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), model.ProjectStatusApproved)
	if err != nil {
		writeError(c, h.logger, "AssignedProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
