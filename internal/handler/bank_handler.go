package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
)

// BankService is the slice of the workflow service the bank console uses.
type BankService interface {
	ListQueuedDisbursements(ctx context.Context) ([]model.Disbursement, error)
	BankApprove(ctx context.Context, id int64, bankRef string) (*model.Disbursement, error)
}

type BankHandler struct {
	svc    BankService
	logger *zap.Logger
}

func NewBankHandler(svc BankService, logger *zap.Logger) *BankHandler {
	return &BankHandler{svc: svc, logger: logger}
}

func (h *BankHandler) Queue(c *gin.Context) {
	disbursements, err := h.svc.ListQueuedDisbursements(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "Queue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disbursements": disbursements})
}

type bankApproveRequest struct {
	DisbursementID int64  `json:"disbursementId" binding:"required"`
	BankRef        string `json:"bankRef" binding:"required"`
}

func (h *BankHandler) Approve(c *gin.Context) {
	var req bankApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Approve: invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "disbursementId and bankRef required"})
		return
	}

	h.logger.Info("Bank approve request received",
		zap.Int64("disbursement_id", req.DisbursementID),
		zap.String("bank_ref", req.BankRef),
		zap.String("client_ip", c.ClientIP()),
	)

	disbursement, err := h.svc.BankApprove(c.Request.Context(), req.DisbursementID, req.BankRef)
	if err != nil {
		writeError(c, h.logger, "Approve", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"disbursement": disbursement})
}
