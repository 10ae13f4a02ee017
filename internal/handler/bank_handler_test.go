package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
	"subsidyledger/internal/service/workflow"
)

type fakeBankService struct {
	approveErr  error
	lastID      int64
	lastBankRef string
}

func (f *fakeBankService) ListQueuedDisbursements(ctx context.Context) ([]model.Disbursement, error) {
	return []model.Disbursement{
		{ID: 1, ProjectID: "p1", MilestoneKey: "q1-500mwh", Status: model.DisbursementStatusQueued},
	}, nil
}

func (f *fakeBankService) BankApprove(ctx context.Context, id int64, bankRef string) (*model.Disbursement, error) {
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	f.lastID = id
	f.lastBankRef = bankRef
	return &model.Disbursement{
		ID:      id,
		Rail:    model.RailBank,
		BankRef: &bankRef,
		Status:  model.DisbursementStatusReleased,
	}, nil
}

func newBankRouter(svc BankService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBankHandler(svc, zap.NewNop())

	r := gin.New()
	r.GET("/api/bank/queue", h.Queue)
	r.POST("/api/bank/approve", h.Approve)
	return r
}

func TestBankQueue(t *testing.T) {
	r := newBankRouter(&fakeBankService{})

	req := httptest.NewRequest(http.MethodGet, "/api/bank/queue", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "q1-500mwh")
}

func TestBankApproveOK(t *testing.T) {
	svc := &fakeBankService{}
	r := newBankRouter(svc)

	w := postJSON(t, r, "/api/bank/approve", gin.H{"disbursementId": 1, "bankRef": "SEPA-2026-0001"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), svc.lastID)
	assert.Equal(t, "SEPA-2026-0001", svc.lastBankRef)
}

func TestBankApproveMissingRef(t *testing.T) {
	r := newBankRouter(&fakeBankService{})
	w := postJSON(t, r, "/api/bank/approve", gin.H{"disbursementId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBankApproveNotQueued(t *testing.T) {
	r := newBankRouter(&fakeBankService{approveErr: workflow.ErrInvalidState})
	w := postJSON(t, r, "/api/bank/approve", gin.H{"disbursementId": 1, "bankRef": "SEPA-2026-0001"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
