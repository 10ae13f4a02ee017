package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"subsidyledger/internal/model"
	"subsidyledger/internal/repository"
	"subsidyledger/internal/service/workflow"
)

type fakeAuditorService struct {
	submitErr error
	lastInput workflow.SubmitAttestationInput
}

func (f *fakeAuditorService) SubmitAttestation(ctx context.Context, in workflow.SubmitAttestationInput) (*model.Attestation, *model.TxIntent, error) {
	if f.submitErr != nil {
		return nil, nil, f.submitErr
	}
	f.lastInput = in
	return &model.Attestation{
			ProjectID:    in.ProjectID,
			MilestoneKey: in.MilestoneKey,
			Value:        in.Value,
		}, &model.TxIntent{ID: 1, Kind: model.IntentAttestMilestone, Status: model.IntentStatusPending},
		nil
}

func (f *fakeAuditorService) ListProjects(ctx context.Context, status string) ([]model.Project, error) {
	return []model.Project{{ID: "p1", Status: status}}, nil
}

func newAuditorRouter(svc AuditorService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuditorHandler(svc, zap.NewNop())

	r := gin.New()
	r.POST("/api/auditor/attest", h.Attest)
	r.GET("/api/auditor/projects", h.AssignedProjects)
	return r
}

func attestForm(t *testing.T, fields map[string]string, evidence []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if evidence != nil {
		fw, err := mw.CreateFormFile("evidence", "meter-readings.csv")
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(evidence))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAttestAccepted(t *testing.T) {
	svc := &fakeAuditorService{}
	r := newAuditorRouter(svc)

	body, contentType := attestForm(t, map[string]string{
		"projectId":    "p1",
		"milestoneKey": "q1-500mwh",
		"value":        "500",
		"deadline":     "1893456000",
		"nonce":        "42",
	}, []byte("ts,kwh\n2026-01-01,500000\n"))

	req := httptest.NewRequest(http.MethodPost, "/api/auditor/attest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "p1", svc.lastInput.ProjectID)
	assert.Equal(t, int64(500), svc.lastInput.Value)
	assert.Equal(t, int64(42), svc.lastInput.Nonce)
	assert.Equal(t, []byte("ts,kwh\n2026-01-01,500000\n"), svc.lastInput.Evidence)
}

func TestAttestMissingNonce(t *testing.T) {
	r := newAuditorRouter(&fakeAuditorService{})

	body, contentType := attestForm(t, map[string]string{
		"projectId":    "p1",
		"milestoneKey": "q1-500mwh",
		"value":        "500",
		"deadline":     "1893456000",
	}, []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/auditor/attest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid nonce")
}

func TestAttestMissingEvidence(t *testing.T) {
	r := newAuditorRouter(&fakeAuditorService{})

	body, contentType := attestForm(t, map[string]string{
		"projectId":    "p1",
		"milestoneKey": "q1-500mwh",
		"value":        "500",
		"deadline":     "1893456000",
		"nonce":        "1",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auditor/attest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttestInvalidValue(t *testing.T) {
	r := newAuditorRouter(&fakeAuditorService{})

	body, contentType := attestForm(t, map[string]string{
		"projectId":    "p1",
		"milestoneKey": "q1-500mwh",
		"value":        "five hundred",
		"deadline":     "1893456000",
		"nonce":        "1",
	}, []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/auditor/attest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttestDuplicateConflicts(t *testing.T) {
	r := newAuditorRouter(&fakeAuditorService{submitErr: repository.ErrDuplicate})

	body, contentType := attestForm(t, map[string]string{
		"projectId":    "p1",
		"milestoneKey": "q1-500mwh",
		"value":        "500",
		"deadline":     "1893456000",
		"nonce":        "1",
	}, []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/auditor/attest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAttestPastDeadlineRejected(t *testing.T) {
	r := newAuditorRouter(&fakeAuditorService{
		submitErr: fmt.Errorf("%w: deadline must be in the future", workflow.ErrValidation),
	})

	body, contentType := attestForm(t, map[string]string{
		"projectId":    "p1",
		"milestoneKey": "q1-500mwh",
		"value":        "500",
		"deadline":     "1000",
		"nonce":        "1",
	}, []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/auditor/attest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignedProjects(t *testing.T) {
	r := newAuditorRouter(&fakeAuditorService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auditor/projects", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.ProjectStatusApproved)
}
