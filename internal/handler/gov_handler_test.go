package handler

import (
	"bytes"
	"context"
	"encoding/json"
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

type fakeGovService struct {
	createProgramErr  error
	approveErr        error
	releaseErr        error
	defineErr         error
	lastReleaseKey    string
	lastApprovedID    string
	returnedProgram   *model.Program
	returnedIntent    *model.TxIntent
	returnedProjects  []model.Project
	returnedMilestone *model.Milestone
}

func (f *fakeGovService) CreateProgram(ctx context.Context, name string, ratePerKwh *int64, unit string) (*model.Program, *model.TxIntent, error) {
	if f.createProgramErr != nil {
		return nil, nil, f.createProgramErr
	}
	return f.returnedProgram, f.returnedIntent, nil
}

func (f *fakeGovService) DefineMilestone(ctx context.Context, programID, key, title string, amount int64, unit string) (*model.Milestone, *model.TxIntent, error) {
	if f.defineErr != nil {
		return nil, nil, f.defineErr
	}
	return f.returnedMilestone, f.returnedIntent, nil
}

func (f *fakeGovService) ApproveProject(ctx context.Context, projectID string) (*model.Project, *model.TxIntent, error) {
	if f.approveErr != nil {
		return nil, nil, f.approveErr
	}
	f.lastApprovedID = projectID
	return &model.Project{ID: projectID, Status: model.ProjectStatusApproved}, f.returnedIntent, nil
}

func (f *fakeGovService) SuspendProject(ctx context.Context, projectID string) (*model.Project, error) {
	return &model.Project{ID: projectID, Status: model.ProjectStatusSuspended}, nil
}

func (f *fakeGovService) RevokeProject(ctx context.Context, projectID string) (*model.Project, error) {
	return &model.Project{ID: projectID, Status: model.ProjectStatusRevoked}, nil
}

func (f *fakeGovService) TriggerRelease(ctx context.Context, projectID, milestoneKey string) (*model.Disbursement, *model.TxIntent, error) {
	if f.releaseErr != nil {
		return nil, nil, f.releaseErr
	}
	f.lastReleaseKey = milestoneKey
	return &model.Disbursement{
		ID:           1,
		ProjectID:    projectID,
		MilestoneKey: milestoneKey,
		Rail:         model.RailChain,
		Status:       model.DisbursementStatusQueued,
	}, f.returnedIntent, nil
}

func (f *fakeGovService) Clawback(ctx context.Context, projectID, milestoneKey, reason string) (*model.Disbursement, error) {
	return &model.Disbursement{ProjectID: projectID, MilestoneKey: milestoneKey, Rail: model.RailClawback}, nil
}

func (f *fakeGovService) ListPrograms(ctx context.Context) ([]model.Program, error) {
	return []model.Program{}, nil
}

func (f *fakeGovService) ListMilestones(ctx context.Context, programID string) ([]model.Milestone, error) {
	return []model.Milestone{}, nil
}

func (f *fakeGovService) ListProjects(ctx context.Context, status string) ([]model.Project, error) {
	return f.returnedProjects, nil
}

func newGovRouter(svc GovService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGovHandler(svc, zap.NewNop())

	r := gin.New()
	r.POST("/api/gov/programs", h.CreateProgram)
	r.POST("/api/gov/milestones", h.DefineMilestone)
	r.POST("/api/gov/projects/:id/approve", h.ApproveProject)
	r.POST("/api/gov/release", h.TriggerRelease)
	r.POST("/api/gov/clawback", h.Clawback)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProgramCreated(t *testing.T) {
	svc := &fakeGovService{
		returnedProgram: &model.Program{ID: "green-h2-pilot", Name: "Green H2 Pilot"},
		returnedIntent:  &model.TxIntent{ID: 1, Kind: model.IntentCreateProgram, Status: model.IntentStatusPending},
	}
	r := newGovRouter(svc)

	w := postJSON(t, r, "/api/gov/programs", gin.H{"name": "Green H2 Pilot"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Program     model.Program  `json:"program"`
		ChainIntent model.TxIntent `json:"chainIntent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "green-h2-pilot", resp.Program.ID)
	assert.Equal(t, model.IntentStatusPending, resp.ChainIntent.Status)
}

func TestCreateProgramMissingName(t *testing.T) {
	r := newGovRouter(&fakeGovService{})
	w := postJSON(t, r, "/api/gov/programs", gin.H{"unit": "mwh"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProgramDuplicate(t *testing.T) {
	r := newGovRouter(&fakeGovService{createProgramErr: repository.ErrDuplicate})
	w := postJSON(t, r, "/api/gov/programs", gin.H{"name": "Green H2 Pilot"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDefineMilestoneNotFoundProgram(t *testing.T) {
	r := newGovRouter(&fakeGovService{defineErr: repository.ErrNotFound})
	w := postJSON(t, r, "/api/gov/milestones", gin.H{
		"programId": "nope", "key": "q1", "amount": 1000,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApproveProjectInvalidState(t *testing.T) {
	r := newGovRouter(&fakeGovService{approveErr: workflow.ErrInvalidState})
	req := httptest.NewRequest(http.MethodPost, "/api/gov/projects/p1/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApproveProjectOK(t *testing.T) {
	svc := &fakeGovService{returnedIntent: &model.TxIntent{ID: 2, Kind: model.IntentApproveProject}}
	r := newGovRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/gov/projects/p1/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", svc.lastApprovedID)
}

// A release answers 202: the disbursement is queued and the chain write is
// an intent, not a settled fact.
func TestTriggerReleaseAccepted(t *testing.T) {
	svc := &fakeGovService{returnedIntent: &model.TxIntent{ID: 3, Kind: model.IntentReleasePayment, Status: model.IntentStatusPending}}
	r := newGovRouter(svc)

	w := postJSON(t, r, "/api/gov/release", gin.H{"projectId": "p1", "milestoneKey": "q1-500mwh"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "q1-500mwh", svc.lastReleaseKey)

	var resp struct {
		Disbursement model.Disbursement `json:"disbursement"`
		ChainIntent  model.TxIntent     `json:"chainIntent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.DisbursementStatusQueued, resp.Disbursement.Status)
	assert.Equal(t, model.IntentStatusPending, resp.ChainIntent.Status)
}

func TestTriggerReleaseSecondTimeConflicts(t *testing.T) {
	r := newGovRouter(&fakeGovService{releaseErr: repository.ErrDuplicate})
	w := postJSON(t, r, "/api/gov/release", gin.H{"projectId": "p1", "milestoneKey": "q1-500mwh"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTriggerReleaseWithoutAttestation(t *testing.T) {
	r := newGovRouter(&fakeGovService{releaseErr: workflow.ErrInvalidState})
	w := postJSON(t, r, "/api/gov/release", gin.H{"projectId": "p1", "milestoneKey": "q1-500mwh"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClawbackCreated(t *testing.T) {
	r := newGovRouter(&fakeGovService{})
	w := postJSON(t, r, "/api/gov/clawback", gin.H{"projectId": "p1", "milestoneKey": "q1-500mwh", "reason": "audit failed"})
	assert.Equal(t, http.StatusCreated, w.Code)
}
