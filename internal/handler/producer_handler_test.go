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
)

type fakeProducerService struct {
	applyErr  error
	lastEmail string
	projects  []model.Project
}

func (f *fakeProducerService) ApplyProject(ctx context.Context, programID, name, email string) (*model.Project, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.lastEmail = email
	return &model.Project{
		ID:        "coastal-electrolysis-a1b2c3",
		ProgramID: programID,
		Name:      name,
		Email:     email,
		Status:    model.ProjectStatusPending,
	}, nil
}

func (f *fakeProducerService) ListProjects(ctx context.Context, status string) ([]model.Project, error) {
	return f.projects, nil
}

// newProducerRouter injects the email claim the way AuthMiddleware would.
func newProducerRouter(svc ProducerService, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProducerHandler(svc, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("email", email)
		c.Next()
	})
	r.POST("/api/producer/apply", h.Apply)
	r.GET("/api/producer/projects", h.MyProjects)
	return r
}

func TestApplyUsesTokenEmail(t *testing.T) {
	svc := &fakeProducerService{}
	r := newProducerRouter(svc, "producer@example.com")

	// the body cannot override the authenticated email
	raw, _ := json.Marshal(gin.H{"program": "green-h2-pilot", "name": "Coastal Electrolysis", "email": "spoof@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/producer/apply", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "producer@example.com", svc.lastEmail)
}

func TestApplyUnknownProgram(t *testing.T) {
	r := newProducerRouter(&fakeProducerService{applyErr: repository.ErrNotFound}, "producer@example.com")
	w := postJSON(t, r, "/api/producer/apply", gin.H{"program": "nope", "name": "Coastal Electrolysis"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMyProjectsFiltersByEmail(t *testing.T) {
	svc := &fakeProducerService{projects: []model.Project{
		{ID: "a", Email: "producer@example.com"},
		{ID: "b", Email: "someone-else@example.com"},
		{ID: "c", Email: "producer@example.com"},
	}}
	r := newProducerRouter(svc, "producer@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/producer/projects", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Projects []model.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Projects, 2)
	assert.Equal(t, "a", resp.Projects[0].ID)
	assert.Equal(t, "c", resp.Projects[1].ID)
}
