package timeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"subsidyledger/internal/model"
	"subsidyledger/internal/repository"
)

// ProjectView is the public explorer page for a single project: its program
// context, all recorded facts and the merged audit timeline.
type ProjectView struct {
	Project       *model.Project       `json:"project"`
	Program       *model.Program       `json:"program"`
	Milestones    []model.Milestone    `json:"milestones"`
	Attestations  []model.Attestation  `json:"attestations"`
	Disbursements []model.Disbursement `json:"disbursements"`
	Timeline      []model.Event        `json:"timeline"`
}

// Service assembles read-only explorer views. No auth; everything it
// returns is already public record.
type Service struct {
	programs      *repository.ProgramRepository
	projects      *repository.ProjectRepository
	milestones    *repository.MilestoneRepository
	attestations  *repository.AttestationRepository
	disbursements *repository.DisbursementRepository
	events        *repository.EventRepository
	logger        *zap.Logger
}

func NewService(
	programs *repository.ProgramRepository,
	projects *repository.ProjectRepository,
	milestones *repository.MilestoneRepository,
	attestations *repository.AttestationRepository,
	disbursements *repository.DisbursementRepository,
	events *repository.EventRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		programs:      programs,
		projects:      projects,
		milestones:    milestones,
		attestations:  attestations,
		disbursements: disbursements,
		events:        events,
		logger:        log,
	}
}

// GetProject builds the full explorer view. The timeline interleaves
// project-level events with program-level ones (program creation, milestone
// definitions) so the page reads as one history.
func (s *Service) GetProject(ctx context.Context, projectID string) (*ProjectView, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	program, err := s.programs.FindByID(ctx, project.ProgramID)
	if err != nil {
		return nil, err
	}

	milestones, err := s.milestones.ListByProgram(ctx, project.ProgramID)
	if err != nil {
		return nil, err
	}

	attestations, err := s.attestations.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	disbursements, err := s.disbursements.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListForProject(ctx, projectID, project.ProgramID)
	if err != nil {
		return nil, err
	}

	return &ProjectView{
		Project:       project,
		Program:       program,
		Milestones:    milestones,
		Attestations:  attestations,
		Disbursements: disbursements,
		Timeline:      MergeTimeline(events),
	}, nil
}

// ListProjects returns the explorer index, optionally filtered by status.
func (s *Service) ListProjects(ctx context.Context, status string) ([]model.Project, error) {
	return s.projects.List(ctx, status)
}

// MergeTimeline re-sorts events by timestamp then insertion id. The store
// query already orders this way; the re-sort keeps the invariant when events
// come from more than one query.
func MergeTimeline(events []model.Event) []model.Event {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TS.Equal(events[j].TS) {
			return events[i].ID < events[j].ID
		}
		return events[i].TS.Before(events[j].TS)
	})
	return events
}
