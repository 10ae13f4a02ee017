package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "subsidyledger/contracts/mq"
	"subsidyledger/internal/chain"
	"subsidyledger/internal/model"
	"subsidyledger/internal/repository"
	"subsidyledger/internal/signer"
	"subsidyledger/internal/util"
	"subsidyledger/pkg/logger"
	"subsidyledger/pkg/metrics"
	"subsidyledger/pkg/outbox"
	"subsidyledger/pkg/trace"
)

var (
	// ErrValidation marks a request rejected before any write happened.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState marks an operation that conflicts with the current
	// lifecycle state of its target (e.g. releasing without an attestation).
	ErrInvalidState = errors.New("invalid state for operation")
)

// Service orchestrates the subsidy lifecycle: programs, applications,
// milestones, attestations and disbursements. Every multi-row write runs in
// one transaction together with its timeline event, outbox message and (for
// on-chain operations) the tx intent the chain poller will pick up.
type Service struct {
	db            *pgxpool.Pool
	programs      *repository.ProgramRepository
	projects      *repository.ProjectRepository
	milestones    *repository.MilestoneRepository
	attestations  *repository.AttestationRepository
	disbursements *repository.DisbursementRepository
	events        *repository.EventRepository
	intents       *repository.IntentRepository
	outboxRepo    *outbox.Repository
	auditorSigner signer.Signer
	logger        *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	programs *repository.ProgramRepository,
	projects *repository.ProjectRepository,
	milestones *repository.MilestoneRepository,
	attestations *repository.AttestationRepository,
	disbursements *repository.DisbursementRepository,
	events *repository.EventRepository,
	intents *repository.IntentRepository,
	auditorSigner signer.Signer,
	log *zap.Logger,
) *Service {
	return &Service{
		db:            db,
		programs:      programs,
		projects:      projects,
		milestones:    milestones,
		attestations:  attestations,
		disbursements: disbursements,
		events:        events,
		intents:       intents,
		outboxRepo:    outbox.NewRepository(db),
		auditorSigner: auditorSigner,
		logger:        log,
	}
}

// CreateProgram registers a subsidy program and queues the on-chain
// createProgram call. The program id is the slug of its name; a colliding
// name surfaces as a duplicate.
func (s *Service) CreateProgram(ctx context.Context, name string, ratePerKwh *int64, unit string) (*model.Program, *model.TxIntent, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	program := &model.Program{
		ID:         util.Slugify(name),
		Name:       name,
		RatePerKwh: ratePerKwh,
		Unit:       unit,
	}
	if program.ID == "" {
		return nil, nil, fmt.Errorf("%w: name has no usable characters", ErrValidation)
	}

	var rate int64
	if ratePerKwh != nil {
		rate = *ratePerKwh
	}
	intent, err := chain.NewIntent(model.IntentCreateProgram, program.ID, chain.CreateProgramPayload{
		ProgramID:  program.ID,
		RatePerKwh: rate,
	})
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.programs.InsertTx(ctx, tx, program); err != nil {
		return nil, nil, err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProgramID: &program.ID,
		Type:      model.EventProgramCreated,
		Label:     fmt.Sprintf("Program %q created", program.Name),
		Details:   map[string]any{"programId": program.ID},
	}); err != nil {
		return nil, nil, err
	}

	if err := s.intents.InsertTx(ctx, tx, intent); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Program created",
		zap.String("program_id", program.ID),
		zap.Int64("intent_id", intent.ID),
	)
	return program, intent, nil
}

// ApplyProject files a producer application against a program. The project
// starts pending; approval is a separate government action.
func (s *Service) ApplyProject(ctx context.Context, programID, name, email string) (*model.Project, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}

	project, err := s.insertProject(ctx, programID, name, email)
	if errors.Is(err, repository.ErrDuplicate) {
		// id suffix collision, not a business conflict; one more draw
		project, err = s.insertProject(ctx, programID, name, email)
	}
	if err != nil {
		return nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Project application filed",
		zap.String("project_id", project.ID),
		zap.String("program_id", programID),
	)
	return project, nil
}

func (s *Service) insertProject(ctx context.Context, programID, name, email string) (*model.Project, error) {
	project := &model.Project{
		ID:        util.Slugify(name) + "-" + util.RandSuffix(6),
		ProgramID: programID,
		Name:      name,
		Email:     email,
		Status:    model.ProjectStatusPending,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.projects.InsertTx(ctx, tx, project); err != nil {
		return nil, err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProjectID: &project.ID,
		Type:      model.EventProjectApplied,
		Label:     fmt.Sprintf("Project %q applied to program %s", project.Name, programID),
		Details:   map[string]any{"programId": programID, "email": email},
	}); err != nil {
		return nil, err
	}

	payload := mqcontracts.ProjectAppliedPayload{
		ProjectID: project.ID,
		ProgramID: programID,
		Name:      name,
		Email:     email,
		AppliedAt: time.Now(),
		TraceID:   trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "project", &project.ID, "project.applied", payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return project, nil
}

// ApproveProject flips a pending (or suspended) project to approved and
// queues the on-chain approveProject call.
func (s *Service) ApproveProject(ctx context.Context, projectID string) (*model.Project, *model.TxIntent, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if !project.CanTransition(model.ProjectStatusApproved) {
		return nil, nil, fmt.Errorf("%w: cannot approve a %s project", ErrInvalidState, project.Status)
	}

	intent, err := chain.NewIntent(model.IntentApproveProject, projectID, chain.ApproveProjectPayload{
		ProjectID: projectID,
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.transitionProject(ctx, project, model.ProjectStatusApproved, model.EventProjectApproved, intent)
	if err != nil {
		return nil, nil, err
	}
	return project, intent, nil
}

// SuspendProject pauses an approved project. Off-chain only; on-chain
// approval stands until the project is revoked or re-approved.
func (s *Service) SuspendProject(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.CanTransition(model.ProjectStatusSuspended) {
		return nil, fmt.Errorf("%w: cannot suspend a %s project", ErrInvalidState, project.Status)
	}

	if err := s.transitionProject(ctx, project, model.ProjectStatusSuspended, model.EventProjectSuspended, nil); err != nil {
		return nil, err
	}
	return project, nil
}

// RevokeProject terminates a project. Terminal; no further transitions.
func (s *Service) RevokeProject(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.CanTransition(model.ProjectStatusRevoked) {
		return nil, fmt.Errorf("%w: cannot revoke a %s project", ErrInvalidState, project.Status)
	}

	if err := s.transitionProject(ctx, project, model.ProjectStatusRevoked, model.EventProjectRevoked, nil); err != nil {
		return nil, err
	}
	return project, nil
}

// transitionProject commits the status change, its timeline event, the
// status-changed outbox message and an optional chain intent atomically.
func (s *Service) transitionProject(ctx context.Context, project *model.Project, status, eventType string, intent *model.TxIntent) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.projects.UpdateStatusTx(ctx, tx, project.ID, status); err != nil {
		return err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProjectID: &project.ID,
		Type:      eventType,
		Label:     fmt.Sprintf("Project %s", status),
		Details:   map[string]any{"from": project.Status, "to": status},
	}); err != nil {
		return err
	}

	if intent != nil {
		if err := s.intents.InsertTx(ctx, tx, intent); err != nil {
			return err
		}
	}

	payload := mqcontracts.ProjectStatusChangedPayload{
		ProjectID: project.ID,
		Status:    status,
		ChangedAt: time.Now(),
		TraceID:   trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "project", &project.ID, "project."+status, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	project.Status = status
	logger.WithTrace(ctx, s.logger).Info("Project status changed",
		zap.String("project_id", project.ID),
		zap.String("status", status),
	)
	return nil
}

// DefineMilestone attaches a quantified target to a program and queues the
// on-chain defineMilestone call. The (program, key) pair is unique.
func (s *Service) DefineMilestone(ctx context.Context, programID, key, title string, amount int64, unit string) (*model.Milestone, *model.TxIntent, error) {
	if key == "" || amount <= 0 {
		return nil, nil, fmt.Errorf("%w: key and a positive amount are required", ErrValidation)
	}

	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, nil, err
	}

	milestone := &model.Milestone{
		ProgramID: programID,
		Key:       key,
		Title:     title,
		Amount:    amount,
		Unit:      unit,
	}

	intent, err := chain.NewIntent(model.IntentDefineMilestone, programID+":"+key, chain.DefineMilestonePayload{
		ProgramID: programID,
		Key:       key,
		Amount:    amount,
	})
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.milestones.InsertTx(ctx, tx, milestone); err != nil {
		return nil, nil, err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProgramID: &programID,
		Type:      model.EventMilestoneDefined,
		Label:     fmt.Sprintf("Milestone %s defined (%d %s)", key, amount, unit),
		Details:   map[string]any{"key": key, "amount": amount, "unit": unit},
	}); err != nil {
		return nil, nil, err
	}

	if err := s.intents.InsertTx(ctx, tx, intent); err != nil {
		return nil, nil, err
	}

	payload := mqcontracts.MilestoneDefinedPayload{
		ProgramID: programID,
		Key:       key,
		Title:     title,
		Amount:    amount,
		Unit:      unit,
		DefinedAt: time.Now(),
		TraceID:   trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "milestone", &programID, "milestone.defined", payload); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return milestone, intent, nil
}

// SubmitAttestationInput carries an auditor's measured claim plus the raw
// evidence bytes the data hash commits to. Deadline and nonce come from the
// caller; both are part of the signed struct.
type SubmitAttestationInput struct {
	ProjectID    string
	MilestoneKey string
	Value        int64
	Deadline     int64 // unix seconds
	Nonce        int64
	Evidence     []byte
}

// SubmitAttestation hashes the evidence, signs the typed attestation with
// the auditor key, stores it and queues the on-chain attestMilestone call.
// At most one attestation per (project, milestone); the tx hash lands later
// when the poller confirms the transaction.
func (s *Service) SubmitAttestation(ctx context.Context, in SubmitAttestationInput) (*model.Attestation, *model.TxIntent, error) {
	if in.Value <= 0 {
		return nil, nil, fmt.Errorf("%w: value must be positive", ErrValidation)
	}
	if in.Deadline <= time.Now().Unix() {
		return nil, nil, fmt.Errorf("%w: deadline must be in the future", ErrValidation)
	}
	if in.Nonce < 0 {
		return nil, nil, fmt.Errorf("%w: nonce must not be negative", ErrValidation)
	}
	if len(in.Evidence) == 0 {
		return nil, nil, fmt.Errorf("%w: evidence file is required", ErrValidation)
	}

	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project.Status != model.ProjectStatusApproved {
		return nil, nil, fmt.Errorf("%w: project is %s, not approved", ErrInvalidState, project.Status)
	}

	milestone, err := s.milestones.FindByProgramAndKey(ctx, project.ProgramID, in.MilestoneKey)
	if err != nil {
		return nil, nil, err
	}

	sum := sha256.Sum256(in.Evidence)
	dataHash := "0x" + hex.EncodeToString(sum[:])

	sig, err := s.auditorSigner.Sign(ctx, &signer.Attestation{
		MilestoneID: chain.MilestoneHash(project.ProgramID, in.MilestoneKey),
		Value:       big.NewInt(in.Value),
		DataHash:    common.HexToHash(dataHash),
		Deadline:    big.NewInt(in.Deadline),
		Nonce:       big.NewInt(in.Nonce),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign attestation: %w", err)
	}

	attestation := &model.Attestation{
		ProjectID:    in.ProjectID,
		MilestoneKey: in.MilestoneKey,
		Value:        in.Value,
		Unit:         milestone.Unit,
		DataHash:     dataHash,
		Signer:       s.auditorSigner.Address().Hex(),
		Signature:    "0x" + hex.EncodeToString(sig),
		Nonce:        in.Nonce,
		Deadline:     in.Deadline,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.attestations.InsertTx(ctx, tx, attestation); err != nil {
		return nil, nil, err
	}

	intent, err := chain.NewIntent(model.IntentAttestMilestone, in.ProjectID, chain.AttestMilestonePayload{
		AttestationID: attestation.ID,
		ProjectID:     in.ProjectID,
		ProgramID:     project.ProgramID,
		MilestoneKey:  in.MilestoneKey,
		Value:         in.Value,
		DataHash:      dataHash,
		Deadline:      in.Deadline,
		Nonce:         in.Nonce,
		Signature:     attestation.Signature,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.intents.InsertTx(ctx, tx, intent); err != nil {
		return nil, nil, err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProjectID: &in.ProjectID,
		Type:      model.EventAttestationSubmitted,
		Label:     fmt.Sprintf("Attestation submitted for %s (%d %s)", in.MilestoneKey, in.Value, milestone.Unit),
		Details: map[string]any{
			"milestoneKey": in.MilestoneKey,
			"value":        in.Value,
			"dataHash":     dataHash,
			"signer":       attestation.Signer,
		},
	}); err != nil {
		return nil, nil, err
	}

	payload := mqcontracts.AttestationRecordedPayload{
		ProjectID:    in.ProjectID,
		MilestoneKey: in.MilestoneKey,
		Value:        in.Value,
		DataHash:     dataHash,
		Signer:       attestation.Signer,
		RecordedAt:   time.Now(),
		TraceID:      trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "attestation", &in.ProjectID, "attestation.submitted", payload); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	metrics.AttestationSubmittedCount.Inc()
	logger.WithTrace(ctx, s.logger).Info("Attestation submitted",
		zap.String("project_id", in.ProjectID),
		zap.String("milestone_key", in.MilestoneKey),
		zap.Int64("intent_id", intent.ID),
	)
	return attestation, intent, nil
}

// TriggerRelease queues a disbursement for an attested milestone and the
// on-chain releasePayment call. A second release for the same pair is a
// duplicate regardless of rail.
func (s *Service) TriggerRelease(ctx context.Context, projectID, milestoneKey string) (*model.Disbursement, *model.TxIntent, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project.Status != model.ProjectStatusApproved {
		return nil, nil, fmt.Errorf("%w: project is %s, not approved", ErrInvalidState, project.Status)
	}

	if _, err := s.attestations.FindByProjectAndKey(ctx, projectID, milestoneKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: milestone has no attestation", ErrInvalidState)
		}
		return nil, nil, err
	}

	milestone, err := s.milestones.FindByProgramAndKey(ctx, project.ProgramID, milestoneKey)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.disbursements.FindReleaseByProjectAndKey(ctx, projectID, milestoneKey); err == nil {
		return nil, nil, repository.ErrDuplicate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	disbursement := &model.Disbursement{
		ProjectID:    projectID,
		MilestoneKey: milestoneKey,
		Amount:       milestone.Amount,
		Rail:         model.RailChain,
		Status:       model.DisbursementStatusQueued,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.disbursements.InsertTx(ctx, tx, disbursement); err != nil {
		return nil, nil, err
	}

	intent, err := chain.NewIntent(model.IntentReleasePayment, chain.ReleaseIntentRef(disbursement.ID), chain.ReleasePaymentPayload{
		DisbursementID: disbursement.ID,
		ProjectID:      projectID,
		ProgramID:      project.ProgramID,
		MilestoneKey:   milestoneKey,
		Amount:         milestone.Amount,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.intents.InsertTx(ctx, tx, intent); err != nil {
		return nil, nil, err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProjectID: &projectID,
		Type:      model.EventDisbursementQueued,
		Label:     fmt.Sprintf("Disbursement queued for %s (%d)", milestoneKey, milestone.Amount),
		Details: map[string]any{
			"milestoneKey": milestoneKey,
			"amount":       milestone.Amount,
			"rail":         model.RailChain,
		},
	}); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Disbursement queued",
		zap.String("project_id", projectID),
		zap.String("milestone_key", milestoneKey),
		zap.Int64("intent_id", intent.ID),
	)
	return disbursement, intent, nil
}

// BankApprove settles a queued disbursement over the bank rail with an
// external payment reference instead of waiting for the chain.
func (s *Service) BankApprove(ctx context.Context, id int64, bankRef string) (*model.Disbursement, error) {
	if bankRef == "" {
		return nil, fmt.Errorf("%w: bankRef is required", ErrValidation)
	}

	current, err := s.disbursements.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != model.DisbursementStatusQueued {
		return nil, fmt.Errorf("%w: disbursement is %s, not queued", ErrInvalidState, current.Status)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	d, err := s.disbursements.BankApproveTx(ctx, tx, id, bankRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: disbursement no longer queued", ErrInvalidState)
		}
		return nil, err
	}

	// The queued releasePayment intent is superseded by the bank transfer.
	// It must die in the same transaction or the poller pays out twice.
	if err := s.intents.CancelPendingTx(ctx, tx, model.IntentReleasePayment, chain.ReleaseIntentRef(d.ID)); err != nil {
		return nil, err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProjectID: &d.ProjectID,
		Type:      model.EventBankApproved,
		Label:     fmt.Sprintf("Payment for %s released via bank (%s)", d.MilestoneKey, bankRef),
		Details: map[string]any{
			"milestoneKey": d.MilestoneKey,
			"amount":       d.Amount,
			"bankRef":      bankRef,
		},
	}); err != nil {
		return nil, err
	}

	payload := mqcontracts.DisbursementReleasedPayload{
		ProjectID:    d.ProjectID,
		MilestoneKey: d.MilestoneKey,
		Amount:       d.Amount,
		Rail:         model.RailBank,
		ReleasedAt:   time.Now(),
		TraceID:      trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "disbursement", &d.ProjectID, "disbursement.released", payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.DisbursementReleasedCount.WithLabelValues(model.RailBank).Inc()
	logger.WithTrace(ctx, s.logger).Info("Disbursement bank-approved",
		zap.Int64("disbursement_id", d.ID),
		zap.String("bank_ref", bankRef),
	)
	return d, nil
}

// Clawback records a negative disbursement against a released milestone.
// The released row stays; the ledger nets to zero.
func (s *Service) Clawback(ctx context.Context, projectID, milestoneKey, reason string) (*model.Disbursement, error) {
	released, err := s.disbursements.FindReleaseByProjectAndKey(ctx, projectID, milestoneKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: nothing released for this milestone", ErrInvalidState)
		}
		return nil, err
	}
	if released.Status != model.DisbursementStatusReleased {
		return nil, fmt.Errorf("%w: disbursement is %s, not released", ErrInvalidState, released.Status)
	}

	clawback := &model.Disbursement{
		ProjectID:    projectID,
		MilestoneKey: milestoneKey,
		Amount:       -released.Amount,
		Rail:         model.RailClawback,
		Status:       model.DisbursementStatusReleased,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.disbursements.InsertTx(ctx, tx, clawback); err != nil {
		return nil, err
	}

	if err := s.events.InsertTx(ctx, tx, &model.Event{
		ProjectID: &projectID,
		Type:      model.EventClawbackRecorded,
		Label:     fmt.Sprintf("Clawback recorded for %s (%d)", milestoneKey, clawback.Amount),
		Details: map[string]any{
			"milestoneKey": milestoneKey,
			"amount":       clawback.Amount,
			"reason":       reason,
		},
	}); err != nil {
		return nil, err
	}

	payload := mqcontracts.DisbursementReleasedPayload{
		ProjectID:    projectID,
		MilestoneKey: milestoneKey,
		Amount:       clawback.Amount,
		Rail:         model.RailClawback,
		ReleasedAt:   time.Now(),
		TraceID:      trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "disbursement", &projectID, "clawback.recorded", payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Clawback recorded",
		zap.String("project_id", projectID),
		zap.String("milestone_key", milestoneKey),
	)
	return clawback, nil
}

// Read passthroughs used by the role dashboards.

func (s *Service) ListPrograms(ctx context.Context) ([]model.Program, error) {
	return s.programs.List(ctx)
}

func (s *Service) ListMilestones(ctx context.Context, programID string) ([]model.Milestone, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}
	return s.milestones.ListByProgram(ctx, programID)
}

func (s *Service) ListProjects(ctx context.Context, status string) ([]model.Project, error) {
	return s.projects.List(ctx, status)
}

func (s *Service) ListQueuedDisbursements(ctx context.Context) ([]model.Disbursement, error) {
	return s.disbursements.ListQueued(ctx)
}
