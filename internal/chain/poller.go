package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"subsidyledger/contracts/mq"
	"subsidyledger/internal/model"
	"subsidyledger/internal/repository"
	"subsidyledger/pkg/metrics"
	"subsidyledger/pkg/outbox"
	"subsidyledger/pkg/util"
)

// Poller drains pending transaction intents: submit, wait for the receipt,
// finalize the domain rows. The API never blocks on mining; this loop owns
// all chain latency and retries.
type Poller struct {
	intents       *repository.IntentRepository
	attestations  *repository.AttestationRepository
	disbursements *repository.DisbursementRepository
	events        *repository.EventRepository
	outboxRepo    *outbox.Repository
	client        *Client
	logger        *zap.Logger

	maxRetries int
	interval   time.Duration
	batchSize  int
}

func NewPoller(
	intents *repository.IntentRepository,
	attestations *repository.AttestationRepository,
	disbursements *repository.DisbursementRepository,
	events *repository.EventRepository,
	outboxRepo *outbox.Repository,
	client *Client,
	logger *zap.Logger,
) *Poller {
	return &Poller{
		intents:       intents,
		attestations:  attestations,
		disbursements: disbursements,
		events:        events,
		outboxRepo:    outboxRepo,
		client:        client,
		logger:        logger,
		maxRetries:    5,
		interval:      2 * time.Second,
		batchSize:     20,
	}
}

// WithInterval 设置扫描间隔
func (p *Poller) WithInterval(interval time.Duration) *Poller {
	p.interval = interval
	return p
}

// WithMaxRetries 设置最大重试次数
func (p *Poller) WithMaxRetries(maxRetries int) *Poller {
	p.maxRetries = maxRetries
	return p
}

// Start 启动 Poller（在 goroutine 中运行）
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting chain intent poller",
		zap.Duration("interval", p.interval),
		zap.Int("max_retries", p.maxRetries),
		zap.Int("batch_size", p.batchSize),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Chain intent poller stopped")
			return
		case <-ticker.C:
			p.processPendingIntents(ctx)
		}
	}
}

func (p *Poller) processPendingIntents(ctx context.Context) {
	intents, err := p.intents.GetPending(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("Failed to get pending intents", zap.Error(err))
		return
	}

	for _, intent := range intents {
		p.processIntent(ctx, intent)
	}
}

func (p *Poller) processIntent(ctx context.Context, intent *model.TxIntent) {
	start := time.Now()

	hash, resumed := resumeTxHash(intent)
	if !resumed {
		tx, err := p.submitIntent(ctx, intent)
		if err != nil {
			p.failIntent(ctx, intent, err)
			return
		}
		hash = tx.Hash()

		// 先落盘 tx_hash：finalize 失败后重试只等回执，不会再提交一笔
		if err := p.intents.SetTxHash(ctx, intent.ID, hash.Hex()); err != nil {
			p.logger.Error("Failed to record submitted tx hash",
				zap.Int64("intent_id", intent.ID),
				zap.String("tx_hash", hash.Hex()),
				zap.Error(err),
			)
		}
	} else {
		p.logger.Info("Resuming intent from submitted tx",
			zap.Int64("intent_id", intent.ID),
			zap.String("tx_hash", hash.Hex()),
		)
	}

	if _, err := p.client.WaitMinedHash(ctx, hash); err != nil {
		p.failIntent(ctx, intent, err)
		return
	}

	txHash := hash.Hex()
	metrics.RecordChainTx(intent.Kind, "confirmed", time.Since(start))

	if err := p.finalizeIntent(ctx, intent, txHash); err != nil {
		// 域数据未落盘，保留 intent 待重试；tx_hash 已落盘，下个周期
		// 从回执恢复而不是重新提交
		p.failIntent(ctx, intent, err)
		return
	}

	if err := p.intents.MarkConfirmed(ctx, intent.ID, txHash); err != nil {
		p.logger.Error("Failed to mark intent confirmed",
			zap.Int64("intent_id", intent.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("Intent confirmed",
		zap.Int64("intent_id", intent.ID),
		zap.String("kind", intent.Kind),
		zap.String("tx_hash", txHash),
		zap.Duration("took", time.Since(start)),
	)
}

// resumeTxHash reports the hash of a transaction already submitted for this
// intent, if there is one. A pending intent with a tx_hash means an earlier
// cycle submitted and then fell over before MarkConfirmed.
func resumeTxHash(intent *model.TxIntent) (common.Hash, bool) {
	if intent.TxHash == nil || *intent.TxHash == "" {
		return common.Hash{}, false
	}
	return common.HexToHash(*intent.TxHash), true
}

func (p *Poller) submitIntent(ctx context.Context, intent *model.TxIntent) (*types.Transaction, error) {
	switch intent.Kind {
	case model.IntentCreateProgram:
		var args CreateProgramPayload
		if err := json.Unmarshal(intent.Payload, &args); err != nil {
			return nil, fmt.Errorf("json: bad createProgram payload: %w", err)
		}
		return p.client.CreateProgram(ctx, args.ProgramID, args.RatePerKwh)

	case model.IntentApproveProject:
		var args ApproveProjectPayload
		if err := json.Unmarshal(intent.Payload, &args); err != nil {
			return nil, fmt.Errorf("json: bad approveProject payload: %w", err)
		}
		return p.client.ApproveProject(ctx, args.ProjectID)

	case model.IntentDefineMilestone:
		var args DefineMilestonePayload
		if err := json.Unmarshal(intent.Payload, &args); err != nil {
			return nil, fmt.Errorf("json: bad defineMilestone payload: %w", err)
		}
		return p.client.DefineMilestone(ctx, MilestoneHash(args.ProgramID, args.Key), args.Amount)

	case model.IntentAttestMilestone:
		var args AttestMilestonePayload
		if err := json.Unmarshal(intent.Payload, &args); err != nil {
			return nil, fmt.Errorf("json: bad attestMilestone payload: %w", err)
		}
		return p.client.AttestMilestone(ctx,
			MilestoneHash(args.ProgramID, args.MilestoneKey),
			args.Value,
			common.HexToHash(args.DataHash),
			args.Deadline,
			args.Nonce,
			common.FromHex(args.Signature),
		)

	case model.IntentReleasePayment:
		var args ReleasePaymentPayload
		if err := json.Unmarshal(intent.Payload, &args); err != nil {
			return nil, fmt.Errorf("json: bad releasePayment payload: %w", err)
		}
		return p.client.ReleasePayment(ctx, args.ProjectID, MilestoneHash(args.ProgramID, args.MilestoneKey))

	default:
		return nil, fmt.Errorf("json: unknown intent kind %q", intent.Kind)
	}
}

// finalizeIntent writes the mined tx hash back onto the domain rows and
// appends the confirmation events. Safe to re-run for the same intent.
func (p *Poller) finalizeIntent(ctx context.Context, intent *model.TxIntent, txHash string) error {
	switch intent.Kind {
	case model.IntentAttestMilestone:
		var args AttestMilestonePayload
		if err := json.Unmarshal(intent.Payload, &args); err != nil {
			return err
		}
		if err := p.attestations.SetTxHash(ctx, args.AttestationID, txHash); err != nil {
			return err
		}
		return p.events.Insert(ctx, &model.Event{
			ProjectID: &args.ProjectID,
			Type:      model.EventAttestationConfirmed,
			Label:     fmt.Sprintf("Attestation for %s confirmed on-chain", args.MilestoneKey),
			Details: map[string]any{
				"milestoneKey": args.MilestoneKey,
				"txHash":       txHash,
			},
		})

	case model.IntentReleasePayment:
		var args ReleasePaymentPayload
		if err := json.Unmarshal(intent.Payload, &args); err != nil {
			return err
		}
		updated, err := p.disbursements.MarkReleased(ctx, args.DisbursementID, txHash)
		if err != nil {
			return err
		}
		if !updated {
			// settled elsewhere (bank rail) while the tx was in flight;
			// no event or message for a payout that did not happen here
			p.logger.Warn("Disbursement no longer queued, skipping release finalize",
				zap.Int64("disbursement_id", args.DisbursementID),
				zap.String("tx_hash", txHash),
			)
			return nil
		}
		metrics.DisbursementReleasedCount.WithLabelValues(model.RailChain).Inc()

		if err := p.events.Insert(ctx, &model.Event{
			ProjectID: &args.ProjectID,
			Type:      model.EventDisbursementReleased,
			Label:     fmt.Sprintf("Payment for %s released", args.MilestoneKey),
			Details: map[string]any{
				"milestoneKey": args.MilestoneKey,
				"amount":       args.Amount,
				"txHash":       txHash,
			},
		}); err != nil {
			return err
		}

		payload, err := json.Marshal(mq.DisbursementReleasedPayload{
			ProjectID:    args.ProjectID,
			MilestoneKey: args.MilestoneKey,
			Amount:       args.Amount,
			Rail:         model.RailChain,
			ReleasedAt:   time.Now(),
		})
		if err != nil {
			return err
		}
		return p.outboxRepo.InsertEventDirect(ctx, &outbox.Event{
			AggregateType: "disbursement",
			AggregateID:   &args.ProjectID,
			RoutingKey:    "disbursement.released",
			Payload:       payload,
			Status:        "pending",
		})

	default:
		// createProgram / approveProject / defineMilestone carry no
		// row to update; the domain event was appended at API time
		return nil
	}
}

func (p *Poller) failIntent(ctx context.Context, intent *model.TxIntent, cause error) {
	retryable, errType := util.IsRetryableError(cause)

	p.logger.Error("Intent processing failed",
		zap.Int64("intent_id", intent.ID),
		zap.String("kind", intent.Kind),
		zap.String("error_type", errType),
		zap.Bool("retryable", retryable),
		zap.Error(cause),
	)

	maxRetries := p.maxRetries
	if !retryable {
		maxRetries = 1 // 直接进入 failed
	}

	final, err := p.intents.MarkFailed(ctx, intent.ID, maxRetries, cause.Error())
	if err != nil {
		p.logger.Error("Failed to mark intent failed",
			zap.Int64("intent_id", intent.ID),
			zap.Error(err),
		)
		return
	}

	if final {
		metrics.RecordChainTx(intent.Kind, "failed", 0)
		p.recordFailureEvent(ctx, intent, errType)
	}
}

// recordFailureEvent surfaces a permanently failed chain write on the
// timeline instead of dropping it silently.
func (p *Poller) recordFailureEvent(ctx context.Context, intent *model.TxIntent, errType string) {
	var projectID *string

	switch intent.Kind {
	case model.IntentAttestMilestone:
		var args AttestMilestonePayload
		if err := json.Unmarshal(intent.Payload, &args); err == nil {
			projectID = &args.ProjectID
		}
	case model.IntentReleasePayment:
		var args ReleasePaymentPayload
		if err := json.Unmarshal(intent.Payload, &args); err == nil {
			projectID = &args.ProjectID
		}
	case model.IntentApproveProject:
		var args ApproveProjectPayload
		if err := json.Unmarshal(intent.Payload, &args); err == nil {
			projectID = &args.ProjectID
		}
	}

	if err := p.events.Insert(ctx, &model.Event{
		ProjectID: projectID,
		Type:      model.EventChainTxFailed,
		Label:     fmt.Sprintf("On-chain %s failed permanently", intent.Kind),
		Details: map[string]any{
			"intentId":  intent.ID,
			"errorType": errType,
		},
	}); err != nil {
		p.logger.Error("Failed to record failure event",
			zap.Int64("intent_id", intent.ID),
			zap.Error(err),
		)
	}
}
