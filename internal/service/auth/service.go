package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	mqcontracts "subsidyledger/contracts/mq"
	"subsidyledger/internal/config"
	"subsidyledger/internal/service/otp"
	"subsidyledger/pkg/logger"
	"subsidyledger/pkg/metrics"
	"subsidyledger/pkg/outbox"
	"subsidyledger/pkg/rbac"
	"subsidyledger/pkg/trace"
	"subsidyledger/pkg/util"
)

var (
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownRole        = errors.New("unknown role")
)

type Service struct {
	otpStore    otp.Store
	db          *pgxpool.Pool
	outboxRepo  *outbox.Repository
	staticUsers []config.StaticUser
	jwtSecret   string
	otpTTL      time.Duration
	logger      *zap.Logger
}

func NewService(
	otpStore otp.Store,
	db *pgxpool.Pool,
	staticUsers []config.StaticUser,
	jwtSecret string,
	otpTTL time.Duration,
	log *zap.Logger,
) *Service {
	return &Service{
		otpStore:    otpStore,
		db:          db,
		outboxRepo:  outbox.NewRepository(db),
		staticUsers: staticUsers,
		jwtSecret:   jwtSecret,
		otpTTL:      otpTTL,
		logger:      log,
	}
}

// RequestOTP issues a fresh code for the email, overwriting any prior code,
// and queues the delivery mail through the outbox.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}

	if err := s.otpStore.Set(ctx, email, code, s.otpTTL); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	payload := mqcontracts.OTPRequestedPayload{
		Email:       email,
		Code:        code,
		RequestedAt: time.Now(),
		TraceID:     trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, "otp", &email, "otp.requested", payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.OTPIssuedCount.Inc()
	logger.WithTrace(ctx, s.logger).Info("OTP issued", zap.String("email", email))
	return nil
}

// VerifyOTP consumes the code and mints a JWT. A verified code is accepted
// exactly once; role defaults to "user" when the caller omits it.
func (s *Service) VerifyOTP(ctx context.Context, email, code, role string) (string, error) {
	ok, err := s.otpStore.Verify(ctx, email, code)
	if err != nil {
		return "", err
	}
	if !ok {
		metrics.OTPVerifiedCount.WithLabelValues("rejected").Inc()
		return "", ErrInvalidOTP
	}

	if role == "" {
		role = rbac.RoleUser
	}
	if !rbac.KnownRole(role) {
		return "", ErrUnknownRole
	}

	token, err := util.GenerateJWT(email, role, s.jwtSecret)
	if err != nil {
		return "", err
	}

	metrics.OTPVerifiedCount.WithLabelValues("ok").Inc()
	return token, nil
}

// StaticLogin checks a configured static account (demo/backup login path).
func (s *Service) StaticLogin(ctx context.Context, email, password, role string) (string, error) {
	for _, u := range s.staticUsers {
		if u.Email != email || u.Role != role {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
		return util.GenerateJWT(email, role, s.jwtSecret)
	}
	return "", ErrInvalidCredentials
}
