package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"onlyanon/internal/accesscode"
	"onlyanon/internal/models"
	"onlyanon/internal/payment"
	"onlyanon/internal/repository"
)

const DefaultMaxQuestionLength = 2000

// QuestionService accepts paid questions and redeems access codes
type QuestionService struct {
	repo      *repository.Repository
	issuer    *accesscode.Issuer
	resolver  *accesscode.Resolver
	verifier  payment.Verifier
	maxLength int
	logger    *slog.Logger
}

// NewQuestionService creates a new QuestionService. A non-positive maxLength
// means DefaultMaxQuestionLength.
func NewQuestionService(
	repo *repository.Repository,
	issuer *accesscode.Issuer,
	resolver *accesscode.Resolver,
	verifier payment.Verifier,
	maxLength int,
	logger *slog.Logger,
) *QuestionService {
	if maxLength <= 0 {
		maxLength = DefaultMaxQuestionLength
	}
	return &QuestionService{
		repo:      repo,
		issuer:    issuer,
		resolver:  resolver,
		verifier:  verifier,
		maxLength: maxLength,
		logger:    logger,
	}
}

// SubmitQuestionInput is an anonymous asker's paid question
type SubmitQuestionInput struct {
	OfferingID       uuid.UUID
	Text             string
	PaymentSignature string
}

// SubmittedQuestion is returned to the asker exactly once. The access code is
// the only way back to the question.
type SubmittedQuestion struct {
	AccessCode string                `json:"access_code"`
	Status     models.QuestionStatus `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Submit verifies the payment for an offering and stores the question under a
// freshly issued access code.
func (s *QuestionService) Submit(ctx context.Context, input SubmitQuestionInput) (*SubmittedQuestion, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: question text is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return nil, fmt.Errorf("%w: question is limited to %d characters", ErrInvalidInput, s.maxLength)
	}
	if err := payment.ValidateSignature(input.PaymentSignature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	offering, err := s.repo.GetOffering(ctx, input.OfferingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !offering.IsActive {
		return nil, ErrOfferingInactive
	}

	used, err := s.repo.PaymentSignatureUsed(ctx, input.PaymentSignature)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrPaymentReused
	}

	receipt, err := s.verifier.VerifyPayment(ctx, payment.Proof{
		Signature: input.PaymentSignature,
		Recipient: offering.Creator.WalletAddress,
		Amount:    offering.Price,
		Token:     offering.Token,
	})
	if err != nil {
		return nil, classifyPaymentError(err)
	}

	question := &models.Question{
		OfferingID:       offering.ID,
		Text:             text,
		Status:           models.QuestionStatusPending,
		PaymentAmount:    receipt.Amount,
		PaymentToken:     receipt.Token,
		PaymentSignature: receipt.Signature,
	}

	_, err = s.issuer.IssueAndInsert(ctx, func(ctx context.Context, code string) error {
		question.ID = uuid.Nil
		question.AccessCode = code
		return s.repo.CreateQuestion(ctx, question)
	})
	if errors.Is(err, repository.ErrPaymentReused) {
		return nil, ErrPaymentReused
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store question: %w", err)
	}

	s.logger.Info("question submitted",
		"question_id", question.ID,
		"offering_id", offering.ID,
		"creator_id", offering.CreatorID,
	)

	return &SubmittedQuestion{
		AccessCode: question.AccessCode,
		Status:     question.Status,
		CreatedAt:  question.CreatedAt,
	}, nil
}

// Redeem resolves an access code to its privacy-safe projection.
// Every failure wraps accesscode.ErrNotFound.
func (s *QuestionService) Redeem(ctx context.Context, code string) (*accesscode.Projection, error) {
	return s.resolver.Redeem(ctx, code)
}

func classifyPaymentError(err error) error {
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, payment.ErrPaymentNotConfirmed),
		errors.Is(err, payment.ErrPaymentFailed),
		errors.Is(err, payment.ErrPaymentMismatch),
		errors.Is(err, payment.ErrUnsupportedToken):
		return fmt.Errorf("%w: %v", ErrPaymentRejected, err)
	}
	return fmt.Errorf("failed to verify payment: %w", err)
}
