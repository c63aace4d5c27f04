package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"onlyanon/internal/models"
	"onlyanon/internal/repository"
)

const (
	maxReplyLength   = 10000
	defaultInboxSize = 50
	maxInboxSize     = 100
)

// ReplyService serves a creator's inbox
type ReplyService struct {
	repo *repository.Repository
}

// NewReplyService creates a new ReplyService
func NewReplyService(repo *repository.Repository) *ReplyService {
	return &ReplyService{repo: repo}
}

// InboxItem is a question as its creator sees it. The access code is never
// shown to the creator.
type InboxItem struct {
	ID            uuid.UUID             `json:"id"`
	OfferingID    uuid.UUID             `json:"offering_id"`
	OfferingTitle string                `json:"offering_title"`
	Text          string                `json:"text"`
	Status        models.QuestionStatus `json:"status"`
	PaymentAmount decimal.Decimal       `json:"payment_amount"`
	PaymentToken  string                `json:"payment_token"`
	CreatedAt     time.Time             `json:"created_at"`
	RepliedAt     *time.Time            `json:"replied_at"`
	Reply         *InboxReply           `json:"reply"`
}

type InboxReply struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Inbox lists questions addressed to the creator, oldest first.
// An empty status lists every status.
func (s *ReplyService) Inbox(ctx context.Context, creatorID uint, status string, limit, offset int) ([]InboxItem, error) {
	st := models.QuestionStatus(strings.ToLower(status))
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if limit <= 0 {
		limit = defaultInboxSize
	}
	if limit > maxInboxSize {
		limit = maxInboxSize
	}
	if offset < 0 {
		offset = 0
	}

	questions, err := s.repo.ListQuestionsForCreator(ctx, creatorID, st, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]InboxItem, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		item := InboxItem{
			ID:            q.ID,
			OfferingID:    q.OfferingID,
			OfferingTitle: q.Offering.Title,
			Text:          q.Text,
			Status:        q.Status,
			PaymentAmount: q.PaymentAmount,
			PaymentToken:  q.PaymentToken,
			CreatedAt:     q.CreatedAt,
			RepliedAt:     q.RepliedAt,
		}
		if q.Reply != nil {
			item.Reply = &InboxReply{Text: q.Reply.Text, CreatedAt: q.Reply.CreatedAt}
		}
		items = append(items, item)
	}
	return items, nil
}

// Reply answers a pending question owned by the creator. A question takes
// exactly one reply.
func (s *ReplyService) Reply(ctx context.Context, creatorID uint, questionID uuid.UUID, text string) (*models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: reply text is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > maxReplyLength {
		return nil, fmt.Errorf("%w: reply is limited to %d characters", ErrInvalidInput, maxReplyLength)
	}

	question, err := s.repo.GetQuestion(ctx, questionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if question.Offering.CreatorID != creatorID {
		return nil, ErrForbidden
	}
	if !question.Status.CanTransitionTo(models.QuestionStatusReplied) {
		return nil, ErrAlreadyReplied
	}

	reply, err := s.repo.ReplyToQuestion(ctx, questionID, text)
	if errors.Is(err, repository.ErrQuestionNotPending) {
		return nil, ErrAlreadyReplied
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save reply: %w", err)
	}
	return reply, nil
}
