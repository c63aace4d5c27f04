package accesscode

import (
	"context"
	"time"

	"onlyanon/internal/models"
)

// Finder loads a question by canonical code together with its offering, the
// offering's creator and the reply, if any. It returns ErrCodeNotFound when
// no question holds the code.
type Finder interface {
	FindQuestionByCode(ctx context.Context, code string) (*models.Question, error)
}

// Projection is everything a code holder may see. It must not carry
// payment data and no internal identifiers.
type Projection struct {
	Question           string                `json:"question"`
	Status             models.QuestionStatus `json:"status"`
	CreatedAt          time.Time             `json:"created_at"`
	OfferingTitle      string                `json:"offering_title"`
	CreatorDisplayName string                `json:"creator_display_name"`
	CreatorAvatarURL   string                `json:"creator_avatar_url"`
	CreatorHandle      string                `json:"creator_handle"`
	Reply              *ReplyProjection      `json:"reply"`
}

type ReplyProjection struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Project builds the redeemable view of q
func Project(q *models.Question) *Projection {
	p := &Projection{
		Question:           q.Text,
		Status:             q.Status,
		CreatedAt:          q.CreatedAt,
		OfferingTitle:      q.Offering.Title,
		CreatorDisplayName: q.Offering.Creator.DisplayName,
		CreatorAvatarURL:   q.Offering.Creator.AvatarURL,
		CreatorHandle:      q.Offering.Creator.Handle,
	}
	if q.Reply != nil {
		p.Reply = &ReplyProjection{
			Text:      q.Reply.Text,
			CreatedAt: q.Reply.CreatedAt,
		}
	}
	return p
}

// Resolver redeems user-typed codes
type Resolver struct {
	finder Finder
}

func NewResolver(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// Redeem looks up the question for raw, which may use any casing or grouping.
// Malformed input fails with ErrMalformedCode before the store is touched.
func (r *Resolver) Redeem(ctx context.Context, raw string) (*Projection, error) {
	code, err := Canonical(raw)
	if err != nil {
		return nil, err
	}

	q, err := r.finder.FindQuestionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return Project(q), nil
}
