package accesscode

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyanon/internal/models"
)

type fakeFinder struct {
	questions map[string]*models.Question
	lookups   []string
}

func (f *fakeFinder) FindQuestionByCode(_ context.Context, code string) (*models.Question, error) {
	f.lookups = append(f.lookups, code)
	q, ok := f.questions[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return q, nil
}

func sampleQuestion() *models.Question {
	return &models.Question{
		ID:               uuid.New(),
		OfferingID:       uuid.New(),
		AccessCode:       "AB23-CD45-EF67",
		Text:             "What is your morning routine?",
		Status:           models.QuestionStatusPending,
		PaymentAmount:    decimal.RequireFromString("0.25"),
		PaymentToken:     models.TokenSOL,
		PaymentSignature: "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
		CreatedAt:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Offering: models.Offering{
			Title: "Ask me anything",
			Price: decimal.RequireFromString("0.25"),
			Creator: models.Creator{
				ID:            7,
				WalletAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
				Handle:        "swift_falcon",
				DisplayName:   "Swift Falcon",
				AvatarURL:     "https://cdn.example.com/a.png",
			},
		},
	}
}

func TestRedeem_MalformedSkipsStore(t *testing.T) {
	finder := &fakeFinder{questions: map[string]*models.Question{}}
	resolver := NewResolver(finder)

	for _, raw := range []string{"AB23-CD45", "", "AB20-CD45-EF67", "AB23-CD45-EF67-GH"} {
		p, err := resolver.Redeem(context.Background(), raw)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrMalformedCode)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Empty(t, finder.lookups)
}

func TestRedeem_NotFound(t *testing.T) {
	finder := &fakeFinder{questions: map[string]*models.Question{}}
	resolver := NewResolver(finder)

	p, err := resolver.Redeem(context.Background(), "ZZZZ-ZZZZ-ZZZZ")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrCodeNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"ZZZZ-ZZZZ-ZZZZ"}, finder.lookups)
}

func TestRedeem_CasingAndGroupingAgnostic(t *testing.T) {
	q := sampleQuestion()
	finder := &fakeFinder{questions: map[string]*models.Question{q.AccessCode: q}}
	resolver := NewResolver(finder)

	a, err := resolver.Redeem(context.Background(), "ab23-cd45-ef67")
	require.NoError(t, err)
	b, err := resolver.Redeem(context.Background(), "AB23CD45EF67")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, []string{"AB23-CD45-EF67", "AB23-CD45-EF67"}, finder.lookups)
}

func TestRedeem_ProjectionWithoutReply(t *testing.T) {
	q := sampleQuestion()
	resolver := NewResolver(&fakeFinder{questions: map[string]*models.Question{q.AccessCode: q}})

	p, err := resolver.Redeem(context.Background(), q.AccessCode)
	require.NoError(t, err)

	assert.Equal(t, q.Text, p.Question)
	assert.Equal(t, models.QuestionStatusPending, p.Status)
	assert.Equal(t, q.CreatedAt, p.CreatedAt)
	assert.Equal(t, "Ask me anything", p.OfferingTitle)
	assert.Equal(t, "Swift Falcon", p.CreatorDisplayName)
	assert.Equal(t, "https://cdn.example.com/a.png", p.CreatorAvatarURL)
	assert.Equal(t, "swift_falcon", p.CreatorHandle)
	assert.Nil(t, p.Reply)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "reply")
	assert.Nil(t, fields["reply"])
}

func TestRedeem_ProjectionWithReply(t *testing.T) {
	q := sampleQuestion()
	q.Status = models.QuestionStatusReplied
	q.Reply = &models.Reply{
		ID:         uuid.New(),
		QuestionID: q.ID,
		Text:       "Coffee, then a long walk.",
		CreatedAt:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	resolver := NewResolver(&fakeFinder{questions: map[string]*models.Question{q.AccessCode: q}})

	p, err := resolver.Redeem(context.Background(), "ab23 cd45 ef67")
	require.NoError(t, err)
	assert.Equal(t, models.QuestionStatusReplied, p.Status)
	require.NotNil(t, p.Reply)
	assert.Equal(t, "Coffee, then a long walk.", p.Reply.Text)
	assert.Equal(t, q.Reply.CreatedAt, p.Reply.CreatedAt)
}

func TestProjection_FieldSetIsExactlyAllowed(t *testing.T) {
	q := sampleQuestion()
	q.Reply = &models.Reply{ID: uuid.New(), QuestionID: q.ID, Text: "yes"}

	raw, err := json.Marshal(Project(q))
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		"created_at",
		"creator_avatar_url",
		"creator_display_name",
		"creator_handle",
		"offering_title",
		"question",
		"reply",
		"status",
	}, keys)

	var reply map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(fields["reply"], &reply))
	assert.Len(t, reply, 2)
	assert.Contains(t, reply, "text")
	assert.Contains(t, reply, "created_at")

	body := string(raw)
	for _, secret := range []string{
		q.PaymentSignature,
		q.Offering.Creator.WalletAddress,
		q.ID.String(),
		q.OfferingID.String(),
		q.Reply.ID.String(),
		q.AccessCode,
		"0.25",
	} {
		assert.NotContains(t, body, secret)
	}
}
