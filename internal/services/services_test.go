package services

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"onlyanon/internal/accesscode"
	"onlyanon/internal/auth"
	"onlyanon/internal/models"
	"onlyanon/internal/payment"
	"onlyanon/internal/repository"
	"onlyanon/internal/testutil"
)

// fakeVerifier records proofs and returns a canned result
type fakeVerifier struct {
	err    error
	proofs []payment.Proof
}

func (f *fakeVerifier) VerifyPayment(_ context.Context, proof payment.Proof) (*payment.Receipt, error) {
	f.proofs = append(f.proofs, proof)
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Receipt{Signature: proof.Signature, Amount: proof.Amount, Token: proof.Token}, nil
}

type testEnv struct {
	db        *gorm.DB
	repo      *repository.Repository
	verifier  *fakeVerifier
	questions *QuestionService
	replies   *ReplyService
	creators  *CreatorService
	offerings *OfferingService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestEnv(t *testing.T, opts ...accesscode.IssuerOption) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	verifier := &fakeVerifier{}
	issuer := accesscode.NewIssuer(repo, append([]accesscode.IssuerOption{accesscode.WithLogger(discardLogger())}, opts...)...)

	return &testEnv{
		db:        db,
		repo:      repo,
		verifier:  verifier,
		questions: NewQuestionService(repo, issuer, accesscode.NewResolver(repo), verifier, 50, discardLogger()),
		replies:   NewReplyService(repo),
		creators:  NewCreatorService(repo),
		offerings: NewOfferingService(repo),
	}
}

func newSignature(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 64)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return base58.Encode(raw)
}

func (e *testEnv) submit(t *testing.T, offering *models.Offering, text string) *SubmittedQuestion {
	t.Helper()
	submitted, err := e.questions.Submit(context.Background(), SubmitQuestionInput{
		OfferingID:       offering.ID,
		Text:             text,
		PaymentSignature: newSignature(t),
	})
	require.NoError(t, err)
	return submitted
}

func TestQuestionService_SubmitAndRedeem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := testutil.SeedCreator(t, env.db, "swift_falcon", "wallet-1")
	offering := testutil.SeedOffering(t, env.db, creator, "Ask me anything", "0.25")

	submitted := env.submit(t, offering, "  What do you eat for breakfast?  ")
	assert.True(t, accesscode.Validate(submitted.AccessCode))
	assert.Equal(t, accesscode.Format(accesscode.Normalize(submitted.AccessCode)), submitted.AccessCode)
	assert.Equal(t, models.QuestionStatusPending, submitted.Status)

	require.Len(t, env.verifier.proofs, 1)
	proof := env.verifier.proofs[0]
	assert.Equal(t, "wallet-1", proof.Recipient)
	assert.True(t, proof.Amount.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, models.TokenSOL, proof.Token)

	projection, err := env.questions.Redeem(ctx, submitted.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, "What do you eat for breakfast?", projection.Question)
	assert.Equal(t, models.QuestionStatusPending, projection.Status)
	assert.Equal(t, "Ask me anything", projection.OfferingTitle)
	assert.Equal(t, "swift_falcon", projection.CreatorHandle)
	assert.Nil(t, projection.Reply)
}

func TestQuestionService_RedeemAfterReply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := testutil.SeedCreator(t, env.db, "swift_falcon", "wallet-1")
	offering := testutil.SeedOffering(t, env.db, creator, "Ask me anything", "0.25")
	submitted := env.submit(t, offering, "Cats or dogs?")

	inbox, err := env.replies.Inbox(ctx, creator.ID, "pending", 0, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	_, err = env.replies.Reply(ctx, creator.ID, inbox[0].ID, "Cats.")
	require.NoError(t, err)

	// redemption is casing and separator agnostic
	lower := accesscode.Normalize(submitted.AccessCode)
	projection, err := env.questions.Redeem(ctx, " "+strings.ToLower(lower)+" ")
	require.NoError(t, err)
	assert.Equal(t, models.QuestionStatusReplied, projection.Status)
	require.NotNil(t, projection.Reply)
	assert.Equal(t, "Cats.", projection.Reply.Text)

	// idempotent
	again, err := env.questions.Redeem(ctx, submitted.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, projection, again)
}

func TestQuestionService_RedeemFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.questions.Redeem(ctx, "not-a-code")
	assert.ErrorIs(t, err, accesscode.ErrNotFound)

	_, err = env.questions.Redeem(ctx, "AB23-CD45-EF67")
	assert.ErrorIs(t, err, accesscode.ErrNotFound)
}

func TestQuestionService_SubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := testutil.SeedCreator(t, env.db, "swift_falcon", "wallet-1")
	offering := testutil.SeedOffering(t, env.db, creator, "Ask me anything", "0.25")

	tests := []struct {
		name  string
		input SubmitQuestionInput
		want  error
	}{
		{"empty text", SubmitQuestionInput{OfferingID: offering.ID, Text: "   ", PaymentSignature: newSignature(t)}, ErrInvalidInput},
		{"too long", SubmitQuestionInput{OfferingID: offering.ID, Text: strings.Repeat("a", 51), PaymentSignature: newSignature(t)}, ErrInvalidInput},
		{"bad signature", SubmitQuestionInput{OfferingID: offering.ID, Text: "hi", PaymentSignature: "0OIl"}, ErrInvalidInput},
		{"unknown offering", SubmitQuestionInput{OfferingID: uuid.New(), Text: "hi", PaymentSignature: newSignature(t)}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.questions.Submit(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, env.verifier.proofs, "payment is verified only for valid input")
}

func TestQuestionService_SubmitInactiveOffering(t *testing.T) {
	env := newTestEnv(t)
	creator := testutil.SeedCreator(t, env.db, "swift_falcon", "wallet-1")
	offering := testutil.SeedOffering(t, env.db, creator, "Ask me anything", "0.25")
	require.NoError(t, env.offerings.Deactivate(context.Background(), creator.ID, offering.ID))

	_, err := env.questions.Submit(context.Background(), SubmitQuestionInput{
		OfferingID: offering.ID, Text: "hi", PaymentSignature: newSignature(t),
	})
	assert.ErrorIs(t, err, ErrOfferingInactive)
}

func TestQuestionService_PaymentErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := testutil.SeedCreator(t, env.db, "swift_falcon", "wallet-1")
	offering := testutil.SeedOffering(t, env.db, creator, "Ask me anything", "0.25")

	env.verifier.err = payment.ErrPaymentMismatch
	_, err := env.questions.Submit(ctx, SubmitQuestionInput{OfferingID: offering.ID, Text: "hi", PaymentSignature: newSignature(t)})
	assert.ErrorIs(t, err, ErrPaymentRejected)

	env.verifier.err = nil
	sig := newSignature(t)
	_, err = env.questions.Submit(ctx, SubmitQuestionInput{OfferingID: offering.ID, Text: "hi", PaymentSignature: sig})
	require.NoError(t, err)

	_, err = env.questions.Submit(ctx, SubmitQuestionInput{OfferingID: offering.ID, Text: "again", PaymentSignature: sig})
	assert.ErrorIs(t, err, ErrPaymentReused)
}

func TestQuestionService_CollisionRetriesThenExhausts(t *testing.T) {
	codes := []string{"AB23CD45EF67", "AB23CD45EF67", "ZZ23CD45EF67"}
	next := 0
	gen := func() (string, error) {
		c := codes[next%len(codes)]
		next++
		return c, nil
	}
	env := newTestEnv(t, accesscode.WithGenerator(gen), accesscode.WithMaxAttempts(2))
	creator := testutil.SeedCreator(t, env.db, "swift_falcon", "wallet-1")
	offering := testutil.SeedOffering(t, env.db, creator, "Ask me anything", "0.25")

	first := env.submit(t, offering, "one")
	assert.Equal(t, "AB23-CD45-EF67", first.AccessCode)

	// the first candidate collides with the stored code
	second := env.submit(t, offering, "two")
	assert.Equal(t, "ZZ23-CD45-EF67", second.AccessCode)

	// every candidate is now taken
	codes = []string{"AB23CD45EF67", "ZZ23CD45EF67"}
	next = 0
	_, err := env.questions.Submit(context.Background(), SubmitQuestionInput{
		OfferingID: offering.ID, Text: "three", PaymentSignature: newSignature(t),
	})
	assert.ErrorIs(t, err, accesscode.ErrUniquenessExhausted)

	var count int64
	require.NoError(t, env.db.Model(&models.Question{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "nothing is persisted on exhaustion")
}

func TestReplyService_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.SeedCreator(t, env.db, "owner", "wallet-1")
	other := testutil.SeedCreator(t, env.db, "other", "wallet-2")
	offering := testutil.SeedOffering(t, env.db, owner, "AMA", "0.1")
	env.submit(t, offering, "first?")

	inbox, err := env.replies.Inbox(ctx, owner.ID, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	id := inbox[0].ID

	_, err = env.replies.Reply(ctx, other.ID, id, "not mine")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.replies.Reply(ctx, owner.ID, id, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.replies.Reply(ctx, owner.ID, id, "answer")
	require.NoError(t, err)

	_, err = env.replies.Reply(ctx, owner.ID, id, "second answer")
	assert.ErrorIs(t, err, ErrAlreadyReplied)

	_, err = env.replies.Reply(ctx, owner.ID, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	pending, err := env.replies.Inbox(ctx, owner.ID, "pending", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	replied, err := env.replies.Inbox(ctx, owner.ID, "replied", 0, 0)
	require.NoError(t, err)
	require.Len(t, replied, 1)
	require.NotNil(t, replied[0].Reply)
	assert.Equal(t, "answer", replied[0].Reply.Text)

	otherInbox, err := env.replies.Inbox(ctx, other.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, otherInbox)

	_, err = env.replies.Inbox(ctx, owner.ID, "deleted", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatorService_Profile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.SeedCreator(t, env.db, "alice", "wallet-1")
	testutil.SeedCreator(t, env.db, "bob", "wallet-2")
	testutil.SeedOffering(t, env.db, alice, "AMA", "0.1")
	hidden := testutil.SeedOffering(t, env.db, alice, "Hidden", "0.1")
	require.NoError(t, env.offerings.Deactivate(ctx, alice.ID, hidden.ID))

	profile, err := env.creators.GetPublicProfile(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Handle)
	require.Len(t, profile.Offerings, 1)
	assert.Equal(t, "AMA", profile.Offerings[0].Title)

	_, err = env.creators.GetPublicProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	taken := "bob"
	_, err = env.creators.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Handle: &taken})
	assert.ErrorIs(t, err, ErrHandleTaken)

	bad := "No Spaces"
	_, err = env.creators.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Handle: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badURL := "javascript:alert(1)"
	_, err = env.creators.UpdateProfile(ctx, alice.ID, UpdateProfileInput{AvatarURL: &badURL})
	assert.ErrorIs(t, err, ErrInvalidInput)

	handle, name := "Alice_2", "Alice"
	updated, err := env.creators.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Handle: &handle, DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "alice_2", updated.Handle)
	assert.Equal(t, "Alice", updated.DisplayName)
}

func TestOfferingService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.SeedCreator(t, env.db, "alice", "wallet-1")
	bob := testutil.SeedCreator(t, env.db, "bob", "wallet-2")

	_, err := env.offerings.Create(ctx, alice.ID, OfferingInput{Title: "AMA", Price: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.offerings.Create(ctx, alice.ID, OfferingInput{Title: "AMA", Price: decimal.RequireFromString("1"), Token: "USDC"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	offering, err := env.offerings.Create(ctx, alice.ID, OfferingInput{Title: " AMA ", Price: decimal.RequireFromString("0.5")})
	require.NoError(t, err)
	assert.Equal(t, "AMA", offering.Title)
	assert.Equal(t, models.TokenSOL, offering.Token)
	assert.True(t, offering.IsActive)

	price := decimal.RequireFromString("0.75")
	title := "Quick question"
	updated, err := env.offerings.Update(ctx, alice.ID, offering.ID, OfferingUpdate{Title: &title, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Quick question", updated.Title)
	assert.True(t, updated.Price.Equal(price))

	_, err = env.offerings.Update(ctx, bob.ID, offering.ID, OfferingUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.offerings.Deactivate(ctx, bob.ID, offering.ID), ErrNotFound)

	require.NoError(t, env.offerings.Deactivate(ctx, alice.ID, offering.ID))
	list, err := env.offerings.ListForCreator(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	jwtManager, err := auth.NewJWTManager("secret", time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(repo, auth.NewWalletVerifier(0), jwtManager, discardLogger())
	ctx := context.Background()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	ts := time.Now().Unix()
	creds := auth.Credentials{
		WalletAddress: base58.Encode(pub),
		Signature:     base58.Encode(ed25519.Sign(priv, []byte(auth.LoginMessage(ts)))),
		Timestamp:     ts,
	}

	first, err := svc.Login(ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, creds.WalletAddress, first.Creator.WalletAddress)
	assert.NotEmpty(t, first.Creator.Handle)

	claims, err := jwtManager.ValidateToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.Creator.ID, claims.CreatorID)

	second, err := svc.Login(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, first.Creator.ID, second.Creator.ID, "the same wallet maps to the same creator")

	creds.Signature = base58.Encode(ed25519.Sign(priv, []byte("other")))
	_, err = svc.Login(ctx, creds)
	assert.ErrorIs(t, err, ErrUnauthorized)

	stale := time.Now().Add(-time.Hour).Unix()
	creds.Signature = base58.Encode(ed25519.Sign(priv, []byte(auth.LoginMessage(stale))))
	creds.Timestamp = stale
	_, err = svc.Login(ctx, creds)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
