// Package payment describes the payment capability the question flow relies
// on. The anonymizing transfer itself happens client side through the
// ShadowWire SDK; the server only sees the resulting transaction signature
// and asks a Verifier to prove the creator was paid.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature    = errors.New("invalid transaction signature")
	ErrPaymentNotFound     = errors.New("payment transaction not found")
	ErrPaymentNotConfirmed = errors.New("payment transaction not confirmed")
	ErrPaymentFailed       = errors.New("payment transaction failed")
	ErrPaymentMismatch     = errors.New("payment does not match offering")
	ErrUnsupportedToken    = errors.New("unsupported payment token")
)

// Proof is what an asker presents: a transaction that should have paid
// Amount of Token to Recipient.
type Proof struct {
	Signature string
	Recipient string
	Amount    decimal.Decimal
	Token     string
}

// Receipt describes a verified payment
type Receipt struct {
	Signature string
	Amount    decimal.Decimal
	Token     string
}

// Verifier confirms that a proof corresponds to a settled payment
type Verifier interface {
	VerifyPayment(ctx context.Context, proof Proof) (*Receipt, error)
}

// ValidateSignature checks that sig is a base58 encoded 64 byte signature
func ValidateSignature(sig string) error {
	raw, err := base58.Decode(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(raw) != 64 {
		return fmt.Errorf("%w: expected 64 bytes, got %d", ErrInvalidSignature, len(raw))
	}
	return nil
}

// StaticVerifier accepts any well-formed signature at the requested amount.
// It is meant for local development against a chain that is not reachable.
type StaticVerifier struct{}

func (StaticVerifier) VerifyPayment(_ context.Context, proof Proof) (*Receipt, error) {
	if err := ValidateSignature(proof.Signature); err != nil {
		return nil, err
	}
	return &Receipt{
		Signature: proof.Signature,
		Amount:    proof.Amount,
		Token:     proof.Token,
	}, nil
}
