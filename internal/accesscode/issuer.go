package accesscode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultMaxAttempts bounds how many codes are tried before giving up.
const DefaultMaxAttempts = 5

// Generator produces raw, unformatted codes
type Generator func() (string, error)

// ExistenceChecker reports whether a canonical code is already stored
type ExistenceChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// InsertFunc persists a record under code. It must return an error wrapping
// ErrCodeTaken when the store's unique constraint rejects the code.
type InsertFunc func(ctx context.Context, code string) error

// Issuer mints codes that are unique in the backing store
type Issuer struct {
	generate    Generator
	checker     ExistenceChecker
	maxAttempts int
	logger      *slog.Logger
}

type IssuerOption func(*Issuer)

func WithGenerator(g Generator) IssuerOption {
	return func(i *Issuer) {
		i.generate = g
	}
}

func WithMaxAttempts(n int) IssuerOption {
	return func(i *Issuer) {
		if n > 0 {
			i.maxAttempts = n
		}
	}
}

func WithLogger(l *slog.Logger) IssuerOption {
	return func(i *Issuer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewIssuer creates an Issuer. checker may be nil, in which case only the
// store's unique constraint (seen through IssueAndInsert) detects collisions.
func NewIssuer(checker ExistenceChecker, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		generate:    Generate,
		checker:     checker,
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) next() (string, error) {
	raw, err := i.generate()
	if err != nil {
		return "", err
	}
	code, err := Canonical(raw)
	if err != nil {
		return "", fmt.Errorf("generator produced an invalid code: %w", err)
	}
	return code, nil
}

func (i *Issuer) taken(ctx context.Context, code string) (bool, error) {
	if i.checker == nil {
		return false, nil
	}
	exists, err := i.checker.CodeExists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to check access code: %w", err)
	}
	return exists, nil
}

// Issue returns a canonical code the store reports as unused.
// The result is only a hint: another request may claim the same code before
// it is inserted, so persisting callers should use IssueAndInsert.
func (i *Issuer) Issue(ctx context.Context) (string, error) {
	return i.IssueAndInsert(ctx, nil)
}

// IssueAndInsert generates a code and hands it to insert, retrying with a
// fresh code whenever the store reports a collision. After maxAttempts
// collisions it returns ErrUniquenessExhausted and nothing is persisted.
func (i *Issuer) IssueAndInsert(ctx context.Context, insert InsertFunc) (string, error) {
	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := i.next()
		if err != nil {
			return "", err
		}

		exists, err := i.taken(ctx, code)
		if err != nil {
			return "", err
		}
		if exists {
			i.logger.Warn("access code collision", "attempt", attempt, "stage", "check")
			continue
		}

		if insert == nil {
			return code, nil
		}

		err = insert(ctx, code)
		if errors.Is(err, ErrCodeTaken) {
			i.logger.Warn("access code collision", "attempt", attempt, "stage", "insert")
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}

	i.logger.Error("access code issuance exhausted", "attempts", i.maxAttempts)
	return "", ErrUniquenessExhausted
}
