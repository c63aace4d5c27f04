package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"onlyanon/internal/blockchain"
)

// LoginPrompt opens every message a creator's wallet signs to log in
const LoginPrompt = "Sign this message to authenticate with OnlyAnon"

// DefaultLoginWindow is how far a signed timestamp may be from server time
const DefaultLoginWindow = 5 * time.Minute

var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginMessage is the exact text signed for a login stamped at unix second issuedAt
func LoginMessage(issuedAt int64) string {
	return fmt.Sprintf("%s\nTimestamp: %d", LoginPrompt, issuedAt)
}

// Credentials is what a client presents to log in
type Credentials struct {
	WalletAddress string
	Signature     string
	// Timestamp is the unix second embedded in the signed message
	Timestamp int64
}

// Identity is a stable account identifier vouched for by a provider
type Identity struct {
	AccountID string
	Provider  string
}

// IdentityProvider authenticates a user and yields a stable account identifier
type IdentityProvider interface {
	Authenticate(ctx context.Context, creds Credentials) (*Identity, error)
}

// WalletVerifier authenticates Solana wallets by an ed25519 signature over a
// timestamped message. A signature is only accepted while its timestamp is
// within window of the server clock. The account identifier is the base58
// wallet address.
type WalletVerifier struct {
	window time.Duration
	now    func() time.Time
}

// NewWalletVerifier returns a verifier; a non-positive window uses DefaultLoginWindow
func NewWalletVerifier(window time.Duration) *WalletVerifier {
	if window <= 0 {
		window = DefaultLoginWindow
	}
	return &WalletVerifier{window: window, now: time.Now}
}

func (v *WalletVerifier) Authenticate(_ context.Context, creds Credentials) (*Identity, error) {
	pubKey, err := blockchain.ParseWalletAddress(creds.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	skew := v.now().Sub(time.Unix(creds.Timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if creds.Timestamp <= 0 || skew > v.window {
		return nil, fmt.Errorf("%w: login message expired", ErrInvalidCredentials)
	}

	// Wallet adapters return base58; some return hex
	sig, err := base58.Decode(creds.Signature)
	if err != nil {
		sig, err = hex.DecodeString(creds.Signature)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid signature format", ErrInvalidCredentials)
		}
	}
	if len(sig) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: invalid signature length", ErrInvalidCredentials)
	}

	if !ed25519.Verify(pubKey[:], []byte(LoginMessage(creds.Timestamp)), sig) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidCredentials)
	}

	return &Identity{AccountID: creds.WalletAddress, Provider: "solana-wallet"}, nil
}
