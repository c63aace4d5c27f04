package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"onlyanon/internal/models"
	"onlyanon/internal/payment"
)

const lamportsPerSOL = 1_000_000_000

// RPCEndpoint returns the public RPC URL for a cluster name
func RPCEndpoint(network string) string {
	switch network {
	case "mainnet-beta":
		return rpc.MainNetBeta_RPC
	case "testnet":
		return rpc.TestNet_RPC
	case "localnet":
		return rpc.LocalNet_RPC
	default:
		return rpc.DevNet_RPC
	}
}

// SolanaClient verifies question payments on chain
type SolanaClient struct {
	rpcClient  *rpc.Client
	rpcURL     string
	network    string
	commitment rpc.CommitmentType
	timeout    time.Duration
}

// NewSolanaClient creates a client for network. A non-empty rpcURL overrides
// the cluster's public endpoint.
func NewSolanaClient(network, rpcURL string) *SolanaClient {
	if rpcURL == "" {
		rpcURL = RPCEndpoint(network)
	}

	return &SolanaClient{
		rpcClient:  rpc.New(rpcURL),
		rpcURL:     rpcURL,
		network:    network,
		commitment: rpc.CommitmentConfirmed,
		timeout:    15 * time.Second,
	}
}

// ParseWalletAddress decodes a base58 Solana wallet address into its public key
func ParseWalletAddress(address string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid wallet address: %w", err)
	}
	return key, nil
}

// TransferDetails holds what a confirmed transaction moved to one account
type TransferDetails struct {
	Signature string
	Receiver  string
	Lamports  uint64
}

// VerifyTransfer checks that txHash is confirmed without error and returns how
// many lamports the receiver's balance grew by. The sender is never returned:
// nothing about the payer leaves this function.
func (s *SolanaClient) VerifyTransfer(ctx context.Context, txHash, receiver string) (*TransferDetails, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}
	receiverKey, err := ParseWalletAddress(receiver)
	if err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	statuses, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}
	if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
		return nil, payment.ErrPaymentNotFound
	}

	status := statuses.Value[0]
	if status.Err != nil {
		slog.Warn("payment transaction failed on chain", "signature", txHash, "error", status.Err)
		return nil, payment.ErrPaymentFailed
	}
	if status.ConfirmationStatus != rpc.ConfirmationStatusConfirmed &&
		status.ConfirmationStatus != rpc.ConfirmationStatusFinalized {
		return nil, payment.ErrPaymentNotConfirmed
	}

	maxVersion := uint64(0)
	tx, err := s.rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     s.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction details: %w", err)
	}
	if tx == nil || tx.Meta == nil || tx.Transaction == nil {
		return nil, payment.ErrPaymentNotFound
	}

	transaction, err := tx.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	idx := accountIndex(transaction.Message.AccountKeys, receiverKey)
	if idx < 0 {
		return nil, fmt.Errorf("%w: receiver not part of transaction", payment.ErrPaymentMismatch)
	}

	return &TransferDetails{
		Signature: txHash,
		Receiver:  receiver,
		Lamports:  balanceDelta(tx.Meta.PreBalances, tx.Meta.PostBalances, idx),
	}, nil
}

// VerifyPayment implements payment.Verifier for SOL payments
func (s *SolanaClient) VerifyPayment(ctx context.Context, proof payment.Proof) (*payment.Receipt, error) {
	if proof.Token != models.TokenSOL {
		return nil, fmt.Errorf("%w: %s", payment.ErrUnsupportedToken, proof.Token)
	}

	details, err := s.VerifyTransfer(ctx, proof.Signature, proof.Recipient)
	if err != nil {
		return nil, err
	}

	if err := checkAmount(details.Lamports, proof.Amount); err != nil {
		return nil, err
	}
	received := LamportsToSOL(details.Lamports)

	slog.Info("payment verified", "network", s.network, "amount", received.String())
	return &payment.Receipt{
		Signature: details.Signature,
		Amount:    received,
		Token:     models.TokenSOL,
	}, nil
}

// checkAmount requires at least the expected price, counted in whole lamports
func checkAmount(lamports uint64, expected decimal.Decimal) error {
	if required := SOLToLamports(expected); lamports < required {
		return fmt.Errorf("%w: received %d lamports, expected %d", payment.ErrPaymentMismatch, lamports, required)
	}
	return nil
}

func accountIndex(keys solana.PublicKeySlice, target solana.PublicKey) int {
	for i, key := range keys {
		if key.Equals(target) {
			return i
		}
	}
	return -1
}

func balanceDelta(pre, post []uint64, idx int) uint64 {
	if idx >= len(pre) || idx >= len(post) {
		return 0
	}
	if post[idx] <= pre[idx] {
		return 0
	}
	return post[idx] - pre[idx]
}

// LamportsToSOL converts lamports to SOL
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0).Div(decimal.NewFromInt(lamportsPerSOL))
}

// SOLToLamports converts SOL to lamports, rounding sub-lamport fractions up
func SOLToLamports(sol decimal.Decimal) uint64 {
	if !sol.IsPositive() {
		return 0
	}
	return uint64(sol.Mul(decimal.NewFromInt(lamportsPerSOL)).Ceil().IntPart())
}
