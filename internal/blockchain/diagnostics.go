package blockchain

import (
	"context"
	"net/url"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// DiagnosticResult holds the result of a Solana connectivity check
type DiagnosticResult struct {
	RPCConnected    bool   `json:"rpc_connected"`
	RPCHost         string `json:"rpc_host"`
	Network         string `json:"network"`
	RPCError        string `json:"rpc_error,omitempty"`
	LatestBlockhash string `json:"latest_blockhash,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// RunDiagnostics checks that the RPC node used for payment verification
// answers. Only the host is reported since RPC URLs often embed API keys.
func (s *SolanaClient) RunDiagnostics(ctx context.Context) *DiagnosticResult {
	result := &DiagnosticResult{
		Network:   s.network,
		RPCHost:   rpcHost(s.rpcURL),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	blockhash, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		result.RPCError = err.Error()
		return result
	}

	result.RPCConnected = true
	result.LatestBlockhash = blockhash.Value.Blockhash.String()
	return result
}

func rpcHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
