package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"swift", "brave", "clever", "bold", "quiet",
	"silent", "wild", "golden", "iron", "silver",
	"dark", "bright", "stormy", "shadow", "misty",
	"icy", "hidden", "windy", "steel", "velvet",
}

var nouns = []string{
	"falcon", "tiger", "owl", "wolf", "eagle",
	"bear", "lion", "hawk", "phoenix", "panther",
	"fox", "raven", "viper", "shark", "lynx",
	"moth", "heron", "jaguar", "orca", "otter",
}

// GenerateHandle creates a random handle in the format "adjective_noun_xxxx"
// where xxxx is a random 4-digit number. The result always matches
// ^[a-z0-9_]{3,30}$.
func GenerateHandle() (string, error) {
	adjIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(adjectives))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random adjective: %w", err)
	}

	nounIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(nouns))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random noun: %w", err)
	}

	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}

	return fmt.Sprintf("%s_%s_%04d",
		adjectives[adjIdx.Int64()],
		nouns[nounIdx.Int64()],
		suffix.Int64(),
	), nil
}
