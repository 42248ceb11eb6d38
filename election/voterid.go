// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

const (
	minVoterID = 1_000_000_000
	maxVoterID = 9_999_999_999
)

var voterIDSpan = big.NewInt(maxVoterID - minVoterID + 1)

// GenerateVoterID draws a candidate voter id uniformly from
// [1000000000, 9999999999]. Uniqueness is up to the store; callers retry on a
// uniqueness violation.
func GenerateVoterID() (string, error) {
	n, err := rand.Int(rand.Reader, voterIDSpan)
	if err != nil {
		return "", fmt.Errorf("failed to generate voter id: %w", err)
	}
	return strconv.FormatInt(n.Int64()+minVoterID, 10), nil
}
