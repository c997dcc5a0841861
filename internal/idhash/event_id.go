package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// ComputeEventID computes a deterministic whale event id using SHA256.
// Formula: SHA256(market_id|wallet|direction|size_usd|timestamp)
// Returns hex-encoded hash (64 characters). The same position observed
// twice hashes identically, which is what makes event replay a no-op.
func ComputeEventID(
	marketID string,
	wallet string,
	direction domain.Direction,
	sizeUSD float64,
	timestamp int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%.2f|%d",
		marketID,
		wallet,
		string(direction),
		sizeUSD,
		timestamp,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeAlertID computes a deterministic alert id using SHA256.
// Formula: SHA256(market_id|direction|event_id)
// Returns hex-encoded hash (64 characters).
func ComputeAlertID(marketID string, direction domain.Direction, eventID string) string {
	data := fmt.Sprintf("%s|%s|%s", marketID, string(direction), eventID)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
