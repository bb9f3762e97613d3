package simulation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/events"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// Snapshot encodes the full state. Map keys are sorted by encoding/json, so equal states
// always produce equal bytes.
func Snapshot(s *State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Restore decodes a snapshot produced by Snapshot
func Restore(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d (want %d)", s.Version, SnapshotVersion)
	}
	if s.Gate.Applied == nil {
		s.Gate = *events.NewGate()
	}
	if s.FiredEvents == nil {
		s.FiredEvents = map[string]shared.Month{}
	}
	if len(s.Companies) == 0 {
		return nil, shared.NewValidationError("companies", "snapshot holds no companies")
	}
	return &s, nil
}

// Fingerprint is the hex sha256 of the snapshot encoding
func Fingerprint(s *State) (string, error) {
	data, err := Snapshot(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
