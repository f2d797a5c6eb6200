// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

// Default genesis values used when no genesis file is provided.
const (
	DefaultMineRate          = 1000 // Milliseconds.
	DefaultInitialDifficulty = 3
	DefaultStartingBalance   = 10
	DefaultTimestamp         = 1
	DefaultHash              = "0x686f72637275782d67656e657369732d626c6f636b2d706c616365686f6c64"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time `json:"date"`
	MineRate          int64     `json:"mine_rate"`          // Target milliseconds between blocks.
	InitialDifficulty uint      `json:"initial_difficulty"` // Number of leading zero bits for the genesis block.
	StartingBalance   uint64    `json:"starting_balance"`   // Balance every wallet starts with.
	Timestamp         int64     `json:"timestamp"`          // Timestamp of the genesis block.
	LastHash          string    `json:"last_hash"`          // Placeholder previous hash of the genesis block.
	Hash              string    `json:"hash"`               // Placeholder hash of the genesis block.
}

// Default returns the built in genesis values.
func Default() Genesis {
	return Genesis{
		Date:              time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		MineRate:          DefaultMineRate,
		InitialDifficulty: DefaultInitialDifficulty,
		StartingBalance:   DefaultStartingBalance,
		Timestamp:         DefaultTimestamp,
		LastHash:          signature.ZeroHash,
		Hash:              DefaultHash,
	}
}

// MineRateDuration returns the mine rate as a duration.
func (g Genesis) MineRateDuration() time.Duration {
	return time.Duration(g.MineRate) * time.Millisecond
}

// =============================================================================

// Load opens and consumes the genesis file. Any value missing from the file
// falls back to the default.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("unmarshal genesis: %w", err)
	}

	if genesis.MineRate <= 0 {
		return Genesis{}, fmt.Errorf("invalid mine rate %d", genesis.MineRate)
	}

	return genesis, nil
}
