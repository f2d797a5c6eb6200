package database

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together and sealed by
// proof of work.
type Block struct {
	Timestamp  int64  `json:"timestamp"`  // Milliseconds since epoch of the winning attempt.
	LastHash   string `json:"lastHash"`   // Hash of the previous block in the chain.
	Hash       string `json:"hash"`       // Hash over the block fields, see ComputeHash.
	Nonce      uint64 `json:"nonce"`      // Value identified to solve the hash solution.
	Difficulty uint   `json:"difficulty"` // Number of leading zero bits needed to solve the hash solution.
	Data       []Tx   `json:"data"`       // Transactions recorded in the block.
}

// Genesis returns the fixed first block of every chain. It is built from
// the genesis configuration and is never mined.
func Genesis(gen genesis.Genesis) Block {
	return Block{
		Timestamp:  gen.Timestamp,
		LastHash:   gen.LastHash,
		Hash:       gen.Hash,
		Nonce:      0,
		Difficulty: gen.InitialDifficulty,
		Data:       []Tx{},
	}
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock Block
	Data      []Tx
	MineRate  time.Duration
	EvHandler func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle against the previous block.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	data := args.Data
	if data == nil {
		data = []Tx{}
	}

	nb := Block{
		LastHash: args.PrevBlock.Hash,
		Nonce:    0, // Will be identified by the POW algorithm.
		Data:     data,
	}

	if err := nb.performPOW(ctx, args.PrevBlock, args.MineRate, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
// The timestamp and difficulty are refreshed on every attempt since both are
// part of the hashed material.
func (b *Block) performPOW(ctx context.Context, prevBlock Block, mineRate time.Duration, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started")
	defer ev("database: PerformPOW: MINING: completed")

	for _, tx := range b.Data {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]: difficulty[%d]", attempts, b.Difficulty)
		}

		// Only a node shutdown stops a mining operation early.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		b.Timestamp = time.Now().UnixMilli()
		b.Difficulty = AdjustDifficulty(prevBlock, b.Timestamp, mineRate)

		hash := b.ComputeHash()
		if !IsHashSolved(b.Difficulty, hash) {
			b.Nonce++
			continue
		}

		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.LastHash, b.Hash)
		ev("database: PerformPOW: MINING: attempts[%d]: difficulty[%d]", attempts, b.Difficulty)

		return nil
	}
}

// AdjustDifficulty returns the difficulty for a block mined at timestamp on
// top of prevBlock. Blocks that took longer than the mine rate lower the
// difficulty by one, faster blocks raise it by one, with a floor of one.
func AdjustDifficulty(prevBlock Block, timestamp int64, mineRate time.Duration) uint {
	if prevBlock.Difficulty < 1 {
		return 1
	}

	elapsed := time.Duration(timestamp-prevBlock.Timestamp) * time.Millisecond
	if elapsed > mineRate {
		return prevBlock.Difficulty - 1
	}

	return prevBlock.Difficulty + 1
}

// ComputeHash returns the hash over the block fields in their canonical
// order: timestamp, last hash, data, nonce, difficulty.
func (b Block) ComputeHash() string {
	data := b.Data
	if data == nil {
		data = []Tx{}
	}

	return signature.Hash(b.Timestamp, b.LastHash, data, b.Nonce, b.Difficulty)
}

// ValidateBlock takes a block and validates it against its predecessor in
// the chain.
func (b Block) ValidateBlock(previousBlock Block) error {
	if b.LastHash != previousBlock.Hash {
		return fmt.Errorf("last hash doesn't match the previous block, got %s, exp %s", b.LastHash, previousBlock.Hash)
	}

	if hash := b.ComputeHash(); hash != b.Hash {
		return fmt.Errorf("block hash doesn't match the block fields, got %s, exp %s", b.Hash, hash)
	}

	if diff := int64(b.Difficulty) - int64(previousBlock.Difficulty); diff > 1 || diff < -1 {
		return fmt.Errorf("block difficulty jumped, parent %d, block %d", previousBlock.Difficulty, b.Difficulty)
	}

	return nil
}

// Equal reports whether the two blocks carry exactly the same content.
func (b Block) Equal(other Block) bool {
	if b.Timestamp != other.Timestamp ||
		b.LastHash != other.LastHash ||
		b.Hash != other.Hash ||
		b.Nonce != other.Nonce ||
		b.Difficulty != other.Difficulty {
		return false
	}

	return b.ComputeHash() == other.ComputeHash()
}

// =============================================================================

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The digest must start with difficulty number of zero bits.
func IsHashSolved(difficulty uint, hash string) bool {
	digest, err := hexutil.Decode(hash)
	if err != nil || len(digest) != 32 {
		return false
	}

	return leadingZeroBits(digest) >= difficulty
}

// leadingZeroBits counts the zero bits at the front of the digest.
func leadingZeroBits(digest []byte) uint {
	var n uint
	for _, b := range digest {
		if b == 0 {
			n += 8
			continue
		}

		n += uint(bits.LeadingZeros8(b))
		break
	}

	return n
}
