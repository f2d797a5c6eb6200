package database

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ValidateChain checks the chain starts with the genesis block and that every
// block links to, and is consistent with, its predecessor. It does not look
// at the local chain; admission is decided by Database.Replace.
func ValidateChain(chain []Block, genesisBlock Block) error {
	if len(chain) == 0 {
		return errors.New("chain is empty")
	}

	if !chain[0].Equal(genesisBlock) {
		return errors.New("chain does not start with the genesis block")
	}

	for i := 1; i < len(chain); i++ {
		if err := chain[i].ValidateBlock(chain[i-1]); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	return nil
}

// IsValidChain is the boolean form of ValidateChain.
func IsValidChain(chain []Block, genesisBlock Block) bool {
	return ValidateChain(chain, genesisBlock) == nil
}

// Balance derives the balance of the account from the chain. The chain is
// scanned from the newest block back toward genesis, adding every output
// addressed to the account. The scan stops after the first block (newest)
// holding a transaction sent by the account: that transaction's change
// output already carries everything the account owned before it, so neither
// older blocks nor the starting balance are counted. A sum that does not fit
// in a uint64 is capped at math.MaxUint64.
func Balance(chain []Block, account AccountID, startingBalance uint64) uint64 {
	var (
		hasConducted bool
		outputsTotal uint64
	)

	for i := len(chain) - 1; i > 0; i-- {
		for _, tx := range chain[i].Data {
			if tx.Input.Address == account {
				hasConducted = true
			}

			if amount, exists := tx.OutputMap[account]; exists {
				outputsTotal = addCapped(outputsTotal, amount)
			}
		}

		if hasConducted {
			break
		}
	}

	if hasConducted {
		return outputsTotal
	}

	return addCapped(startingBalance, outputsTotal)
}

// addCapped adds the amounts, capping the result at math.MaxUint64.
func addCapped(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// Recorded reports whether the chain already holds the transaction. A match
// on the id or on the signature counts, since the id is not covered by the
// signature and a copy carrying a fresh id is still a replay.
func Recorded(chain []Block, tx Tx) bool {
	for i := 1; i < len(chain); i++ {
		for _, rec := range chain[i].Data {
			if rec.ID == tx.ID || rec.Input.Signature == tx.Input.Signature {
				return true
			}
		}
	}

	return false
}

// checkNotRecorded rejects data holding a transaction that is already on the
// chain or that appears twice in the data.
func checkNotRecorded(chain []Block, data []Tx) error {
	ids := make(map[string]struct{}, len(data))
	sigs := make(map[string]struct{}, len(data))

	for _, tx := range data {
		_, dupID := ids[tx.ID]
		_, dupSig := sigs[tx.Input.Signature]
		if dupID || dupSig || Recorded(chain, tx) {
			return fmt.Errorf("%w: %s", ErrTransactionRecorded, tx.ID)
		}

		ids[tx.ID] = struct{}{}
		sigs[tx.Input.Signature] = struct{}{}
	}

	return nil
}

// CopyChain returns a copy of the chain. Blocks and their transactions are
// copied so the result can be handed out to readers.
func CopyChain(chain []Block) []Block {
	cpy := make([]Block, len(chain))
	for i, block := range chain {
		data := make([]Tx, len(block.Data))
		for j, tx := range block.Data {
			data[j] = tx.Clone()
		}
		block.Data = data
		cpy[i] = block
	}

	return cpy
}
