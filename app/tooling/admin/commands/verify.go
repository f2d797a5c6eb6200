package commands

import (
	"fmt"
	"io"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
)

// Verify fetches the node's chain and validates it locally against the
// genesis block the node reports. Every transaction must be valid and must
// not repeat one recorded in an earlier block.
func Verify(w io.Writer, src LedgerSource) error {
	gen, err := src.Genesis()
	if err != nil {
		return err
	}

	chain, err := src.Chain()
	if err != nil {
		return err
	}

	if err := database.ValidateChain(chain, database.Genesis(gen)); err != nil {
		return err
	}

	for i := 1; i < len(chain); i++ {
		for _, tx := range chain[i].Data {
			if err := tx.Validate(); err != nil {
				return fmt.Errorf("block[%d]: %w", i, err)
			}
			if database.Recorded(chain[:i], tx) {
				return fmt.Errorf("block[%d]: %w: %s", i, database.ErrTransactionRecorded, tx.ID)
			}
		}
	}

	fmt.Fprintf(w, "chain valid: blocks[%d]: tip[%s]\n", len(chain), chain[len(chain)-1].Hash)
	return nil
}
