package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/olekukonko/tablewriter"
)

// ChainSource represents the behavior required to read a node's chain.
type ChainSource interface {
	Chain() ([]database.Block, error)
}

// Chain prints the node's chain as a table.
func Chain(w io.Writer, src ChainSource) error {
	chain, err := src.Chain()
	if err != nil {
		return err
	}

	return writeChain(w, chain)
}

func writeChain(w io.Writer, chain []database.Block) error {
	rows := make([][]string, len(chain))
	for i, block := range chain {
		rows[i] = []string{
			strconv.Itoa(i),
			time.UnixMilli(block.Timestamp).UTC().Format(time.RFC3339),
			short(block.Hash),
			short(block.LastHash),
			strconv.FormatUint(uint64(block.Difficulty), 10),
			strconv.FormatUint(block.Nonce, 10),
			strconv.Itoa(len(block.Data)),
		}
	}

	table := tablewriter.NewTable(w)
	table.Header([]string{"Height", "Time", "Hash", "Last Hash", "Difficulty", "Nonce", "Txs"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "blocks[%d]\n", len(chain))
	return nil
}

// short trims a hash for display.
func short(hash string) string {
	const size = 18
	if len(hash) <= size {
		return hash
	}
	return hash[:size] + "..."
}
