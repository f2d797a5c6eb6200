package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/olekukonko/tablewriter"
)

// LedgerSource represents the behavior required to read a node's chain
// along with the genesis values it was built from.
type LedgerSource interface {
	ChainSource
	Genesis() (genesis.Genesis, error)
}

// Balances prints the balance of every account found on the chain.
func Balances(w io.Writer, src LedgerSource) error {
	gen, err := src.Genesis()
	if err != nil {
		return err
	}

	chain, err := src.Chain()
	if err != nil {
		return err
	}

	if len(chain) == 0 {
		return errors.New("chain is empty")
	}

	accounts := make(map[database.AccountID]struct{})
	for _, block := range chain {
		for _, tx := range block.Data {
			accounts[tx.Input.Address] = struct{}{}
			for account := range tx.OutputMap {
				accounts[account] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(accounts))
	for account := range accounts {
		ids = append(ids, string(account))
	}
	sort.Strings(ids)

	rows := make([][]string, len(ids))
	for i, id := range ids {
		bal := database.Balance(chain, database.AccountID(id), gen.StartingBalance)
		rows[i] = []string{id, strconv.FormatUint(bal, 10)}
	}

	table := tablewriter.NewTable(w)
	table.Header([]string{"Account", "Balance"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "tip[%s]\n", chain[len(chain)-1].Hash)
	return nil
}
