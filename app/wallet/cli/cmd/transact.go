package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

var transactCmd = &cobra.Command{
	Use:   "transact",
	Short: "Sign a transfer and submit it to the node",
	Run:   transactRun,
}

func init() {
	rootCmd.AddCommand(transactCmd)
	transactCmd.Flags().StringVarP(&to, "to", "t", "", "Account to send to.")
	transactCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
}

func transactRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	recipient, err := database.ToAccountID(to)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := buildTransaction(w, recipient, amount)
	if err != nil {
		log.Fatal(err)
	}

	if err := send(http.MethodPost, "/v1/tx/submit", tx, nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println(tx.ID)
}

// buildTransaction extends the wallet's pending transaction when the node
// holds one, otherwise a new one is created against the node's chain.
func buildTransaction(w *wallet.Wallet, recipient database.AccountID, amount uint64) (database.Tx, error) {
	var pool map[string]database.Tx
	if err := send(http.MethodGet, "/v1/transaction-pool", nil, &pool); err != nil {
		return database.Tx{}, err
	}

	for _, tx := range pool {
		if tx.Input.Address == w.Address() {
			if err := tx.Update(w, recipient, amount); err != nil {
				return database.Tx{}, err
			}
			return tx, nil
		}
	}

	var gen genesis.Genesis
	if err := send(http.MethodGet, "/v1/genesis", nil, &gen); err != nil {
		return database.Tx{}, err
	}

	var chain []database.Block
	if err := send(http.MethodGet, "/v1/blocks", nil, &chain); err != nil {
		return database.Tx{}, err
	}

	return w.CreateTransaction(recipient, amount, chain, gen.StartingBalance)
}
