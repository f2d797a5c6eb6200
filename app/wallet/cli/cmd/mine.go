package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine the pending transactions",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) {
	var resp struct {
		Block database.Block   `json:"block"`
		Chain []database.Block `json:"chain"`
	}
	if err := send(http.MethodPost, "/v1/mine", nil, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("hash[%s] difficulty[%d] nonce[%d] txs[%d] blocks[%d]\n",
		resp.Block.Hash, resp.Block.Difficulty, resp.Block.Nonce, len(resp.Block.Data), len(resp.Chain))
}
