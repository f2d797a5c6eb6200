package database_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Replace(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to replace a node's chain with an incoming chain.")
	{
		longer := database.New(gen)
		for i := 0; i < 3; i++ {
			if _, err := longer.AddBlock(context.Background(), nil, nil); err != nil {
				t.Fatalf("\t%s\tShould be able to mine block %d: %v", failed, i+1, err)
			}
		}
		t.Logf("\t%s\tShould be able to mine 3 blocks.", success)

		if longer.Length() != 4 {
			t.Fatalf("\t%s\tShould have 4 blocks in the chain: got %d", failed, longer.Length())
		}
		t.Logf("\t%s\tShould have 4 blocks in the chain.", success)

		t.Logf("\tTest %d:\tWhen the incoming chain is not longer.", 0)
		{
			db := database.New(gen)
			if _, err := db.AddBlock(context.Background(), nil, nil); err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
			}
			tip := db.LatestBlock()

			err := db.Replace(db.Copy(), nil)
			if !errors.Is(err, database.ErrChainTooShort) {
				t.Fatalf("\t%s\tShould reject a chain of the same length: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a chain of the same length.", success)

			if !errors.Is(err, database.ErrChainRejected) {
				t.Fatalf("\t%s\tShould report the rejection as ErrChainRejected: %v", failed, err)
			}
			t.Logf("\t%s\tShould report the rejection as ErrChainRejected.", success)

			err = db.Replace([]database.Block{db.GenesisBlock()}, nil)
			if !errors.Is(err, database.ErrChainTooShort) {
				t.Fatalf("\t%s\tShould reject a shorter chain: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a shorter chain.", success)

			if !db.LatestBlock().Equal(tip) {
				t.Fatalf("\t%s\tShould keep the local chain.", failed)
			}
			t.Logf("\t%s\tShould keep the local chain.", success)
		}

		t.Logf("\tTest %d:\tWhen the incoming chain is longer but invalid.", 1)
		{
			db := database.New(gen)

			chain := longer.Copy()
			chain[2].LastHash = signature.ZeroHash

			err := db.Replace(chain, nil)
			if !errors.Is(err, database.ErrChainInvalid) {
				t.Fatalf("\t%s\tShould reject the invalid chain: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the invalid chain.", success)

			if db.Length() != 1 {
				t.Fatalf("\t%s\tShould keep the local chain: got %d blocks", failed, db.Length())
			}
			t.Logf("\t%s\tShould keep the local chain.", success)
		}

		t.Logf("\tTest %d:\tWhen the incoming chain is longer and valid.", 2)
		{
			db := database.New(gen)

			var events int
			ev := func(v string, args ...any) { events++ }

			chain := longer.Copy()
			if err := db.Replace(chain, ev); err != nil {
				t.Fatalf("\t%s\tShould replace the chain: %v", failed, err)
			}
			t.Logf("\t%s\tShould replace the chain.", success)

			if db.Length() != 4 || db.LatestBlock().Hash != longer.LatestBlock().Hash {
				t.Fatalf("\t%s\tShould have the incoming tip: got %s, exp %s", failed, db.LatestBlock().Hash, longer.LatestBlock().Hash)
			}
			t.Logf("\t%s\tShould have the incoming tip.", success)

			if events == 0 {
				t.Fatalf("\t%s\tShould report the replacement as an event.", failed)
			}
			t.Logf("\t%s\tShould report the replacement as an event.", success)

			chain[3].Nonce++
			if db.LatestBlock().Nonce == chain[3].Nonce {
				t.Fatalf("\t%s\tShould not share memory with the incoming chain.", failed)
			}
			t.Logf("\t%s\tShould not share memory with the incoming chain.", success)
		}
	}
}

func Test_AddBlockBalance(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to record transactions in mined blocks.")
	{
		sender := newSigner(t)
		recipient := newSigner(t)

		db := database.New(gen)

		tx, err := database.NewTx(sender, db.Balance(sender.Address()), recipient.Address(), 4)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the transaction: %v", failed, err)
		}

		block, err := db.AddBlock(context.Background(), []database.Tx{tx}, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine the block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine the block.", success)

		if len(block.Data) != 1 || block.Data[0].ID != tx.ID {
			t.Fatalf("\t%s\tShould carry the transaction in the block.", failed)
		}
		t.Logf("\t%s\tShould carry the transaction in the block.", success)

		if got := db.Balance(sender.Address()); got != 6 {
			t.Fatalf("\t%s\tShould have a sender balance of 6: got %d", failed, got)
		}
		t.Logf("\t%s\tShould have a sender balance of 6.", success)

		if got := db.Balance(recipient.Address()); got != 14 {
			t.Fatalf("\t%s\tShould have a recipient balance of 14: got %d", failed, got)
		}
		t.Logf("\t%s\tShould have a recipient balance of 14.", success)

		replay := tx.Clone()
		if _, err := db.AddBlock(context.Background(), []database.Tx{replay}, nil); !errors.Is(err, database.ErrTransactionRecorded) {
			t.Fatalf("\t%s\tShould reject a transaction already in the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a transaction already in the chain.", success)

		replay.ID = "fresh-id"
		if _, err := db.AddBlock(context.Background(), []database.Tx{replay}, nil); !errors.Is(err, database.ErrTransactionRecorded) {
			t.Fatalf("\t%s\tShould reject a recorded transaction carrying a new id: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a recorded transaction carrying a new id.", success)

		if db.Length() != 2 || db.Balance(recipient.Address()) != 14 || db.Balance(sender.Address()) != 6 {
			t.Fatalf("\t%s\tShould leave the chain and balances untouched: blocks %d", failed, db.Length())
		}
		t.Logf("\t%s\tShould leave the chain and balances untouched.", success)

		other, err := database.NewTx(recipient, db.Balance(recipient.Address()), sender.Address(), 1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the transaction: %v", failed, err)
		}
		if _, err := db.AddBlock(context.Background(), []database.Tx{other, other}, nil); !errors.Is(err, database.ErrTransactionRecorded) {
			t.Fatalf("\t%s\tShould reject a transaction listed twice in a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a transaction listed twice in a block.", success)

		var seen int
		selectFn := func(chain []database.Block) ([]database.Tx, error) {
			seen = len(chain)
			return []database.Tx{other}, nil
		}
		if _, err := db.MineBlock(context.Background(), selectFn, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to mine selected transactions: %v", failed, err)
		}
		if seen != 2 || db.Length() != 3 {
			t.Fatalf("\t%s\tShould select against the chain being extended: seen %d, blocks %d", failed, seen, db.Length())
		}
		t.Logf("\t%s\tShould select against the chain being extended.", success)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := db.AddBlock(ctx, nil, nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould stop mining on a cancelled context: %v", failed, err)
		}
		t.Logf("\t%s\tShould stop mining on a cancelled context.", success)

		if db.Length() != 3 {
			t.Fatalf("\t%s\tShould not append a block when mining stops: got %d", failed, db.Length())
		}
		t.Logf("\t%s\tShould not append a block when mining stops.", success)

		db.Reset()
		if db.Length() != 1 || !db.LatestBlock().Equal(db.GenesisBlock()) {
			t.Fatalf("\t%s\tShould reset back to the genesis block.", failed)
		}
		t.Logf("\t%s\tShould reset back to the genesis block.", success)
	}
}

// =============================================================================

type signer struct {
	privateKey *ecdsa.PrivateKey
}

func newSigner(t *testing.T) signer {
	pk, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
	}

	return signer{privateKey: pk}
}

func (s signer) Address() database.AccountID {
	return database.PublicKeyToAccountID(s.privateKey.PublicKey)
}

func (s signer) Sign(value any) (string, error) {
	v, r, sig, err := signature.Sign(value, s.privateKey)
	if err != nil {
		return "", err
	}

	return signature.SignatureString(v, r, sig), nil
}
