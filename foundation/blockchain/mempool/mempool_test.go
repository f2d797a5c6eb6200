package mempool_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math"
	"testing"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/mempool"
	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_CRUD(t *testing.T) {
	gen := genesis.Default()
	chain := []database.Block{database.Genesis(gen)}

	bill := newSigner(t)
	pavel := newSigner(t)
	ed := newSigner(t)

	t.Log("Given the need to validate the mempool api.")
	{
		mp := mempool.New()

		tx1 := newTx(t, bill, 10, ed.Address(), 3)
		tx2 := newTx(t, pavel, 10, ed.Address(), 4)

		mp.Upsert(tx1)
		if n := mp.Upsert(tx2); n != 2 {
			t.Fatalf("\t%s\tShould have 2 transactions in the pool: got %d", failed, n)
		}
		t.Logf("\t%s\tShould have 2 transactions in the pool.", success)

		existing, ok := mp.Existing(bill.Address())
		if !ok || existing.ID != tx1.ID {
			t.Fatalf("\t%s\tShould find the pending transaction of the sender.", failed)
		}
		t.Logf("\t%s\tShould find the pending transaction of the sender.", success)

		if _, ok := mp.Existing(ed.Address()); ok {
			t.Fatalf("\t%s\tShould not find a transaction for an account with none.", failed)
		}
		t.Logf("\t%s\tShould not find a transaction for an account with none.", success)

		if err := existing.Update(bill, pavel.Address(), 2); err != nil {
			t.Fatalf("\t%s\tShould be able to update the pending transaction: %v", failed, err)
		}

		if pooled := mp.Copy()[tx1.ID]; pooled.OutputMap[pavel.Address()] != 0 {
			t.Fatalf("\t%s\tShould not change the pool when a copy is updated.", failed)
		}
		t.Logf("\t%s\tShould not change the pool when a copy is updated.", success)

		if n := mp.Upsert(existing); n != 2 {
			t.Fatalf("\t%s\tShould replace the transaction by id: got %d entries", failed, n)
		}
		if pooled := mp.Copy()[tx1.ID]; pooled.OutputMap[pavel.Address()] != 2 {
			t.Fatalf("\t%s\tShould store the updated transaction.", failed)
		}
		t.Logf("\t%s\tShould replace the transaction by id.", success)

		tx3 := newTx(t, bill, 10, ed.Address(), 1)
		if n := mp.Upsert(tx3); n != 2 {
			t.Fatalf("\t%s\tShould keep one transaction per sender: got %d entries", failed, n)
		}
		if _, exists := mp.Copy()[tx1.ID]; exists {
			t.Fatalf("\t%s\tShould evict the older transaction of the sender.", failed)
		}
		t.Logf("\t%s\tShould keep one transaction per sender.", success)

		mp.ClearBlockTransactions(append(chain, database.Block{Data: []database.Tx{tx2}}))
		if mp.Count() != 1 {
			t.Fatalf("\t%s\tShould clear the transactions recorded in the chain: got %d", failed, mp.Count())
		}
		t.Logf("\t%s\tShould clear the transactions recorded in the chain.", success)

		mp.Clear([]string{tx3.ID})
		if mp.Count() != 0 {
			t.Fatalf("\t%s\tShould clear transactions by id: got %d", failed, mp.Count())
		}
		t.Logf("\t%s\tShould clear transactions by id.", success)

		mp.Upsert(tx1)
		mp.Upsert(tx2)
		mp.Truncate()
		if mp.Count() != 0 {
			t.Fatalf("\t%s\tShould be able to truncate the mempool.", failed)
		}
		t.Logf("\t%s\tShould be able to truncate the mempool.", success)
	}
}

func Test_ValidTransactions(t *testing.T) {
	gen := genesis.Default()
	chain := []database.Block{database.Genesis(gen)}

	bill := newSigner(t)
	pavel := newSigner(t)
	ed := newSigner(t)
	jack := newSigner(t)
	tony := newSigner(t)

	t.Log("Given the need to pick the transactions for the next block.")
	{
		mp := mempool.New()

		good1 := newTx(t, bill, 10, ed.Address(), 3)
		good2 := newTx(t, pavel, 10, ed.Address(), 4)

		tampered := newTx(t, ed, 10, bill.Address(), 5)
		tampered.OutputMap[bill.Address()] = 6

		overspent := newTx(t, jack, 20, bill.Address(), 15)

		// Outputs whose sum wraps around to the signed input amount.
		wrapped := database.Tx{
			ID: "wrapped",
			Input: database.Input{
				Address: tony.Address(),
				Amount:  1,
			},
			OutputMap: database.OutputMap{
				bill.Address(): 1_000_000,
				jack.Address(): math.MaxUint64 - 1_000_000 + 2,
				tony.Address(): 0,
			},
		}
		sig, err := tony.Sign(wrapped.OutputMap)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the outputs: %v", failed, err)
		}
		wrapped.Input.Signature = sig

		for _, tx := range []database.Tx{good1, good2, tampered, overspent, wrapped} {
			mp.Upsert(tx)
		}

		valid, rejected := mp.ValidTransactions(chain, gen.StartingBalance)

		if len(valid) != 2 {
			t.Fatalf("\t%s\tShould get 2 valid transactions: got %d", failed, len(valid))
		}
		t.Logf("\t%s\tShould get 2 valid transactions.", success)

		if valid[0].Input.Timestamp > valid[1].Input.Timestamp {
			t.Fatalf("\t%s\tShould get the oldest transaction first.", failed)
		}
		t.Logf("\t%s\tShould get the oldest transaction first.", success)

		if len(rejected) != 3 {
			t.Fatalf("\t%s\tShould report 3 rejected transactions: got %d", failed, len(rejected))
		}
		t.Logf("\t%s\tShould report 3 rejected transactions.", success)

		if txe := rejected[tampered.ID]; !errors.Is(txe.Err, database.ErrTransactionRejected) {
			t.Fatalf("\t%s\tShould reject the tampered transaction: %v", failed, txe.Err)
		}
		t.Logf("\t%s\tShould reject the tampered transaction.", success)

		if txe := rejected[overspent.ID]; !errors.Is(txe.Err, database.ErrInsufficientFunds) {
			t.Fatalf("\t%s\tShould reject the overspent transaction: %v", failed, txe.Err)
		}
		t.Logf("\t%s\tShould reject the overspent transaction.", success)

		if txe := rejected[wrapped.ID]; !errors.Is(txe.Err, database.ErrTransactionRejected) {
			t.Fatalf("\t%s\tShould reject outputs that overflow: %v", failed, txe.Err)
		}
		t.Logf("\t%s\tShould reject outputs that overflow.", success)

		if mp.Count() != 5 {
			t.Fatalf("\t%s\tShould leave the rejected transactions in the pool: got %d", failed, mp.Count())
		}
		t.Logf("\t%s\tShould leave the rejected transactions in the pool.", success)

		mp.Delete(tampered.ID)
		mp.Delete(overspent.ID)
		mp.Delete(wrapped.ID)
		if _, rejected := mp.ValidTransactions(chain, gen.StartingBalance); rejected != nil {
			t.Fatalf("\t%s\tShould report no rejects for a clean pool: %v", failed, rejected)
		}
		t.Logf("\t%s\tShould report no rejects for a clean pool.", success)

		db := database.New(gen)
		if _, err := db.AddBlock(context.Background(), []database.Tx{good1}, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		valid, rejected = mp.ValidTransactions(db.Copy(), gen.StartingBalance)
		if len(valid) != 1 || valid[0].ID != good2.ID {
			t.Fatalf("\t%s\tShould only get the unrecorded transaction: %v", failed, valid)
		}
		t.Logf("\t%s\tShould only get the unrecorded transaction.", success)

		if txe := rejected[good1.ID]; !errors.Is(txe.Err, database.ErrTransactionRecorded) {
			t.Fatalf("\t%s\tShould reject a transaction already in the chain: %v", failed, txe.Err)
		}
		t.Logf("\t%s\tShould reject a transaction already in the chain.", success)
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

func newTx(t *testing.T, from signer, balance uint64, to database.AccountID, amount uint64) database.Tx {
	tx, err := database.NewTx(from, balance, to, amount)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create a transaction: %v", failed, err)
	}

	return tx
}
