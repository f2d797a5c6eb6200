package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

func Test_Genesis(t *testing.T) {
	gen := genesis.Default()
	block := database.Genesis(gen)

	t.Log("Given the need to build the genesis block.")
	{
		if block.Timestamp != 1 || block.LastHash != signature.ZeroHash || block.Hash != gen.Hash {
			t.Fatalf("\t%s\tShould have the genesis fields: %+v", failed, block)
		}
		t.Logf("\t%s\tShould have the genesis fields.", success)

		if block.Difficulty != 3 || block.Nonce != 0 || len(block.Data) != 0 {
			t.Fatalf("\t%s\tShould start at difficulty 3 with no data: %+v", failed, block)
		}
		t.Logf("\t%s\tShould start at difficulty 3 with no data.", success)

		if !block.Equal(database.Genesis(gen)) {
			t.Fatalf("\t%s\tShould build the same block every time.", failed)
		}
		t.Logf("\t%s\tShould build the same block every time.", success)
	}
}

func Test_AdjustDifficulty(t *testing.T) {
	type table struct {
		name      string
		prev      database.Block
		timestamp int64
		exp       uint
	}

	mineRate := time.Second

	tt := []table{
		{
			name:      "fast",
			prev:      database.Block{Timestamp: 10_000, Difficulty: 3},
			timestamp: 10_500,
			exp:       4,
		},
		{
			name:      "exact",
			prev:      database.Block{Timestamp: 10_000, Difficulty: 3},
			timestamp: 11_000,
			exp:       4,
		},
		{
			name:      "slow",
			prev:      database.Block{Timestamp: 10_000, Difficulty: 3},
			timestamp: 11_001,
			exp:       2,
		},
		{
			name:      "floor",
			prev:      database.Block{Timestamp: 10_000, Difficulty: 0},
			timestamp: 50_000,
			exp:       1,
		},
		{
			name:      "lowest",
			prev:      database.Block{Timestamp: 10_000, Difficulty: 1},
			timestamp: 50_000,
			exp:       0,
		},
	}

	t.Log("Given the need to retarget the difficulty of new blocks.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s block.", testID, tst.name)
				{
					got := database.AdjustDifficulty(tst.prev, tst.timestamp, mineRate)
					if got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get the right difficulty: got %d, exp %d", failed, testID, got, tst.exp)
					}
					t.Logf("\t%s\tTest %d:\tShould get the right difficulty.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_IsHashSolved(t *testing.T) {
	type table struct {
		name       string
		hash       string
		difficulty uint
		exp        bool
	}

	tt := []table{
		{"zero", "0xff00000000000000000000000000000000000000000000000000000000000000", 0, true},
		{"byte", "0x00ff000000000000000000000000000000000000000000000000000000000000", 8, true},
		{"byte-over", "0x00ff000000000000000000000000000000000000000000000000000000000000", 9, false},
		{"nibble", "0x0fff000000000000000000000000000000000000000000000000000000000000", 4, true},
		{"nibble-over", "0x0fff000000000000000000000000000000000000000000000000000000000000", 5, false},
		{"bits", "0x1fff000000000000000000000000000000000000000000000000000000000000", 3, true},
		{"short", "0x00ff", 1, false},
		{"garbage", "not-a-hash", 0, false},
	}

	t.Log("Given the need to check a hash against the difficulty.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling the %s hash.", testID, tst.name)
				{
					if got := database.IsHashSolved(tst.difficulty, tst.hash); got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %v for difficulty %d: got %v", failed, testID, tst.exp, tst.difficulty, got)
					}
					t.Logf("\t%s\tTest %d:\tShould get %v for difficulty %d.", success, testID, tst.exp, tst.difficulty)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_POW(t *testing.T) {
	gen := genesis.Default()
	prev := database.Genesis(gen)

	t.Log("Given the need to mine a block.")
	{
		var events int
		ev := func(v string, args ...any) { events++ }

		block, err := database.POW(context.Background(), database.POWArgs{
			PrevBlock: prev,
			MineRate:  gen.MineRateDuration(),
			EvHandler: ev,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine the block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine the block.", success)

		if block.LastHash != prev.Hash {
			t.Fatalf("\t%s\tShould link to the previous block: got %s", failed, block.LastHash)
		}
		t.Logf("\t%s\tShould link to the previous block.", success)

		if block.Data == nil {
			t.Fatalf("\t%s\tShould record empty data as an empty list.", failed)
		}
		t.Logf("\t%s\tShould record empty data as an empty list.", success)

		if block.Hash != block.ComputeHash() {
			t.Fatalf("\t%s\tShould have a hash over the block fields.", failed)
		}
		t.Logf("\t%s\tShould have a hash over the block fields.", success)

		if !database.IsHashSolved(block.Difficulty, block.Hash) {
			t.Fatalf("\t%s\tShould have a hash that meets the difficulty %d: %s", failed, block.Difficulty, block.Hash)
		}
		t.Logf("\t%s\tShould have a hash that meets the difficulty.", success)

		if err := block.ValidateBlock(prev); err != nil {
			t.Fatalf("\t%s\tShould validate against the previous block: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate against the previous block.", success)

		if events == 0 {
			t.Fatalf("\t%s\tShould report mining events.", failed)
		}
		t.Logf("\t%s\tShould report mining events.", success)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := database.POW(ctx, database.POWArgs{PrevBlock: block, MineRate: gen.MineRateDuration()}); err == nil {
			t.Fatalf("\t%s\tShould stop mining on a cancelled context.", failed)
		}
		t.Logf("\t%s\tShould stop mining on a cancelled context.", success)
	}
}

func Test_ComputeHash(t *testing.T) {
	block := database.Block{
		Timestamp:  2000,
		LastHash:   signature.ZeroHash,
		Nonce:      7,
		Difficulty: 2,
	}

	t.Log("Given the need to hash the block fields.")
	{
		exp := signature.Hash(int64(2000), signature.ZeroHash, []database.Tx{}, uint64(7), uint(2))
		if got := block.ComputeHash(); got != exp {
			t.Fatalf("\t%s\tShould hash the fields in order: got %s, exp %s", failed, got, exp)
		}
		t.Logf("\t%s\tShould hash the fields in order.", success)

		changed := block
		changed.Nonce++
		if changed.ComputeHash() == block.ComputeHash() {
			t.Fatalf("\t%s\tShould produce a new hash when a field changes.", failed)
		}
		t.Logf("\t%s\tShould produce a new hash when a field changes.", success)
	}
}
