package mempool

import "github.com/horcruxchain/horcrux/foundation/blockchain/database"

// byTimestamp provides sorting support by the input timestamp, falling back
// to the id so the order is the same on every node.
type byTimestamp []database.Tx

// Len returns the number of transactions in the list.
func (bt byTimestamp) Len() int {
	return len(bt)
}

// Less helps to sort the list by timestamp in ascending order to keep the
// transactions in the order they were last signed.
func (bt byTimestamp) Less(i, j int) bool {
	if bt[i].Input.Timestamp == bt[j].Input.Timestamp {
		return bt[i].ID < bt[j].ID
	}

	return bt[i].Input.Timestamp < bt[j].Input.Timestamp
}

// Swap moves transactions in the order of the timestamp value.
func (bt byTimestamp) Swap(i, j int) {
	bt[i], bt[j] = bt[j], bt[i]
}
