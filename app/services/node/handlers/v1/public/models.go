package public

import (
	"strconv"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
)

type mineRequest struct {
	Data []database.Tx `json:"data"`
}

type transactRequest struct {
	Recipient string     `json:"recipient" validate:"required,account"`
	Amount    amountText `json:"amount" validate:"required"`
}

// amountText holds the amount as sent by the client. Any JSON value is
// accepted while decoding so a malformed amount is reported as an invalid
// amount and not as a broken payload.
type amountText string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *amountText) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*a = amountText(s)
	return nil
}

type account struct {
	Address database.AccountID `json:"address"`
	Name    string             `json:"name"`
	Balance uint64             `json:"balance"`
}

type mineResponse struct {
	Block database.Block   `json:"block"`
	Chain []database.Block `json:"chain"`
}
