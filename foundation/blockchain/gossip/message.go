// Package gossip propagates newly mined chains and new or updated
// transactions to the known peers of a node.
package gossip

import (
	"errors"
	"fmt"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
)

// Kind identifies the payload carried by a message.
type Kind string

// Set of message kinds.
const (
	KindChain       Kind = "CHAIN"
	KindTransaction Kind = "TRANSACTION"
)

// Message is what is exchanged between nodes. Exactly one payload field is
// set, the one matching the kind.
type Message struct {
	Kind  Kind             `json:"kind"`
	From  string           `json:"from,omitempty"`
	Chain []database.Block `json:"chain,omitempty"`
	Tx    *database.Tx     `json:"transaction,omitempty"`
}

// NewChainMessage constructs a message carrying the full chain.
func NewChainMessage(from string, chain []database.Block) Message {
	return Message{
		Kind:  KindChain,
		From:  from,
		Chain: chain,
	}
}

// NewTransactionMessage constructs a message carrying a transaction.
func NewTransactionMessage(from string, tx database.Tx) Message {
	return Message{
		Kind: KindTransaction,
		From: from,
		Tx:   &tx,
	}
}

// Validate checks the message carries the payload for its kind.
func (m Message) Validate() error {
	switch m.Kind {
	case KindChain:
		if len(m.Chain) == 0 {
			return errors.New("chain message with no blocks")
		}
		if m.Tx != nil {
			return errors.New("chain message carrying a transaction")
		}

	case KindTransaction:
		if m.Tx == nil {
			return errors.New("transaction message with no transaction")
		}
		if m.Chain != nil {
			return errors.New("transaction message carrying a chain")
		}

	default:
		return fmt.Errorf("unknown message kind %q", m.Kind)
	}

	return nil
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	if m.Chain != nil {
		m.Chain = database.CopyChain(m.Chain)
	}

	if m.Tx != nil {
		tx := m.Tx.Clone()
		m.Tx = &tx
	}

	return m
}

// =============================================================================

// Receiver represents the behavior of a node that applies gossip messages.
type Receiver interface {
	ProcessChain(chain []database.Block) error
	ProcessTransaction(tx database.Tx) error
}

// Dispatch validates the message and hands its payload to the receiver.
func Dispatch(msg Message, r Receiver) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	switch msg.Kind {
	case KindChain:
		return r.ProcessChain(msg.Chain)
	default:
		return r.ProcessTransaction(*msg.Tx)
	}
}
