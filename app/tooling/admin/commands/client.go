// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
)

// Client reads the chain and genesis from a node's public API.
type Client struct {
	url    string
	client *http.Client
}

// NewClient constructs a client for the node at the url.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Chain returns the node's current chain.
func (c *Client) Chain() ([]database.Block, error) {
	var chain []database.Block
	if err := c.get("/v1/blocks", &chain); err != nil {
		return nil, err
	}
	return chain, nil
}

// Genesis returns the node's genesis values.
func (c *Client) Genesis() (genesis.Genesis, error) {
	var gen genesis.Genesis
	if err := c.get("/v1/genesis", &gen); err != nil {
		return genesis.Genesis{}, err
	}
	return gen, nil
}

func (c *Client) get(path string, dataRecv any) error {
	resp, err := c.client.Get(c.url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: status[%d]: %s", path, resp.StatusCode, msg)
	}

	return json.NewDecoder(resp.Body).Decode(dataRecv)
}
