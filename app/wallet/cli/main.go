// This program provides a wallet that signs transfers and talks to a
// node's public API.
package main

import "github.com/horcruxchain/horcrux/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
