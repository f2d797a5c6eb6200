// This program performs administrative tasks against a running node.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/horcruxchain/horcrux/app/tooling/admin/commands"
	"github.com/horcruxchain/horcrux/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	if len(os.Args) < 2 {
		return errors.New("usage: admin chain|balances|verify [node url]")
	}

	url := "http://localhost:8080"
	if len(os.Args) > 2 {
		url = os.Args[2]
	}

	log.Infow("admin", "build", build, "command", os.Args[1], "node", url)

	return processCommands(os.Args[1], commands.NewClient(url))
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(command string, client *commands.Client) error {
	switch command {
	case "chain":
		if err := commands.Chain(os.Stdout, client); err != nil {
			return fmt.Errorf("printing chain: %w", err)
		}

	case "balances":
		if err := commands.Balances(os.Stdout, client); err != nil {
			return fmt.Errorf("printing balances: %w", err)
		}

	case "verify":
		if err := commands.Verify(os.Stdout, client); err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q", command)
	}

	return nil
}
