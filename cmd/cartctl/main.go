// Command cartctl drives the cart reconciliation engine from a terminal:
// anonymous carts live in a local SQLite file, signed-in carts on the API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	dbPath  string
	apiURL  string
	session string
	merge   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Inspect and edit a Boltform cart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "cart.db", "local cart database")
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "http://localhost:8080", "Boltform API origin")
	root.PersistentFlags().StringVar(&opts.session, "token", os.Getenv("BOLTFORM_SESSION"), "session token; signed-in mode when set")
	root.PersistentFlags().BoolVar(&opts.merge, "merge", false, "on sign-in, merge the local cart into the server cart")

	root.AddCommand(
		addCmd(opts),
		removeCmd(opts),
		qtyCmd(opts),
		clearCmd(opts),
		showCmd(opts),
	)
	return root
}
