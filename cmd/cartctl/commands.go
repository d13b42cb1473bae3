package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"boltform_back_end/internal/cartsync"
	"boltform_back_end/internal/models"

	"github.com/spf13/cobra"
)

// withEngine opens the engine for the selected mode, runs fn, waits for the
// remote writes and prints the resulting cart.
func withEngine(cmd *cobra.Command, opts *options, fn func(*cartsync.Engine) error) error {
	local, err := cartsync.OpenSQLite(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.dbPath, err)
	}
	defer local.Close()

	engineOpts := []cartsync.Option{}
	if opts.merge {
		engineOpts = append(engineOpts, cartsync.WithMergePolicy(cartsync.MergeSumQuantities))
	}
	engine := cartsync.NewEngine(local, cartsync.NewHTTPRemote(opts.apiURL, opts.session), engineOpts...)
	defer engine.Close()

	state := cartsync.AuthState{Status: cartsync.StatusAnonymous}
	if opts.session != "" {
		// the API resolves the user from the session token itself
		state = cartsync.AuthState{Status: cartsync.StatusAuthenticated, UserID: "session"}
	}
	engine.SetAuth(cmd.Context(), state)

	if err := fn(engine); err != nil {
		return err
	}
	engine.Flush()

	printCart(cmd.OutOrStdout(), engine.Cart())
	return nil
}

func addCmd(opts *options) *cobra.Command {
	var product cartsync.Product
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product.ID = args[0]
			if product.Title == "" {
				product.Title = args[0]
			}
			return withEngine(cmd, opts, func(e *cartsync.Engine) error {
				e.AddToCart(product)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&product.Title, "title", "", "product title")
	cmd.Flags().Float64Var(&product.Price, "price", 0, "unit price")
	cmd.Flags().StringVar(&product.Image, "image", "", "image URL")
	return cmd
}

func removeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a product line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, opts, func(e *cartsync.Engine) error {
				e.RemoveFromCart(args[0])
				return nil
			})
		},
	}
}

func qtyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <id> <quantity>",
		Short: "Set the quantity of a product line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			return withEngine(cmd, opts, func(e *cartsync.Engine) error {
				return e.UpdateQuantity(args[0], qty)
			})
		},
	}
}

func clearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, opts, func(e *cartsync.Engine) error {
				e.ClearCart()
				return nil
			})
		},
	}
}

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, opts, func(*cartsync.Engine) error { return nil })
		},
	}
}

func printCart(w io.Writer, lines []models.CartLine) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", l.ID, l.Title, l.Quantity, l.Price)
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%.2f\n", models.CartTotal(lines))
	tw.Flush()
}
