package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/pricing"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCart(cmd.OutOrStdout(), c.sess.Cart().Items())
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show cart items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCart(cmd.OutOrStdout(), c.sess.Cart().Items())
		},
	}

	qty := &cobra.Command{
		Use:   "qty <itemId> <delta>",
		Short: "Change quantity by delta (never below 1)",
		Example: `  pricepoint cart qty k3j9x0a1b +1
  pricepoint cart qty k3j9x0a1b -- -1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(strings.TrimPrefix(args[1], "+"))
			if err != nil {
				return fmt.Errorf("%w: delta %q is not a number", domain.ErrInvalidInput, args[1])
			}
			it, err := c.sess.Cart().UpdateQuantity(args[0], delta)
			if err != nil {
				return err
			}
			if err := c.sess.SaveCart(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s x%d = %s\n", it.Name, it.Quantity, money(it.TotalPrice))
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <itemId>",
		Aliases: []string{"remove"},
		Short:   "Remove an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.sess.Cart().Remove(args[0]) {
				return fmt.Errorf("cart item %s: %w", args[0], domain.ErrNotFound)
			}
			if err := c.sess.SaveCart(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sess.ClearCart(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
			return nil
		},
	}

	cmd.AddCommand(list, qty, rm, clearCmd)
	return cmd
}

func printCart(w io.Writer, items []domain.CartItem) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tCONFIG\tQTY\tUNIT\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.ID, it.Name, describeItem(it), it.Quantity, money(it.UnitPrice), money(it.TotalPrice))
	}
	fmt.Fprintf(tw, "\t\t\t\tTotal\t%s\n", money(pricing.Total(items)))
	return tw.Flush()
}

// describeItem — "Operating System: windows, +backup"
func describeItem(it domain.CartItem) string {
	parts := make([]string, 0, len(it.SelectedConfigs)+len(it.SelectedAddons))
	for _, k := range sortedKeys(it.SelectedConfigs) {
		parts = append(parts, k+": "+it.SelectedConfigs[k].String())
	}
	for _, a := range it.SelectedAddons {
		parts = append(parts, "+"+a)
	}
	return strings.Join(parts, ", ")
}
