package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/pricing"
)

func newProductsCmd(c *cli) *cobra.Command {
	var search, category string

	cmd := &cobra.Command{
		Use:   "products [id]",
		Short: "List the catalog or show one product",
		Long: `Without arguments lists the catalog visible to the current persona.
A non-empty --search ignores --category.
With a product id prints its parameters, options and addons.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := c.repository(cmd.Context())
			p := c.sess.Persona()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				prod, err := repo.Product(p, args[0])
				if err != nil {
					return err
				}
				printProduct(c, cmd, prod)
				return nil
			}

			list := repo.Products(p, search, category)
			if len(list) == 0 {
				fmt.Fprintln(out, "No products found")
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tFROM")
			for _, pr := range list {
				name := pr.Name
				if pr.InternalOnly {
					name += " (internal)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", pr.ID, name, pr.Category, money(pr.BasePrice))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "search in name, description and category")
	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category ("+strings.Join(domain.DefaultCategories(), ", ")+")")
	return cmd
}

func printProduct(c *cli, cmd *cobra.Command, p *domain.Product) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(out, "%s\n", p.Description)
	fmt.Fprintf(out, "Category: %s, base price %s\n", p.Category, money(p.BasePrice))

	for _, cfg := range p.Configurations {
		switch {
		case cfg.Type == domain.ConfigTypeSelect:
			opts := make([]string, 0, len(cfg.Options))
			for _, o := range cfg.Options {
				opts = append(opts, fmt.Sprintf("%s=%s x%g", o.Value, o.Label, o.PriceMultiplier))
			}
			fmt.Fprintf(out, "  --set %q: %s\n", cfg.Name+"=<value>", strings.Join(opts, "; "))
		case cfg.IsNumeric():
			var bounds []string
			if cfg.Min != nil {
				bounds = append(bounds, fmt.Sprintf("min %g", *cfg.Min))
			}
			if cfg.Max != nil {
				bounds = append(bounds, fmt.Sprintf("max %g", *cfg.Max))
			}
			if cfg.Unit != "" {
				bounds = append(bounds, cfg.Unit)
			}
			fmt.Fprintf(out, "  --set %q: number, %s\n", cfg.Name+"=<n>", strings.Join(bounds, ", "))
		}
	}
	for _, a := range p.Addons {
		fmt.Fprintf(out, "  --addon %s: %s +%s\n", a.ID, a.Name, money(a.Price))
	}

	def := pricing.DefaultSelections(p)
	item, err := c.cfg.Pricing.Calculator().Configure(p, pricing.Draft{Quantity: 1, Selections: def})
	if err == nil {
		fmt.Fprintf(out, "Default configuration: %s / unit\n", money(item.UnitPrice))
	}
}

func newConfigureCmd(c *cli) *cobra.Command {
	var (
		sets   []string
		addons []string
		qty    int
		itemID string
	)

	cmd := &cobra.Command{
		Use:   "configure <productId>",
		Short: "Configure a product and put it in the cart",
		Long: `Prices a product with the given parameters and adds it to the cart.
Unset parameters take defaults: the first option of a select, the minimum of a number.
With --item the existing cart line is edited in place.`,
		Example: `  pricepoint configure vm-basic --set "Operating System=windows" --addon backup --qty 2
  pricepoint configure storage-blob --set "Capacity (GB)=500"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := c.repository(ctx)
			cart := c.sess.Cart()

			sel, err := parseSelections(sets)
			if err != nil {
				return err
			}
			d := pricing.Draft{ItemID: itemID, Quantity: qty, Selections: sel, Addons: addons}

			if itemID != "" {
				prev, ok := cart.Find(itemID)
				if !ok {
					return fmt.Errorf("cart item %s: %w", itemID, domain.ErrNotFound)
				}
				if prev.ProductID != args[0] {
					return fmt.Errorf("%w: item %s is %s, not %s", domain.ErrInvalidInput, itemID, prev.ProductID, args[0])
				}
				d = mergeDraft(prev, d, cmd.Flags().Changed("addon"))
			}

			item, err := repo.Configure(c.sess.Persona(), args[0], d)
			if err != nil {
				return err
			}
			cart.Save(item)
			if err := c.sess.SaveCart(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s x%d = %s (item %s)\n", verb(itemID), item.Name, item.Quantity, money(item.TotalPrice), item.ID)
			fmt.Fprintf(out, "Cart total: %s\n", money(cart.Total()))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, `parameter value as "Name=value" (repeatable)`)
	cmd.Flags().StringSliceVar(&addons, "addon", nil, "addon id (repeatable)")
	cmd.Flags().IntVarP(&qty, "qty", "q", 0, "quantity (default 1, or unchanged with --item)")
	cmd.Flags().StringVar(&itemID, "item", "", "edit an existing cart item")
	return cmd
}

func verb(itemID string) string {
	if itemID != "" {
		return "Updated"
	}
	return "Added"
}

// parseSelections разбирает --set "Name=value"; число становится числом
func parseSelections(sets []string) (domain.Selections, error) {
	sel := make(domain.Selections, len(sets))
	for _, s := range sets {
		i := strings.LastIndex(s, "=")
		if i <= 0 {
			return nil, fmt.Errorf("%w: --set %q must be Name=value", domain.ErrInvalidInput, s)
		}
		name := strings.TrimSpace(s[:i])
		sel[name] = domain.ParseConfigValue(s[i+1:])
	}
	return sel, nil
}

// mergeDraft — редактирование: непереданное берётся из позиции корзины
func mergeDraft(prev domain.CartItem, d pricing.Draft, addonsChanged bool) pricing.Draft {
	merged := make(domain.Selections, len(prev.SelectedConfigs)+len(d.Selections))
	for k, v := range prev.SelectedConfigs {
		merged[k] = v
	}
	for k, v := range d.Selections {
		merged[k] = v
	}
	d.Selections = merged
	if !addonsChanged {
		d.Addons = prev.SelectedAddons
	}
	if d.Quantity < 1 {
		d.Quantity = prev.Quantity
	}
	return d
}

func sortedKeys(sel domain.Selections) []string {
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
