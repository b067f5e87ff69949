package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/quotes"
)

func newQuoteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quote",
		Aliases: []string{"quotes"},
		Short:   "Generate, list and manage quotes",
	}
	cmd.AddCommand(
		newQuoteGenerateCmd(c),
		newQuoteListCmd(c),
		newQuoteShowCmd(c),
		newQuoteStatusCmd(c),
		newQuoteDiscountCmd(c),
		newQuoteAssignCmd(c),
	)
	return cmd
}

func newQuoteGenerateCmd(c *cli) *cobra.Command {
	var contact domain.ContactDetails

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Turn the cart into a quote",
		Long: `Creates a DRAFT quote from the cart. Prices are recalculated from the catalog.
Without a backend the quote is saved locally as QT-LOC-NNNN.
The cart is cleared on success.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := c.repository(ctx)
			out := cmd.OutOrStdout()

			q, local, err := repo.CreateQuote(ctx, c.sess.Persona(), contact, c.sess.Cart().Items())
			if err != nil {
				return err
			}
			if err := c.sess.ClearCart(ctx); err != nil {
				return err
			}

			where := "on the backend"
			if local {
				where = "locally"
			}
			fmt.Fprintf(out, "Quote %s saved %s: %s, valid until %s\n",
				q.ID, where, money(q.TotalEstimate), q.ValidUntil().Format("2006-01-02"))
			if link := c.publicLink(q); link != "" {
				fmt.Fprintf(out, "Printable: %s\n", link)
			}
			c.printNotifications(out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&contact.FullName, "name", "", "customer full name")
	f.StringVar(&contact.Organization, "org", "", "organization")
	f.StringVar(&contact.Mobile, "mobile", "", "mobile phone")
	f.StringVar(&contact.Email, "email", "", "email")
	return cmd
}

// publicLink — ссылка на печатную версию, только для КП с бэкенда
func (c *cli) publicLink(q *domain.Quote) string {
	if q.PublicPath == "" || domain.IsLocalQuoteID(q.ID) {
		return ""
	}
	return strings.TrimRight(c.cfg.Client.APIBase, "/") + q.PublicPath
}

func newQuoteListCmd(c *cli) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes visible to the current persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := c.repository(ctx).Quotes(ctx, c.sess.Persona())
			if err != nil {
				return err
			}

			var filter domain.QuoteStatus
			if status != "" {
				st, ok := domain.ParseQuoteStatus(status)
				if !ok {
					return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
				}
				filter = st
			}

			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tCUSTOMER\tSTATUS\tTOTAL\tCREATED\tBY")
			n := 0
			for _, q := range list {
				if filter != "" && q.Status != filter {
					continue
				}
				n++
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					q.ID, customerLine(q.Customer), q.Status, money(q.NetTotal()),
					q.CreatedAt.Format("2006-01-02"), q.CreatedBy.Label())
			}
			if n == 0 {
				fmt.Fprintf(out, "No quotes (%s)\n", c.mode())
				return nil
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only quotes with this status")
	return cmd
}

func customerLine(cd domain.ContactDetails) string {
	if cd.Organization == "" {
		return cd.FullName
	}
	return cd.FullName + ", " + cd.Organization
}

func newQuoteShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <quoteId>",
		Short: "Show a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			q, err := c.repository(ctx).Quote(ctx, c.sess.Persona(), args[0])
			if err != nil {
				return err
			}
			return printQuote(cmd.OutOrStdout(), c, q)
		},
	}
}

func printQuote(w io.Writer, c *cli, q *domain.Quote) error {
	fmt.Fprintf(w, "Quote %s [%s]\n", q.ID, q.Status)
	fmt.Fprintf(w, "Customer:    %s\n", customerLine(q.Customer))
	fmt.Fprintf(w, "Contact:     %s, %s\n", q.Customer.Email, q.Customer.Mobile)
	fmt.Fprintf(w, "Created:     %s by %s\n", q.CreatedAt.Format("2006-01-02 15:04"), q.CreatedBy.Label())
	fmt.Fprintf(w, "Valid until: %s\n", q.ValidUntil().Format("2006-01-02"))
	if q.AssignedTo != "" {
		fmt.Fprintf(w, "Assigned to: %s\n", q.AssignedTo)
	}
	if err := printCart(w, q.Items); err != nil {
		return err
	}
	if q.DiscountValue > 0 {
		fmt.Fprintf(w, "Discount:    -%s\n", money(q.DiscountValue))
	}
	fmt.Fprintf(w, "Net total:   %s\n", money(q.NetTotal()))
	if link := c.publicLink(q); link != "" {
		fmt.Fprintf(w, "Printable:   %s\n", link)
	}
	return nil
}

func newQuoteStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status <quoteId> <DRAFT|FINAL|PENDING_APPROVAL|APPROVED|REJECTED>",
		Short: "Change quote status",
		Long: `Allowed transitions: DRAFT -> FINAL|PENDING_APPROVAL, FINAL -> PENDING_APPROVAL,
PENDING_APPROVAL -> APPROVED|REJECTED (managers and admins), REJECTED -> DRAFT.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := domain.QuoteStatus(strings.ToUpper(args[1]))
			return c.patchQuote(cmd, args[0], quotes.Patch{Status: &st})
		},
	}
}

func newQuoteDiscountCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "discount <quoteId> <amount>",
		Short: "Set an absolute discount (internal personas)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(strings.TrimPrefix(args[1], "$"), 64)
			if err != nil {
				return fmt.Errorf("%w: discount %q is not a number", domain.ErrInvalidInput, args[1])
			}
			return c.patchQuote(cmd, args[0], quotes.Patch{DiscountValue: &v})
		},
	}
}

func newQuoteAssignCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <quoteId> <name>",
		Short: "Assign a quote to a team member (internal personas)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			who := args[1]
			return c.patchQuote(cmd, args[0], quotes.Patch{AssignedTo: &who})
		},
	}
}

func (c *cli) patchQuote(cmd *cobra.Command, id string, patch quotes.Patch) error {
	ctx := cmd.Context()
	q, err := c.repository(ctx).UpdateQuote(ctx, c.sess.Persona(), id, patch)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Quote %s: %s, net %s\n", q.ID, q.Status, money(q.NetTotal()))
	c.printNotifications(out)
	return nil
}
