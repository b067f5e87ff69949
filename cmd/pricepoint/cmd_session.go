package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pricepoint-backend/internal/domain"
)

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login <PRESALES|SALES_MANAGER|SALES_ADMIN>",
		Short: "Switch to an internal persona",
		Long: `Switch the local session to an internal persona.

There is no password: the persona only controls what the client shows and
what the backend allows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := domain.ParsePersona(args[0])
			if !ok {
				return fmt.Errorf("%w: unknown persona %q", domain.ErrInvalidInput, args[0])
			}
			if err := c.sess.Login(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", p.Label())
			return nil
		},
	}
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Back to PUBLIC, the cart is cleared",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sess.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show persona, sections and backend status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := c.sess.Persona()
			repo := c.repository(ctx)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Persona:  %s\n", p.Label())
			fmt.Fprintf(out, "Sections: %s\n", strings.Join(domain.Sections(p), ", "))
			fmt.Fprintf(out, "Backend:  %s\n", c.mode())
			fmt.Fprintf(out, "Cart:     %d item(s), %s\n", c.sess.Cart().Len(), money(c.sess.Cart().Total()))

			if !p.IsInternal() {
				return nil
			}
			st, err := repo.Stats(ctx, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Quotes:   %d total, %d draft, %d pending, %s value\n",
				st.Total, st.Drafts, st.Pending, money(st.TotalValue))
			return nil
		},
	}
}
