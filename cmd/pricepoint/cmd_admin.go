package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pricepoint-backend/internal/domain"
)

func newAdminCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Approval rules, product rules and users (SALES_ADMIN)",
		Long: `Admin section. Lists work offline with the built-in defaults,
creating anything needs the backend.`,
	}
	cmd.AddCommand(newRulesCmd(c), newConfigRulesCmd(c), newUsersCmd(c))
	return cmd
}

// requireAdmin — раздел admin виден только SALES_ADMIN
func requireAdmin(c *cli) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if !c.sess.Persona().CanAdmin() {
			return fmt.Errorf("%w: admin section needs SALES_ADMIN (pricepoint login SALES_ADMIN)", domain.ErrForbidden)
		}
		return nil
	}
}

func newRulesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Short:   "List approval workflow rules",
		Args:    cobra.NoArgs,
		PreRunE: requireAdmin(c),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rules, err := c.repository(ctx).WorkflowRules(ctx, c.sess.Persona())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCONDITION\tTHRESHOLD\tAPPROVER")
			for _, r := range rules {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%s\n", r.ID, r.Name, r.Condition, r.Threshold, r.Approver.Label())
			}
			return tw.Flush()
		},
	}

	var (
		rule     domain.WorkflowRule
		approver string
	)
	add := &cobra.Command{
		Use:     "add",
		Short:   "Create an approval rule",
		Example: `  pricepoint admin rules add --name "Big deals" --condition total_value --threshold 100000 --approver SALES_ADMIN`,
		Args:    cobra.NoArgs,
		PreRunE: requireAdmin(c),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, ok := domain.ParsePersona(approver)
			if !ok {
				return fmt.Errorf("%w: unknown approver %q", domain.ErrInvalidInput, approver)
			}
			rule.Approver = p
			if err := rule.Validate(); err != nil {
				return err
			}
			created, err := c.repository(ctx).CreateWorkflowRule(ctx, c.sess.Persona(), rule)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s created: %s\n", created.ID, created.Name)
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&rule.Name, "name", "", "rule name")
	f.StringVar(&rule.Condition, "condition", domain.ConditionTotalValue, "item_value, total_value or discount_pct")
	f.Float64Var(&rule.Threshold, "threshold", 0, "threshold value")
	f.StringVar(&approver, "approver", string(domain.PersonaSalesManager), "approving persona")

	cmd.AddCommand(add)
	return cmd
}

func newConfigRulesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config-rules",
		Short:   "List product configuration rules",
		Args:    cobra.NoArgs,
		PreRunE: requireAdmin(c),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rules, err := c.repository(ctx).ConfigRules(ctx, c.sess.Persona())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tPRODUCT\tWHEN\tACTION\tTARGET")
			for _, r := range rules {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s=%s\t%s\t%s\n",
					r.ID, r.Name, r.ProductID, r.TriggerConfig, r.TriggerValue, r.Action, r.RestrictedConfig)
			}
			return tw.Flush()
		},
	}

	var rule domain.ConfigRule
	add := &cobra.Command{
		Use:     "add",
		Short:   "Create a product configuration rule",
		Example: `  pricepoint admin config-rules add --name "No HA on GP" --product db-postgres --when "Tier=gp" --action DISABLE --target "High Availability"`,
		Args:    cobra.NoArgs,
		PreRunE: requireAdmin(c),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			when, _ := cmd.Flags().GetString("when")
			if when != "" {
				sel, err := parseSelections([]string{when})
				if err != nil {
					return err
				}
				for k, v := range sel {
					rule.TriggerConfig, rule.TriggerValue = k, v.String()
				}
			}
			if err := rule.Validate(); err != nil {
				return err
			}
			created, err := c.repository(ctx).CreateConfigRule(ctx, c.sess.Persona(), rule)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s created: %s\n", created.ID, created.Name)
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&rule.Name, "name", "", "rule name")
	f.StringVar(&rule.ProductID, "product", "", "product id")
	f.String("when", "", `trigger as "Parameter=value"`)
	f.StringVar(&rule.Action, "action", domain.RuleActionRequire, "REQUIRE, DISABLE or SET_VALUE")
	f.StringVar(&rule.RestrictedConfig, "target", "", "affected parameter or addon")

	cmd.AddCommand(add)
	return cmd
}

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Short:   "List team members",
		Args:    cobra.NoArgs,
		PreRunE: requireAdmin(c),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			users, err := c.repository(ctx).Users(ctx, c.sess.Persona())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSINCE")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role.Label(), u.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}

	var name, email, role string
	add := &cobra.Command{
		Use:     "add",
		Short:   "Add a team member",
		Args:    cobra.NoArgs,
		PreRunE: requireAdmin(c),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, ok := domain.ParsePersona(role)
			if !ok || !p.IsInternal() {
				return fmt.Errorf("%w: role must be PRESALES, SALES_MANAGER or SALES_ADMIN", domain.ErrInvalidInput)
			}
			u, err := c.repository(ctx).CreateUser(ctx, c.sess.Persona(), name, email, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s created: %s <%s>\n", u.ID, u.Name, u.Email)
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&name, "name", "", "full name")
	f.StringVar(&email, "email", "", "email")
	f.StringVar(&role, "role", string(domain.PersonaPresales), "PRESALES, SALES_MANAGER or SALES_ADMIN")

	cmd.AddCommand(add)
	return cmd
}
