package cli

import (
	"github.com/spf13/cobra"
)

// donatorCommand groups donator flag operations on the data repository.
func (c *CLI) donatorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donator",
		Short: "Manage donator flags in the data repository",
	}

	cmd.AddCommand(c.donatorStatusCommand())
	cmd.AddCommand(c.donatorSetCommand())

	return cmd
}

// donatorStatusCommand creates the "donator status" subcommand.
func (c *CLI) donatorStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <login>",
		Short: "Check whether a user is a donator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			isDonator, err := sess.svc.DonatorStatus(ctx, args[0])
			if err != nil {
				return err
			}
			if isDonator {
				printSuccess("%s is a donator", args[0])
			} else {
				printInfo("%s is not a donator", args[0])
			}
			return nil
		},
	}
}

// donatorSetCommand creates the "donator set" subcommand.
func (c *CLI) donatorSetCommand() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "set <login>",
		Short: "Grant or revoke a user's donator flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.svc.SetDonatorStatus(ctx, args[0], !remove); err != nil {
				return err
			}
			if remove {
				printSuccess("Removed donator flag from %s", args[0])
			} else {
				printSuccess("Marked %s as a donator", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "revoke instead of grant")

	return cmd
}
