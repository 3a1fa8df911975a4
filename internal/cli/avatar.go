package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

// avatarCommand groups the avatar record operations on the data
// repository.
func (c *CLI) avatarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Manage avatar records in the data repository",
	}

	cmd.AddCommand(c.avatarGetCommand())
	cmd.AddCommand(c.avatarRegistryCommand())
	cmd.AddCommand(c.avatarUploadCommand())

	return cmd
}

// avatarGetCommand creates the "avatar get" subcommand.
func (c *CLI) avatarGetCommand() *cobra.Command {
	var defaultURL string

	cmd := &cobra.Command{
		Use:   "get <login>",
		Short: "Resolve a user's avatar URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			url, err := sess.svc.Avatar(ctx, args[0], defaultURL)
			if err != nil {
				return err
			}
			if url == "" {
				printInfo("No avatar recorded for %s", args[0])
				return nil
			}
			printKeyValue("Avatar", StyleLink.Render(url))
			return nil
		},
	}

	cmd.Flags().StringVar(&defaultURL, "default", "", "URL to fall back to when no record exists")

	return cmd
}

// avatarRegistryCommand creates the "avatar registry" subcommand.
func (c *CLI) avatarRegistryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List all recorded avatars",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			registry, err := sess.svc.AvatarRegistry(ctx)
			if err != nil {
				return err
			}
			if len(registry) == 0 {
				printInfo("No avatars recorded")
				return nil
			}

			logins := make([]string, 0, len(registry))
			for login := range registry {
				logins = append(logins, login)
			}
			sort.Strings(logins)

			printInfo("%s recorded", formatCount(len(registry), "avatar"))
			for _, login := range logins {
				printDetail("%-20s %s", login, registry[login])
			}
			return nil
		},
	}
}

// avatarUploadCommand creates the "avatar upload" subcommand.
func (c *CLI) avatarUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <login> <url>",
		Short: "Record a user's avatar URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			spinner := newSpinnerWithContext(ctx, "Uploading avatar...")
			spinner.Start()

			if err := sess.svc.UploadAvatar(ctx, args[0], args[1]); err != nil {
				spinner.StopWithError("Upload failed")
				return err
			}
			spinner.StopWithSuccess("Avatar recorded for " + args[0])
			return nil
		},
	}
}
