package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
)

// userCommand creates the user profile command.
func (c *CLI) userCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "user <login>",
		Short: "Show a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			user, err := sess.svc.UserProfile(ctx, args[0])
			if err != nil {
				return err
			}

			printKeyValue("Login", user.Login)
			printKeyValue("ID", fmt.Sprintf("%d", user.ID))
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			if user.AvatarURL != "" {
				printKeyValue("Avatar", StyleLink.Render(user.AvatarURL))
			}
			return nil
		},
	}
}

// permissionCommand creates the permission lookup command.
func (c *CLI) permissionCommand() *cobra.Command {
	var invalidate bool

	cmd := &cobra.Command{
		Use:   "permission [owner/repo] <login>",
		Short: "Show a user's access level on a repository",
		Long: `Show a user's access level on a repository.

A user who is not a collaborator reports "none". When the level cannot be
determined (for example during an API outage) the command reports the
read-only fallback and marks it as unconfirmed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			owner, repo, rest, err := c.repoArgs(args, sess.cfg.GitHub.Owner, sess.cfg.GitHub.Repo)
			if err != nil {
				return err
			}
			if len(rest) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "expected a login")
			}
			login := rest[0]

			if invalidate {
				if err := sess.svc.InvalidatePermission(ctx, owner, repo, login); err != nil {
					return err
				}
			}

			perm, err := sess.svc.Permission(ctx, owner, repo, login)
			if err != nil {
				return err
			}

			printKeyValue("User", login)
			printKeyValue("Level", perm.Level)
			if !perm.Determined {
				printWarning("Could not confirm with GitHub; showing the read-only fallback")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&invalidate, "refresh", false, "drop the cached level and re-check")

	return cmd
}

// collaboratorsCommand creates the collaborators listing command.
func (c *CLI) collaboratorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collaborators [owner/repo]",
		Short: "List repository collaborators",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			owner, repo, _, err := c.repoArgs(args, sess.cfg.GitHub.Owner, sess.cfg.GitHub.Repo)
			if err != nil {
				return err
			}

			users, err := sess.svc.Collaborators(ctx, owner, repo)
			if err != nil {
				return err
			}

			printInfo("%s on %s/%s", formatCount(len(users), "collaborator"), owner, repo)
			for _, u := range users {
				printDetail("%s (#%d)", u.Login, u.ID)
			}
			return nil
		},
	}
}

// repoCommand creates the repository metadata command.
func (c *CLI) repoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repo [owner/repo]",
		Short: "Show repository metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			owner, repo, _, err := c.repoArgs(args, sess.cfg.GitHub.Owner, sess.cfg.GitHub.Repo)
			if err != nil {
				return err
			}

			meta, err := sess.svc.RepoMeta(ctx, owner, repo)
			if err != nil {
				return err
			}

			printKeyValue("Repository", meta.FullName)
			printKeyValue("Branch", meta.DefaultBranch)
			printKeyValue("Private", formatBool(meta.Private))
			printKeyValue("Fork", formatBool(meta.Fork))
			if meta.Description != "" {
				printKeyValue("Description", meta.Description)
			}
			return nil
		},
	}
}
