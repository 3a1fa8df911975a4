package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
)

// pullsCommand creates the pull request listing command.
func (c *CLI) pullsCommand() *cobra.Command {
	var (
		page    int
		perPage int
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "pulls [owner/repo] <login>",
		Short: "List a user's pull requests against a repository",
		Long: `List pull requests authored by a user against a repository.

The GitHub API cannot filter pull requests by author, so pages are
assembled client-side and cached. Pagination is over the filtered result:
--page 2 shows the author's second page, whatever API pages that spans.`,
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

			if refresh {
				if err := sess.svc.InvalidateUserPulls(ctx, owner, repo, login); err != nil {
					return err
				}
			}

			result, err := sess.svc.UserPullRequests(ctx, owner, repo, login, page, perPage)
			if err != nil {
				return err
			}

			if len(result.Items) == 0 {
				printInfo("No pull requests by %s on %s/%s", login, owner, repo)
				return nil
			}

			printInfo("Pull requests by %s on %s/%s (page %d)", login, owner, repo, page)
			for _, pr := range result.Items {
				state := StyleDim.Render(pr.State)
				if pr.State == "open" {
					state = StyleSuccess.Render(pr.State)
				}
				printDetail("#%-5d %s  %s", pr.Number, state, pr.Title)
			}
			if result.HasMore {
				printNewline()
				printDetail("More available: --page %d", page+1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page of the filtered results")
	cmd.Flags().IntVar(&perPage, "per-page", 30, "results per page")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop cached pages for this user first")

	return cmd
}

// forkCommand creates the fork status command.
func (c *CLI) forkCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "fork [owner/repo] <login>",
		Short: "Check whether a user has forked a repository",
		Args:  cobra.RangeArgs(1, 2),
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

			if refresh {
				if err := sess.svc.InvalidateForkStatus(ctx, owner, repo, login); err != nil {
					return err
				}
			}

			status, err := sess.svc.ForkStatus(ctx, owner, repo, login)
			if err != nil {
				return err
			}

			if !status.Exists {
				printInfo("%s has no fork of %s/%s", login, owner, repo)
				return nil
			}
			printSuccess("%s", fmt.Sprintf("%s forked %s/%s", login, owner, repo))
			printKeyValue("Fork", status.FullName)
			printKeyValue("Branch", status.DefaultBranch)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached status and re-check")

	return cmd
}
