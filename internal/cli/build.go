package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BenDol/GithubWiki-sub000/pkg/github"
	"github.com/BenDol/GithubWiki-sub000/pkg/wiki"
)

// buildCommand groups shared build operations on the data repository.
func (c *CLI) buildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Manage shared builds in the data repository",
	}

	cmd.AddCommand(c.buildListCommand())
	cmd.AddCommand(c.buildGetCommand())
	cmd.AddCommand(c.buildShareCommand())

	return cmd
}

// buildListCommand creates the "build list" subcommand.
func (c *CLI) buildListCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shared builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if refresh {
				if err := sess.svc.BustBuildIndex(ctx); err != nil {
					return err
				}
			}

			index, err := sess.svc.BuildIndex(ctx)
			if err != nil {
				return err
			}
			if len(index) == 0 {
				printInfo("No shared builds")
				return nil
			}

			printInfo("%s shared", formatCount(len(index), "build"))
			for _, b := range index {
				printDetail("%-36s %-25s by %s (%s)", b.ID, b.Title, b.Author, b.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached index first")

	return cmd
}

// buildGetCommand creates the "build get" subcommand.
func (c *CLI) buildGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a shared build's payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			build, err := sess.svc.Build(ctx, args[0])
			if err != nil {
				return err
			}

			printKeyValue("Title", build.Title)
			printKeyValue("Author", build.Author)
			printKeyValue("Created", build.CreatedAt.Format("2006-01-02 15:04:05"))
			printNewline()
			fmt.Println(string(build.Data))
			return nil
		},
	}
}

// buildShareCommand creates the "build share" subcommand.
func (c *CLI) buildShareCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "share <payload.json>",
		Short: "Publish a build to the data repository",
		Long: `Publish a build payload to the data repository.

The author is the authenticated user. Sharing is a create: the build gets
a fresh identifier and the index is updated, so re-running the command
publishes a new build rather than overwriting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("%s is not valid JSON", args[0])
			}

			author, err := sess.client.AuthenticatedUser(ctx)
			if err != nil {
				return fmt.Errorf("resolve authenticated user: %w", err)
			}

			build := wiki.Build{
				ID:     github.NewIdempotencyKey(),
				Title:  title,
				Author: author.Login,
				Data:   json.RawMessage(data),
			}

			spinner := newSpinnerWithContext(ctx, "Publishing build...")
			spinner.Start()

			if err := sess.svc.ShareBuild(ctx, build); err != nil {
				spinner.StopWithError("Publish failed")
				return err
			}
			spinner.StopWithSuccess("Build published")
			printDetail("ID: %s", build.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "Untitled build", "build title shown in the index")

	return cmd
}
