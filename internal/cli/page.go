package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
)

// pageCommand groups the wiki page operations.
func (c *CLI) pageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Fetch, save, and delete wiki pages",
	}

	cmd.AddCommand(c.pageGetCommand())
	cmd.AddCommand(c.pageSaveCommand())
	cmd.AddCommand(c.pageDeleteCommand())

	return cmd
}

// pageGetCommand creates the "page get" subcommand.
func (c *CLI) pageGetCommand() *cobra.Command {
	var (
		ref      string
		showMeta bool
	)

	cmd := &cobra.Command{
		Use:   "get [owner/repo] <path>",
		Short: "Fetch a wiki page",
		Long: `Fetch a wiki page from a repository and print its content.

Pages are cached locally; repeated fetches within the cache window are
served without touching the GitHub API. Use --ref to read from a branch,
tag, or commit other than the default branch.`,
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
				return errors.New(errors.ErrCodeInvalidInput, "expected a page path")
			}

			page, err := sess.svc.PageContent(ctx, owner, repo, rest[0], ref)
			if err != nil {
				return err
			}

			if showMeta {
				printKeyValue("Path", page.Path)
				printKeyValue("SHA", page.SHA)
				printKeyValue("Fetched", page.FetchedAt.Format("2006-01-02 15:04:05"))
				printNewline()
			}
			fmt.Print(page.Body)
			return nil
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "branch, tag, or commit to read from")
	cmd.Flags().BoolVar(&showMeta, "meta", false, "show page metadata before the content")

	return cmd
}

// pageSaveCommand creates the "page save" subcommand.
func (c *CLI) pageSaveCommand() *cobra.Command {
	var (
		ref     string
		sha     string
		message string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "save [owner/repo] <path>",
		Short: "Create or update a wiki page",
		Long: `Create or update a wiki page from a local file or stdin.

Updates must pass --sha with the revision the edit was based on; the save
is rejected with a conflict if the page changed underneath. Omit --sha to
create a new page.`,
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
				return errors.New(errors.ErrCodeInvalidInput, "expected a page path")
			}
			path := rest[0]

			body, err := readBody(file)
			if err != nil {
				return err
			}
			if message == "" {
				message = fmt.Sprintf("Update %s", path)
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Saving %s...", path))
			spinner.Start()

			page, err := sess.svc.SavePage(ctx, owner, repo, path, ref, sha, body, message)
			if err != nil {
				spinner.StopWithError("Save failed")
				var conflict *errors.ConflictError
				if stderrors.As(err, &conflict) {
					printDetail("Page changed upstream: expected %s, found %s", conflict.KnownSHA, conflict.CurrentSHA)
					printDetail("Fetch the page again and retry with the new SHA")
				}
				return err
			}

			spinner.StopWithSuccess(fmt.Sprintf("Saved %s", path))
			printDetail("SHA: %s", page.SHA)
			return nil
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "branch to commit to")
	cmd.Flags().StringVar(&sha, "sha", "", "SHA the edit was based on (omit to create)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read content from file (default stdin)")

	return cmd
}

// pageDeleteCommand creates the "page delete" subcommand.
func (c *CLI) pageDeleteCommand() *cobra.Command {
	var (
		ref     string
		sha     string
		message string
	)

	cmd := &cobra.Command{
		Use:   "delete [owner/repo] <path>",
		Short: "Delete a wiki page",
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
				return errors.New(errors.ErrCodeInvalidInput, "expected a page path")
			}
			path := rest[0]

			if sha == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--sha is required for delete")
			}
			if message == "" {
				message = fmt.Sprintf("Delete %s", path)
			}

			if err := sess.svc.DeletePage(ctx, owner, repo, path, ref, sha, message); err != nil {
				return err
			}
			printSuccess("Deleted %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "branch to commit to")
	cmd.Flags().StringVar(&sha, "sha", "", "SHA of the revision to delete")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")

	return cmd
}

// readBody loads the page body from a file, or stdin when path is empty.
func readBody(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
