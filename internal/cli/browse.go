package cli

import (
	"fmt"
	"path"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/BenDol/GithubWiki-sub000/pkg/github"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive page browser.
func (c *CLI) browseCommand() *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "browse [owner/repo]",
		Short: "Browse wiki pages interactively",
		Long: `Browse a repository's pages interactively.

Navigate directories with the arrow keys and open a page with enter.
Opened pages go through the cache like any other fetch.`,
		Args: cobra.MaximumNArgs(1),
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

			dir := ""
			for {
				entries, err := sess.client.ListDir(ctx, owner, repo, dir, ref)
				if err != nil {
					return err
				}

				model := newEntryListModel(fmt.Sprintf("%s/%s", owner, repo), dir, entries)
				final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
				if err != nil {
					return err
				}

				result := final.(entryListModel)
				switch {
				case result.selected == nil:
					return nil
				case result.selected.Type == "dir":
					dir = result.selected.Path
				case result.selected.Name == parentEntry:
					dir = path.Dir(dir)
					if dir == "." {
						dir = ""
					}
				default:
					page, err := sess.svc.PageContent(ctx, owner, repo, result.selected.Path, ref)
					if err != nil {
						return err
					}
					fmt.Println(StyleTitle.Render(page.Path))
					printNewline()
					fmt.Print(page.Body)
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "branch, tag, or commit to browse")

	return cmd
}

// parentEntry is the synthetic ".." row for navigating up.
const parentEntry = ".."

// =============================================================================
// entryListModel - Interactive directory listing
// =============================================================================

// entryListModel is the bubbletea model for navigating a directory tree.
type entryListModel struct {
	title    string
	dir      string
	entries  []github.DirEntry
	cursor   int
	offset   int
	height   int
	selected *github.DirEntry
}

// newEntryListModel creates a directory listing model. Directories sort
// before files; a ".." row is added below the root.
func newEntryListModel(title, dir string, entries []github.DirEntry) entryListModel {
	sorted := make([]github.DirEntry, 0, len(entries)+1)
	if dir != "" {
		sorted = append(sorted, github.DirEntry{Name: parentEntry, Type: "up"})
	}
	sorted = append(sorted, entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return entryRank(sorted[i].Type) < entryRank(sorted[j].Type)
		}
		return sorted[i].Name < sorted[j].Name
	})

	return entryListModel{
		title:   title,
		dir:     dir,
		entries: sorted,
		height:  15,
	}
}

func entryRank(t string) int {
	switch t {
	case "up":
		return 0
	case "dir":
		return 1
	default:
		return 2
	}
}

func (m entryListModel) Init() tea.Cmd {
	return nil
}

func (m entryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.entries) == 0 {
				return m, tea.Quit
			}
			entry := m.entries[m.cursor]
			m.selected = &entry
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m entryListModel) View() string {
	var b strings.Builder

	location := m.title
	if m.dir != "" {
		location += "/" + m.dir
	}
	b.WriteString(StyleTitle.Render(location))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(listDimStyle.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.entries) {
		end = len(m.entries)
	}

	for i := m.offset; i < end; i++ {
		e := m.entries[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		label := e.Name
		detail := ""
		switch e.Type {
		case "dir":
			label += "/"
		case "up":
			label = parentEntry
		default:
			detail = formatSize(e.Size)
		}

		line := fmt.Sprintf("%s%-40s %s", cursor, label, listDimStyle.Render(detail))
		switch {
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case e.Type == "dir" || e.Type == "up":
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.entries))))

	return b.String()
}

// formatSize renders a file size compactly.
func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
