package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/miosa/osa-builder/attachments"
	"github.com/miosa/osa-builder/client"
	"github.com/miosa/osa-builder/export"
	"github.com/miosa/osa-builder/format"
	"github.com/miosa/osa-builder/markdown"
	"github.com/miosa/osa-builder/style"
	"github.com/miosa/osa-builder/tokens"
)

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(style.Border)).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func (c *cli) renderCmd() *cobra.Command {
	var plain, spans bool
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Format a message the way the chat displays it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			segs := format.Format(text)
			switch {
			case spans:
				rows := make([][]string, len(segs))
				for i, s := range segs {
					rows[i] = []string{s.Kind.String(), s.ID, s.Language, fmt.Sprintf("%d", len(s.Content))}
				}
				printTable(out, []string{"KIND", "ID", "LANG", "BYTES"}, rows)
			case plain:
				fmt.Fprintln(out, plainText(segs))
			default:
				fmt.Fprintln(out, markdown.Message(c.cfg.Renderer, segs, markdown.Options{Width: c.cfg.WordWrap}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print unstyled text")
	cmd.Flags().BoolVar(&spans, "spans", false, "list the tokenized spans")
	return cmd
}

// plainText flattens segments without styling: markdown markers are dropped
// and code keeps its raw content.
func plainText(segs []format.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case format.SpanText:
			sb.WriteString(format.PlainText(s.Nodes))
		case format.SpanInlineCode:
			sb.WriteString(s.Content)
		case format.SpanCodeBlock:
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte('\n')
			}
			sb.WriteString(s.Content)
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *cli) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file|-]",
		Short: "Count cl100k_base tokens of a message and each of its code blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			counter := tokens.NewCounter(c.log)
			out := cmd.OutOrStdout()
			total := counter.Count(text)
			kind := "exact"
			if !counter.Exact() {
				kind = "estimated"
			}
			fmt.Fprintf(out, "total: %d tokens (%s)\n", total, kind)
			for _, b := range format.CodeBlocks(format.Tokenize(text)) {
				fmt.Fprintf(out, "%s [%s]: %d tokens\n", b.ID, b.Language, counter.Count(b.Content))
			}
			return nil
		},
	}
}

func (c *cli) sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List chat sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := c.client.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(sessions))
			for i, s := range sessions {
				rows[i] = []string{s.ID, s.Title, s.ActiveAgent, s.ModelProvider + "/" + s.ModelName, s.UpdatedAt}
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "AGENT", "MODEL", "UPDATED"}, rows)
			return nil
		},
	}
}

func (c *cli) messagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages <session>",
		Short: "Print a session's history, formatted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := c.client.SessionMessages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range msgs {
				who := "You"
				if m.Role != client.RoleUser {
					who = "Builder"
					if m.AgentType != "" {
						who += " [" + m.AgentType + "]"
					}
				}
				fmt.Fprintln(out, style.Bold.Render(who))
				fmt.Fprintln(out, markdown.Segments(format.Format(m.Content), markdown.Options{Width: c.cfg.WordWrap}))
				for i, f := range m.CreatedFiles() {
					fmt.Fprintf(out, "  %s %s\n", attachments.KindOf(f.DisplayName(i)).Icon(), f.DisplayName(i))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func (c *cli) projectsCmd() *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		projects, err := c.client.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, len(projects))
		for i, p := range projects {
			rows[i] = []string{p.ID, p.Name, p.Status, fmt.Sprintf("%d%%", p.Progress), strings.Join(p.TechStack, ", ")}
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "STATUS", "PROGRESS", "STACK"}, rows)
		return nil
	}
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List, create or update projects",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE:  list,
	})

	var create client.CreateProjectRequest
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			create.Name = args[0]
			p, err := c.client.CreateProject(cmd.Context(), create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created project %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&create.Description, "description", "d", "", "project description")
	createCmd.Flags().StringVar(&create.TemplateID, "template", "", "template id")
	createCmd.Flags().StringSliceVar(&create.TechStack, "stack", nil, "tech stack, comma separated")
	cmd.AddCommand(createCmd)

	var (
		name, desc, status, repo, deploy string
		progress                         int
	)
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req client.UpdateProjectRequest
			fl := cmd.Flags()
			if fl.Changed("name") {
				req.Name = &name
			}
			if fl.Changed("description") {
				req.Description = &desc
			}
			if fl.Changed("status") {
				req.Status = &status
			}
			if fl.Changed("progress") {
				if progress < 0 || progress > 100 {
					return fmt.Errorf("progress must be between 0 and 100")
				}
				req.Progress = &progress
			}
			if fl.Changed("repo") {
				req.RepositoryURL = &repo
			}
			if fl.Changed("deploy") {
				req.DeploymentURL = &deploy
			}
			p, err := c.client.UpdateProject(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated project %s: %s %d%%\n", p.Name, p.Status, p.Progress)
			return nil
		},
	}
	uf := updateCmd.Flags()
	uf.StringVar(&name, "name", "", "new name")
	uf.StringVarP(&desc, "description", "d", "", "new description")
	uf.StringVar(&status, "status", "", "planning, in_progress, completed or deployed")
	uf.IntVar(&progress, "progress", 0, "progress percentage")
	uf.StringVar(&repo, "repo", "", "repository URL")
	uf.StringVar(&deploy, "deploy", "", "deployment URL")
	cmd.AddCommand(updateCmd)
	return cmd
}

func (c *cli) templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List starter templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := c.client.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(ts))
			for i, t := range ts {
				rows[i] = []string{t.ID, t.Name, t.Category, strings.Join(t.TechStack, ", ")}
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "CATEGORY", "STACK"}, rows)
			return nil
		},
	}
}

func (c *cli) agentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the backend's agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agents, err := c.client.ListAgents(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(agents))
			for i, a := range agents {
				rows[i] = []string{a.Type, a.Name, a.Specialization}
			}
			printTable(cmd.OutOrStdout(), []string{"TYPE", "NAME", "SPECIALIZATION"}, rows)
			return nil
		},
	}
}

func (c *cli) modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := c.client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(models))
			for i, m := range models {
				free := ""
				if m.IsFree {
					free = "free"
				}
				rows[i] = []string{m.Provider, m.Name, m.DisplayName, free}
			}
			printTable(cmd.OutOrStdout(), []string{"PROVIDER", "NAME", "DISPLAY", ""}, rows)
			return nil
		},
	}
}

func (c *cli) keysCmd() *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		keys, err := c.client.ListAPIKeys(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, len(keys))
		for i, k := range keys {
			active := "no"
			if k.IsActive {
				active = "yes"
			}
			rows[i] = []string{k.ID, k.Provider, k.Masked(), k.DisplayName, active}
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "PROVIDER", "KEY", "NAME", "ACTIVE"}, rows)
		return nil
	}
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(&cobra.Command{Use: "list", Short: "List keys (masked)", Args: cobra.NoArgs, RunE: list})

	var displayName string
	add := &cobra.Command{
		Use:   "add <provider> <key>",
		Short: "Store a key for " + strings.Join(client.Providers, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := c.client.CreateAPIKey(cmd.Context(), client.CreateAPIKeyRequest{
				Provider:    args[0],
				Key:         args[1],
				DisplayName: displayName,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s key %s (%s)\n", k.Provider, k.Masked(), k.ID)
			return nil
		},
	}
	add.Flags().StringVar(&displayName, "name", "", "display name")
	cmd.AddCommand(add)

	var (
		newKey, newName string
		active          bool
	)
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req client.UpdateAPIKeyRequest
			fl := cmd.Flags()
			if fl.Changed("key") {
				req.Key = &newKey
			}
			if fl.Changed("name") {
				req.DisplayName = &newName
			}
			if fl.Changed("active") {
				req.IsActive = &active
			}
			k, err := c.client.UpdateAPIKey(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s key %s\n", k.Provider, k.Masked())
			return nil
		},
	}
	update.Flags().StringVar(&newKey, "key", "", "replacement key")
	update.Flags().StringVar(&newName, "name", "", "display name")
	update.Flags().BoolVar(&active, "active", true, "whether the key is used")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a stored key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client.DeleteAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted key %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "export <session> <dir>",
		Short: "Write a session's created files into dir and commit them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := c.client.SessionMessages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var files []attachments.File
			for _, m := range msgs {
				files = append(files, m.CreatedFiles()...)
			}
			if message == "" {
				message = fmt.Sprintf("Export session %s (%d files)", args[0], len(files))
			}
			res, err := export.Export(args[1], files, export.Options{
				Message:     message,
				AuthorName:  c.cfg.Export.AuthorName,
				AuthorEmail: c.cfg.Export.AuthorEmail,
			}, c.log)
			if err != nil {
				return err
			}
			c.log.Debug("export done", zap.String("commit", res.Commit))
			fmt.Fprintf(cmd.OutOrStdout(), "committed %d file(s) to %s at %s\n", len(res.Files), res.Dir, res.Commit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
