package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/miosa/osa-builder/app"
	"github.com/miosa/osa-builder/client"
	"github.com/miosa/osa-builder/clipboard"
	"github.com/miosa/osa-builder/config"
	"github.com/miosa/osa-builder/logging"
	"github.com/miosa/osa-builder/model"
	"github.com/miosa/osa-builder/style"
	"github.com/miosa/osa-builder/tokens"
)

var version = "dev"

// cli holds flag values and what PersistentPreRunE resolved from them.
type cli struct {
	profile  string
	dev      bool
	noColor  bool
	verbose  bool
	url      string
	renderer string

	profileDir string
	cfg        config.Config
	log        *zap.Logger
	client     *client.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "osa-builder",
		Short: "Chat with the OSA app builder from your terminal",
		Long: `osa-builder talks to the OSA builder backend.

Run without arguments to start the interactive chat. Replies are formatted
in place: fenced code blocks are highlighted and can be copied with /copy
or ctrl+y, and files the assistant creates can be previewed, saved and
exported to a git repository.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&c.profile, "profile", "", "named profile for state isolation (~/.osa-builder/profiles/<name>)")
	f.BoolVar(&c.dev, "dev", false, "dev mode (alias for --profile dev, backend "+config.DevBackendURL+")")
	f.BoolVar(&c.noColor, "no-color", false, "disable ANSI colors")
	f.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	f.StringVar(&c.url, "url", "", "backend URL (overrides config and OSA_URL)")
	f.StringVar(&c.renderer, "renderer", "", "message renderer: native or glamour")

	root.AddCommand(
		c.renderCmd(),
		c.tokensCmd(),
		c.sessionsCmd(),
		c.messagesCmd(),
		c.projectsCmd(),
		c.templatesCmd(),
		c.agentsCmd(),
		c.modelsCmd(),
		c.keysCmd(),
		c.exportCmd(),
		versionCmd(),
	)
	return root
}

// setup resolves profile, config, logger and client. Precedence is
// defaults < config file < environment < flags.
func (c *cli) setup(cmd *cobra.Command) error {
	profile := c.profile
	if c.dev && profile == "" {
		profile = "dev"
	}
	dir, err := config.ProfileDir(profile)
	if err != nil {
		return err
	}
	c.profileDir = dir

	envErr := config.LoadEnvFile(dir)
	cfg, loadErr := config.Load(dir)
	if c.dev && cfg.BackendURL == config.DefaultBackendURL {
		cfg.BackendURL = config.DevBackendURL
	}
	if c.url != "" {
		cfg.BackendURL = c.url
	}
	if c.renderer != "" {
		cfg.Renderer = c.renderer
	}
	if cfg.Token == "" {
		cfg.Token = config.ReadToken(dir)
	}
	c.cfg = cfg

	// Only the interactive root writes its log to a file.
	logFile := ""
	if cmd.Root() == cmd {
		logFile = cfg.LogPath(dir)
	}
	c.log, err = logging.New(logging.Options{Level: cfg.Log.Level, File: logFile, Verbose: c.verbose})
	if err != nil {
		return err
	}
	if loadErr != nil {
		c.log.Warn("config unreadable, using defaults", zap.String("profile", dir), zap.Error(loadErr))
	}
	if envErr != nil {
		c.log.Warn("env file ignored", zap.Error(envErr))
	}

	if c.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	switch {
	case cfg.Theme != "" && style.SetTheme(cfg.Theme):
	case lipgloss.HasDarkBackground():
		style.SetTheme("dark")
	default:
		style.SetTheme("light")
	}

	c.client = client.New(cfg.BackendURL, cfg.Timeout)
	c.client.Log = c.log
	if cfg.Token != "" {
		c.client.SetToken(cfg.Token)
	}
	c.log.Debug("resolved config",
		zap.String("profile", dir),
		zap.String("backend", cfg.BackendURL),
		zap.String("provider", cfg.ModelProvider),
		zap.String("model", cfg.ModelName))
	return nil
}

func (c *cli) runTUI() error {
	m := app.New(app.Options{
		Client:     c.client,
		Config:     c.cfg,
		ProfileDir: c.profileDir,
		Clipboard:  clipboard.New(clipboard.ParseMode(c.cfg.Clipboard)),
		Tokens:     tokens.NewCounter(c.log),
		Log:        c.log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		p.Send(app.ProgramReady{Program: p})
	}()

	c.log.Info("tui started", zap.String("backend", c.cfg.BackendURL))
	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("osa-builder: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No profile or logger needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "osa-builder %s (tui %s)\n", version, model.Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
