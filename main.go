package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/mcncl/jsonlens/internal/canonical"
	"github.com/mcncl/jsonlens/internal/clipboard"
	"github.com/mcncl/jsonlens/internal/config"
	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/export"
	"github.com/mcncl/jsonlens/internal/logging"
	"github.com/mcncl/jsonlens/internal/parser"
	"github.com/mcncl/jsonlens/internal/session"
	"github.com/mcncl/jsonlens/internal/tree"
	"github.com/mcncl/jsonlens/internal/tui"
	"github.com/mcncl/jsonlens/internal/watcher"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config      string `help:"Path to config file. Defaults to the nearest .jsonlens.yml." short:"c" type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`

	Format   FormatCmd   `cmd:"" default:"withargs" help:"Pretty-print JSON (default command)."`
	Minify   MinifyCmd   `cmd:"" help:"Print JSON with all insignificant whitespace removed."`
	Unescape UnescapeCmd `cmd:"" help:"Turn an escaped JSON string back into readable JSON."`
	Tree     TreeCmd     `cmd:"" help:"Print the flattened key tree."`
	Export   ExportCmd   `cmd:"" help:"Export rows as tab-aligned text."`
	Browse   BrowseCmd   `cmd:"" help:"Explore the document interactively."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Version information
const (
	Version = "0.1.0"
)

// App is the runtime context bound into every command's Run method.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	k := kong.Must(&CLI,
		kong.Name("jsonlens"),
		kong.Description("Format, flatten and export JSON documents"),
		kong.UsageOnError(),
	)

	kctx, err := k.Parse(os.Args[1:])
	if err != nil {
		// kong.UsageOnError has already printed usage
		os.Exit(1)
	}

	// No arguments at all means paste mode
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	app, err := newApp(context.Background(), kctx.Command())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonlens --help\n")
		os.Exit(1)
	}
}

// newApp loads configuration, applies command-line overrides and builds
// the shared logger.
func newApp(ctx context.Context, command string) (*App, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, overrides(command))
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}

	level := logging.LevelWarn
	if cfg.Dev.Debug {
		level = logging.LevelDebug
	}
	logger := logging.New(os.Stderr, level)
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	return &App{
		ctx:    logging.WithLogger(ctx, logger),
		cfg:    cfg,
		logger: logger,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}, nil
}

// overrides collects config values given as flags. Depth is taken from
// the selected command only.
func overrides(command string) config.Overrides {
	depth := -1
	switch command {
	case "tree":
		depth = CLI.Tree.Depth
	case "export":
		depth = CLI.Export.Depth
	case "browse":
		depth = CLI.Browse.Depth
	}

	return config.Overrides{
		Indent:      CLI.Format.Indent,
		ExportMode:  CLI.Export.Mode,
		KeyCase:     CLI.Export.KeyCase,
		NoSummary:   CLI.Export.NoSummary,
		Depth:       depth,
		NoClipboard: CLI.Browse.NoClipboard,
		Debug:       CLI.Debug,
	}
}

// FormatCmd pretty-prints the input.
type FormatCmd struct {
	Indent string `help:"Indent unit (spaces or tabs). Defaults to format.indent from config." short:"n"`
}

// Run executes the format command
func (c *FormatCmd) Run(app *App) error {
	text, err := app.readInput()
	if err != nil {
		return err
	}
	out, err := canonical.New(app.cfg.Format.Indent).Format(text)
	if err != nil {
		return err
	}
	return app.writeOutput(out)
}

// MinifyCmd removes insignificant whitespace.
type MinifyCmd struct{}

// Run executes the minify command
func (c *MinifyCmd) Run(app *App) error {
	text, err := app.readInput()
	if err != nil {
		return err
	}
	out, err := canonical.Minify(text)
	if err != nil {
		return err
	}
	return app.writeOutput(out)
}

// UnescapeCmd reverses one level of string escaping.
type UnescapeCmd struct{}

// Run executes the unescape command
func (c *UnescapeCmd) Run(app *App) error {
	text, err := app.readInput()
	if err != nil {
		return err
	}
	return app.writeOutput(canonical.New(app.cfg.Format.Indent).Unescape(text))
}

// TreeCmd prints the visible rows as an indented listing.
type TreeCmd struct {
	Depth int `help:"Reveal rows up to this many levels deep (0 = all)." default:"-1"`
}

// Run executes the tree command
func (c *TreeCmd) Run(app *App) error {
	s, err := app.loadSession()
	if err != nil {
		return err
	}
	t, st, err := s.Require()
	if err != nil {
		return err
	}
	if t.Empty() {
		return app.writeOutput("Empty JSON")
	}
	return app.writeOutput(renderListing(st))
}

// renderListing draws one row per line, indented two spaces per level.
func renderListing(st *tree.State) string {
	var b strings.Builder
	for _, r := range st.VisibleRows() {
		b.WriteString(strings.Repeat("  ", r.Level))
		switch {
		case r.HasChildren && st.Expanded(r.ID):
			b.WriteString("▾ " + r.Key)
		case r.HasChildren:
			b.WriteString("▸ " + r.Key + ": " + r.Summary)
		default:
			b.WriteString("  " + r.Key + ": " + r.Summary)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ExportCmd writes tab-aligned rows.
type ExportCmd struct {
	Mode      string   `help:"Export mode: row, key or value. Defaults to export.mode from config." short:"m"`
	Depth     int      `help:"Reveal rows up to this many levels deep before exporting (0 = all)." default:"-1"`
	Collapse  []string `help:"Row IDs to collapse before exporting (e.g. row-3)." sep:","`
	Subtree   string   `help:"Export this row and all its descendants instead of the visible rows." placeholder:"ROW-ID"`
	KeyCase   string   `help:"Rewrite object keys: snake, camel, lower_camel or kebab." name:"key-case"`
	NoSummary bool     `help:"Leave collapsed containers' value column blank." name:"no-summary"`
	Copy      bool     `help:"Copy the result to the system clipboard instead of printing it."`
}

// Run executes the export command
func (c *ExportCmd) Run(app *App) error {
	s, err := app.loadSession()
	if err != nil {
		return err
	}
	t, st, err := s.Require()
	if err != nil {
		return err
	}

	for _, id := range c.Collapse {
		if err := st.SetExpanded(strings.TrimSpace(id), false); err != nil {
			return err
		}
	}

	exporter, err := newExporter(app.cfg)
	if err != nil {
		return err
	}

	var text string
	if c.Subtree != "" {
		text, err = exporter.Subtree(t, c.Subtree)
	} else {
		text, err = exporter.Visible(st)
	}
	if errors.IsNoRows(err) {
		fmt.Fprintln(app.stderr, errors.UserFriendlyError(err))
		return nil
	}
	if err != nil {
		return err
	}

	if c.Copy {
		if err := clipboard.New(app.cfg.Clipboard.Enabled).WriteAll(text); err != nil {
			return err
		}
		fmt.Fprintf(app.stderr, "Copied %d line(s) to the clipboard\n", strings.Count(text, "\n"))
		return nil
	}
	return app.writeOutput(text)
}

func newExporter(cfg *config.Config) (*export.Exporter, error) {
	mode, err := export.ParseMode(cfg.Export.Mode)
	if err != nil {
		return nil, err
	}
	return export.New(export.Options{
		Mode:             mode,
		ContainerSummary: cfg.Export.ContainerSummary,
		KeyCase:          export.KeyCase(cfg.Export.KeyCase),
	}), nil
}

// BrowseCmd runs the interactive tree browser.
type BrowseCmd struct {
	Watch       bool `help:"Reload the input file when it changes on disk." short:"w"`
	Depth       int  `help:"Initial reveal depth (0 = all)." default:"-1"`
	NoClipboard bool `help:"Disable copying to the system clipboard." name:"no-clipboard"`
}

// Run executes the browse command
func (c *BrowseCmd) Run(app *App) error {
	if c.Watch && CLI.Input == "" {
		return errors.NewInputError("--watch needs a file given with --input", errors.ErrInvalidFilePath)
	}

	s, err := app.loadSession()
	if err != nil {
		return err
	}
	exporter, err := newExporter(app.cfg)
	if err != nil {
		return err
	}

	model := tui.New(s, tui.Options{
		Path:     CLI.Input,
		Exporter: exporter,
		Sink:     clipboard.New(app.cfg.Clipboard.Enabled),
		Logger:   app.logger,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if !stdinIsTerminal() {
		// stdin carried the document, so keys come from the terminal
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(model, opts...)

	ctx, cancel := context.WithCancel(app.ctx)
	defer cancel()
	if c.Watch {
		go func() {
			err := watcher.Watch(ctx, CLI.Input, app.cfg.Watch.Debounce, func() {
				p.Send(tui.ReloadMsg{})
			})
			if err != nil {
				app.logger.Error("file watcher stopped", "err", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run(app *App) error {
	_, err := fmt.Fprintf(app.stdout, "jsonlens version %s\n", Version)
	return err
}

// loadSession reads the input and loads it into a fresh session.
func (app *App) loadSession() (*session.Session, error) {
	s := session.New(app.logger, app.cfg.Tree.InitialDepth)
	if CLI.Input != "" {
		if err := s.LoadFile(CLI.Input); err != nil {
			return nil, err
		}
		return s, nil
	}

	text, err := app.readInput()
	if err != nil {
		return nil, err
	}
	if err := s.Load(text); err != nil {
		return nil, err
	}
	return s, nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// readInput reads raw text from file or stdin. The text is not validated
// here because unescape accepts input that is not JSON.
func (app *App) readInput() (string, error) {
	if CLI.Input != "" {
		data, err := parser.ReadFile(CLI.Input)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput(app.stderr)
		}
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(data), nil
}

// writeOutput writes text to file or stdout, ending it with a newline.
func (app *App) writeOutput(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(text), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(app.stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	if _, err := io.WriteString(app.stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(prompt io.Writer) (string, error) {
	fmt.Fprintln(prompt, "jsonlens Interactive Mode")
	fmt.Fprintln(prompt, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(strings.TrimSpace(jsonData)) == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(prompt, "\nProcessing JSON...")
	return jsonData, nil
}
