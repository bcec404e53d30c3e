// ABOUTME: Entry point for the quill CLI.
// ABOUTME: Wires config, store, model client, tools, and the chat engine.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/quill-cli/quill/internal/config"
	"github.com/quill-cli/quill/internal/engine"
	"github.com/quill-cli/quill/internal/export"
	"github.com/quill-cli/quill/internal/llm"
	"github.com/quill-cli/quill/internal/mcp"
	"github.com/quill-cli/quill/internal/prompt"
	"github.com/quill-cli/quill/internal/store"
	"github.com/quill-cli/quill/internal/tools"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
             _ _ _
  __ _ _   _(_) | |
 / _' | | | | | | |
| (_| | |_| | | | |
 \__, |\__,_|_|_|_|
    |_|
`

// getConfigPath returns the path to the quill config file.
// Priority: QUILL_CONFIG env var > XDG_CONFIG_HOME/quill/quill.yaml > ~/.config/quill/quill.yaml
func getConfigPath() string {
	if envPath := os.Getenv("QUILL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "quill.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "quill", "quill.yaml")
}

// getDataPath returns the path to the quill data directory.
// Priority: XDG_DATA_HOME/quill > ~/.local/share/quill
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "quill")
}

func usage() {
	fmt.Println("Usage: quill [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  chat [--session ID]    Start the chat loop (default)")
	fmt.Println("  init                   Create a config file with defaults")
	fmt.Println("  sessions               List saved chat sessions")
	fmt.Println("  export <session-id>    Export a session transcript")
	fmt.Println("  mcp                    Serve the todo tools over MCP stdio")
	fmt.Println("  version                Print the version")
}

func main() {
	// A .env next to the binary is a convenience for the API key.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := "chat"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "chat":
		err = runChat(ctx, args)
	case "init":
		err = runInit()
	case "sessions":
		err = runSessions(ctx)
	case "export":
		err = runExport(ctx, args)
	case "mcp":
		err = runMCP(ctx)
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	sessionID := fs.String("session", "", "Resume an existing session by id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	client, err := llm.NewFromEnv(cfg.Model.Name, llm.WithTimeout(cfg.Model.Timeout))
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	reg, err := tools.NewRegistry(logger, tools.TodoPack(st)...)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	system, err := prompt.Build(reg)
	if err != nil {
		return err
	}

	session, err := resolveSession(ctx, st, *sessionID)
	if err != nil {
		return err
	}

	// Banner and startup info
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Print(banner)
	gray.Printf("    version: %s\n\n", version)
	green.Print("    ▶ ")
	fmt.Printf("Model:   %s\n", cfg.Model.Name)
	green.Print("    ▶ ")
	fmt.Printf("Session: %s\n", session.ID)
	fmt.Println()
	fmt.Println("Type what you want done with your todo list. /quit to exit.")
	fmt.Println()

	logger.Info("starting quill chat",
		"config", configPath,
		"model", cfg.Model.Name,
		"session_id", session.ID,
	)

	e, err := engine.New(engine.Options{
		Store:         st,
		Registry:      reg,
		Model:         client,
		System:        system,
		Session:       session,
		HistoryWindow: cfg.Chat.HistoryWindow,
		MaxSteps:      cfg.Chat.MaxSteps,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	return e.Run(ctx)
}

// resolveSession returns the session to chat in: the named one when
// --session is given, otherwise a fresh session.
func resolveSession(ctx context.Context, st store.Store, id string) (*store.Session, error) {
	if id != "" {
		session, err := st.GetSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading session %q: %w", id, err)
		}
		return session, nil
	}

	session := &store.Session{}
	if err := st.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = filepath.Join(getDataPath(), "quill.db")
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

func runInit() error {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	dbPath := filepath.Join(getDataPath(), "quill.db")
	configContent := fmt.Sprintf(`# quill configuration
# Generated by quill init

database:
  path: "%s"

model:
  name: "gemini-2.0-flash"
  timeout: "60s"

chat:
  history_window: 64
  max_steps: 16

logging:
  level: "info"
  format: "text"
`, dbPath)

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created config: %s\n", configPath)
	fmt.Println("  Export GEMINI_API_KEY and run quill to start chatting.")
	return nil
}

func runSessions(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sessions, err := st.ListSessions(ctx, 50)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions yet.")
		return nil
	}

	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %s\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), title)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "html", "Output format: html or md")
	outPath := fs.String("out", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: quill export [--format html|md] [--out FILE] <session-id>")
	}
	sessionID := fs.Arg(0)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	session, err := st.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session %q: %w", sessionID, err)
	}
	msgs, err := st.GetTranscript(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch *format {
	case "html":
		return export.HTML(out, session, msgs)
	case "md", "markdown":
		return export.Markdown(out, session, msgs)
	default:
		return fmt.Errorf("unknown format %q (want html or md)", *format)
	}
}

func runMCP(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	logger.Info("starting quill mcp server", "version", version)

	srv := mcp.NewServer(st, version, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- mcp.Serve(srv) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Logs go to stderr; stdout belongs to the chat (and to MCP framing).
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Fprint(os.Stderr, buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
