package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todos/internal/auth"
	"github.com/idilsaglam/todos/internal/config"
	"github.com/idilsaglam/todos/internal/logging"
	"github.com/idilsaglam/todos/internal/server"
	"github.com/idilsaglam/todos/internal/store"
	"github.com/idilsaglam/todos/internal/store/jsonstore"
	"github.com/idilsaglam/todos/internal/store/remote"
	"github.com/idilsaglam/todos/internal/store/sqlite"
	"github.com/idilsaglam/todos/internal/ui"
)

// Options carry the loaded config and the process streams.
type Options struct {
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type runner struct {
	cfg    *config.Config
	theme  ui.Theme
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	r := &runner{
		cfg:    opt.Config,
		theme:  ui.ThemeByName(opt.Config.Theme),
		stdin:  opt.Stdin,
		stdout: opt.Stdout,
		stderr: opt.Stderr,
	}
	r.logger = logging.New(r.stderr, r.logOptions("todo"))

	if len(args) == 0 {
		return r.doTUI(ctx)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.stdout)
		return 0
	case "tui":
		return r.doTUI(ctx)
	case "ls":
		return r.doList(ctx, a)
	case "add":
		return r.doAdd(ctx, a)
	case "serve":
		return r.doServe(ctx, a)
	case "auth":
		if len(a) == 0 {
			r.theme.Fail(r.stderr, "usage: todo auth <login|logout|status>")
			return 2
		}
		switch a[0] {
		case "login":
			return r.doAuthLogin(a[1:])
		case "logout":
			return r.doAuthLogout()
		case "status":
			return r.doAuthStatus()
		}
		r.theme.Fail(r.stderr, "usage: todo auth <login|logout|status>")
		return 2
	}

	r.theme.Fail(r.stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.stderr)
	PrintHelp(r.stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a to-do list backed by a remote store

Usage:
  todo [flags] [subcommand] [args]

Subcommands:
  tui                      Interactive list (default)
  ls [--group]             Print the list once
  add [--done] <body...>   Create an item
  serve [--addr a] [--backend sqlite|json] [--dsn path]
                           Serve GET/POST /todos locally
  auth <login [--expires-in d]|logout|status>
                           Manage the bearer token for the current --base-url

Flags:
  --base-url URL   remote store (env TODOS_BASE_URL)
  --refresh        refetch the list after each create
  --theme NAME     classic | neon | mono
  --log-level L    debug | info | warn | error
  --log-file PATH  write logs here (the TUI logs nowhere else)

Examples:
  todo add "Buy milk"
  todo ls --group
  todo serve --backend json --dsn ./todos.json
  todo --base-url http://localhost:8080
`)
}

// -------------- store wiring ----------------

// token picks the bearer token for the configured store: an explicit config
// token first, then TODOS_TOKEN, then the keyring entry for cfg.BaseURL.
func (r *runner) token() string {
	if r.cfg.Token != "" {
		return r.cfg.Token
	}
	k, err := auth.OpenDefault()
	if err != nil {
		r.logger.Warn("ignoring credentials", "err", err)
		return ""
	}
	res, err := k.Resolve(r.cfg.BaseURL)
	if err != nil || res == nil {
		return ""
	}
	if res.Expired(time.Now()) {
		r.logger.Warn("token expired; run `todo auth login`", "endpoint", res.Endpoint)
	}
	return res.Token
}

func (r *runner) client() (*remote.Client, error) {
	return remote.New(remote.Config{BaseURL: r.cfg.BaseURL, Token: r.token()})
}

// logOptions layers the configured level and format over the defaults.
func (r *runner) logOptions(prefix string) logging.Options {
	opts := logging.DefaultOptions()
	opts.Prefix = prefix
	if r.cfg.Log.Level != "" {
		opts.Level = r.cfg.Log.Level
	}
	if r.cfg.Log.Format != "" {
		opts.Format = r.cfg.Log.Format
	}
	return opts
}

// -------------- subcommand impls ----------------

func (r *runner) doTUI(ctx context.Context) int {
	c, err := r.client()
	if err != nil {
		r.theme.Fail(r.stderr, err.Error())
		return 1
	}

	logger := logging.Discard()
	if r.cfg.Log.File != "" {
		l, closer, err := logging.OpenFile(r.cfg.Log.File, r.logOptions("tui"))
		if err != nil {
			r.theme.Fail(r.stderr, err.Error())
			return 1
		}
		defer closer.Close()
		logger = l
	}
	logger.Info("starting", "endpoint", c.Endpoint())

	err = ui.Run(ctx, ui.Options{
		Store:           c,
		RefreshOnCreate: r.cfg.RefreshOnCreate,
		Theme:           r.theme,
		Logger:          logger,
	})
	if err != nil {
		r.theme.Fail(r.stderr, "tui: "+err.Error())
		return 1
	}
	return 0
}

func (r *runner) doList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	group := fs.Bool("group", false, "group output by pending/done")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	c, err := r.client()
	if err != nil {
		r.theme.Fail(r.stderr, err.Error())
		return 1
	}
	items, err := c.ListAll(ctx)
	if err != nil {
		r.theme.Fail(r.stderr, "ls: "+err.Error())
		return 1
	}
	r.logger.Debug("listed", "count", len(items), "endpoint", c.Endpoint())

	t := r.theme
	done := 0
	for _, it := range items {
		if it.Completed {
			done++
		}
	}

	var lines []string
	lines = append(lines, t.Header(items))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(done, len(items), 28)))
	lines = append(lines, "")
	if *group {
		lines = append(lines, t.GroupLines(items)...)
	} else {
		lines = append(lines, t.ItemLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	fmt.Fprintln(r.stdout, t.Panel(lines))
	return 0
}

func (r *runner) doAdd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	done := fs.Bool("done", false, "create the item already completed")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		r.theme.Fail(r.stderr, "usage: todo add [--done] <body...>")
		return 2
	}
	body := strings.Join(fs.Args(), " ")

	c, err := r.client()
	if err != nil {
		r.theme.Fail(r.stderr, err.Error())
		return 1
	}
	it, err := c.Create(ctx, body, *done)
	if err != nil {
		r.theme.Fail(r.stderr, "add: "+err.Error())
		return 1
	}
	r.logger.Debug("created", "id", it.ID)
	r.theme.OK(r.stdout, fmt.Sprintf("added #%s", it.ID))
	return 0
}

func (r *runner) doServe(ctx context.Context, args []string) int {
	sc := r.cfg.Server
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	fs.StringVar(&sc.Addr, "addr", sc.Addr, "listen address")
	fs.StringVar(&sc.Backend, "backend", sc.Backend, "storage backend (sqlite|json)")
	fs.StringVar(&sc.DSN, "dsn", sc.DSN, "database path or JSON file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if sc.Backend == "json" && sc.DSN == config.DefaultServerDSN {
		sc.DSN = jsonstore.DefaultFileName
	}
	backend, err := openBackend(sc.Backend, sc.DSN)
	if err != nil {
		r.theme.Fail(r.stderr, "serve: "+err.Error())
		return 1
	}
	defer backend.Close()

	srv := server.New(backend, server.Options{
		Token:       sc.Token,
		CORSOrigins: sc.CORSOrigins,
		Logger:      r.logger.WithPrefix("serve"),
	})
	if err := srv.ListenAndServe(ctx, sc.Addr); err != nil {
		r.theme.Fail(r.stderr, "serve: "+err.Error())
		return 1
	}
	return 0
}

func openBackend(kind, dsn string) (store.Backend, error) {
	switch kind {
	case "sqlite":
		s, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "json":
		s, err := jsonstore.New(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown backend %q", kind)
}

// -------------- auth subcommands ----------------

func (r *runner) doAuthLogin(args []string) int {
	fs := flag.NewFlagSet("auth login", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	ttl := fs.Duration("expires-in", 0, "token lifetime, e.g. 24h (0 = no expiry)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	k, err := auth.OpenDefault()
	if err != nil {
		r.theme.Fail(r.stderr, err.Error())
		return 1
	}
	fmt.Fprint(r.stdout, "Paste your token: ")
	line, err := bufio.NewReader(r.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		r.theme.Fail(r.stderr, "read token: "+err.Error())
		return 1
	}

	now := time.Now()
	var expires *time.Time
	if *ttl > 0 {
		e := now.Add(*ttl).UTC()
		expires = &e
	}
	if err := k.Put(r.cfg.BaseURL, line, expires, now); err != nil {
		r.theme.Fail(r.stderr, "save token: "+err.Error())
		return 1
	}
	if err := k.Save(); err != nil {
		r.theme.Fail(r.stderr, "save token: "+err.Error())
		return 1
	}
	r.theme.OK(r.stdout, "logged in to "+r.cfg.BaseURL)
	return 0
}

func (r *runner) doAuthLogout() int {
	k, err := auth.OpenDefault()
	if err != nil {
		r.theme.Fail(r.stderr, err.Error())
		return 1
	}
	removed, err := k.Remove(r.cfg.BaseURL)
	if err != nil {
		r.theme.Fail(r.stderr, "logout: "+err.Error())
		return 1
	}
	if err := k.Save(); err != nil {
		r.theme.Fail(r.stderr, "logout: "+err.Error())
		return 1
	}
	switch {
	case removed:
		r.theme.OK(r.stdout, "logged out of "+r.cfg.BaseURL)
	default:
		r.theme.OK(r.stdout, "no token stored for "+r.cfg.BaseURL)
	}
	if os.Getenv(auth.EnvToken) != "" {
		fmt.Fprintln(r.stdout, r.theme.Muted.Render(auth.EnvToken+" is still set and will be sent"))
	}
	return 0
}

func (r *runner) doAuthStatus() int {
	k, err := auth.OpenDefault()
	if err != nil {
		r.theme.Fail(r.stderr, err.Error())
		return 1
	}
	res, err := k.Resolve(r.cfg.BaseURL)
	if err != nil {
		r.theme.Fail(r.stderr, err.Error())
		return 1
	}
	if res == nil {
		fmt.Fprintln(r.stdout, r.theme.Muted.Render("not logged in to "+r.cfg.BaseURL))
		fmt.Fprintln(r.stdout, "Run: todo auth login")
	} else {
		fmt.Fprintf(r.stdout, "endpoint: %s\n", res.Endpoint)
		fmt.Fprintf(r.stdout, "source: %s\n", res.Source)
		switch {
		case res.ExpiresAt == nil:
			fmt.Fprintln(r.stdout, "expires: (never)")
		case res.Expired(time.Now()):
			fmt.Fprintf(r.stdout, "expires: %s (expired)\n", res.ExpiresAt.UTC().Format(time.RFC3339))
		default:
			fmt.Fprintf(r.stdout, "expires: %s\n", res.ExpiresAt.UTC().Format(time.RFC3339))
		}
	}
	if eps := k.Endpoints(); len(eps) > 0 {
		fmt.Fprintln(r.stdout, "stored: "+strings.Join(eps, ", "))
	}
	fmt.Fprintln(r.stdout, "env override: "+auth.EnvToken)
	return 0
}
