package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/erazemk/resell/internal/client"
	"github.com/erazemk/resell/internal/config"
	"github.com/erazemk/resell/internal/db"
	"github.com/erazemk/resell/internal/logging"
	"github.com/erazemk/resell/internal/market"
	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/session"
)

const usage = `Usage: resell [flags] <command> [args]

Commands:
  register -u <name> -e <email> [-p <password>]   create an account and log in
  login -u <name> [-p <password>]                 log in
  logout                                          log out
  whoami                                          show the logged-in user
  feed [-page n] [-per-page n] [-all]             list available items
       [-brand b] [-condition c] [-min p] [-max p] [-size s]
  search [-page n] [-per-page n] <query>          search available items by name
  show <id>                                       show one item
  sell -name <n> -brand <b> -condition <c> -price <p> -size <s>
  edit <id> [-name ...]                           change one of your items
  delete <id>                                     delete one of your items
  buy <id>                                        buy an item
  photo <id> <file>                               attach a photo to one of your items
  history                                         list your purchases and sales

Flags:
  -api <url>         API URL (default: $RESELL_API_URL or http://localhost:8080)
  -session <path>    session database (default: $RESELL_SESSION_DB)
  -v                 debug logging to stderr
  -h, -help          show this help and exit
`

// app holds what every command needs.
type app struct {
	client  *client.Client
	session *session.Store
	market  *market.Service

	stdin  io.Reader
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("resell", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", "", "")
	sessionPath := fs.String("session", "", "")
	verbose := fs.Bool("v", false, "")
	fs.Usage = func() { fmt.Fprint(stdout, usage) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if *apiURL != "" {
		if err := config.ValidateAPIURL(*apiURL); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		cfg.APIURL = *apiURL
	}
	if *sessionPath != "" {
		cfg.SessionDB = *sessionPath
	}
	if *verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	closeLog, err := logging.SetupStderr(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	name, cmdArgs := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command: %s\n", name)
		fs.Usage()
		return 2
	}

	sessionDB, err := db.OpenSession(cfg.SessionDB)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer sessionDB.Close()

	a := &app{stdin: stdin, stdout: stdout}
	a.client = client.New(cfg.APIURL, client.WithTokenSource(tokenFunc(func() string { return a.session.Token() })))
	a.session = session.New(a.client, &session.SQLiteStorage{DB: sessionDB}, session.WithRevoker(a.client))
	a.market = market.New(a.client, a.session)
	unsubscribe := a.session.Subscribe(func(prev, next *model.Identity) {
		slog.Debug("session changed", "from", identityName(prev), "to", identityName(next))
	})
	defer unsubscribe()

	if _, err := a.session.Restore(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if err := cmd(ctx, a, cmdArgs); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "usage: resell %s\n", commandUsage(name))
			return 2
		}
		fmt.Fprintf(stderr, "error: %s\n", describe(err))
		return 1
	}
	return 0
}

func identityName(id *model.Identity) string {
	if id == nil {
		return ""
	}
	return id.Username
}

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

// commandUsage returns the usage line of command name.
func commandUsage(name string) string {
	return strings.TrimSpace(name + " " + commandArgs[name])
}
