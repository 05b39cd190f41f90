// Package cli implements authctl, the operator command line for the account
// store. It drives the same services as the HTTP server.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/99minutos/auth-core/internal/app"
	"github.com/99minutos/auth-core/internal/core/service"
	"github.com/99minutos/auth-core/internal/core/token"
	"github.com/99minutos/auth-core/internal/pkg/config"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

const usage = `usage: authctl <command> [flags]

commands:
  register -username NAME -email ADDR   create an account (password is prompted)
  login    -identifier NAME_OR_EMAIL    print a bearer token (password is prompted)
  verify   [-token TOKEN]               check a token (read from stdin when omitted)
`

// ErrUsage is returned for unknown commands or bad flags.
var ErrUsage = errors.New("invalid usage")

type App struct {
	cfg *config.Config
	log zerolog.Logger
	in  *bufio.Reader
	out io.Writer
}

func New(cfg *config.Config, log zerolog.Logger, in io.Reader, out io.Writer) *App {
	return &App{cfg: cfg, log: log, in: bufio.NewReader(in), out: out}
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}
	switch args[0] {
	case "register":
		return a.register(ctx, args[1:])
	case "login":
		return a.login(ctx, args[1:])
	case "verify":
		return a.verify(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	password, err := a.password()
	if err != nil {
		return err
	}

	core, err := app.NewCore(ctx, a.cfg, nil, a.log)
	if err != nil {
		return err
	}
	defer core.Close(context.Background())

	acct, err := core.Accounts.Register(ctx, *username, *email, password)
	if err != nil {
		return err
	}
	return a.printJSON(acct)
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	identifier := fs.String("identifier", "", "username or email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if err := a.cfg.RequireSecret(); err != nil {
		return err
	}

	password, err := a.password()
	if err != nil {
		return err
	}

	core, err := app.NewCore(ctx, a.cfg, nil, a.log)
	if err != nil {
		return err
	}
	defer core.Close(context.Background())

	session, err := core.Sessions.Login(ctx, *identifier, password)
	if err != nil {
		return err
	}
	return a.printJSON(session)
}

func (a *App) verify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(a.out)
	raw := fs.String("token", "", "bearer token")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *raw == "" {
		line, err := a.readLine()
		if err != nil {
			return err
		}
		*raw = line
	}

	guard := service.NewTokenGuard(token.NewSigner(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL), a.log)
	identity, err := guard.Authenticate("Bearer " + *raw)
	if err != nil {
		return err
	}
	return a.printJSON(identity)
}

// password prompts without echo on a terminal and reads one line otherwise.
func (a *App) password() (string, error) {
	fd := int(os.Stdin.Fd())
	if isTerminal(fd) {
		fmt.Fprint(a.out, "Enter password: ")
		pw, err := readPassword(fd)
		fmt.Fprintln(a.out)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return a.readLine()
}

func (a *App) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
