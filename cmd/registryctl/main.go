// registryctl runs one-off maintenance tasks against the registry database:
// applying migrations, loading demo clients and creating operators.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/registry/internal/registry/app"
	"github.com/aussiebroadwan/registry/internal/registry/seed"
	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/internal/registry/store"
	"github.com/aussiebroadwan/registry/pkg/cryptox"
	"github.com/aussiebroadwan/registry/pkg/slogx"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"migrate", "apply database migrations", runMigrate},
	{"seed", "load the demo clients (existing tax ids are skipped)", runSeed},
	{"create-admin", "create an operator holding every scope", runCreateAdmin},
	{"stats", "print client statistics", runStats},
}

// env is what every command needs: configuration, a logger and an open
// store with migrations applied.
type env struct {
	cfg    app.Config
	logger *slog.Logger
	db     store.Store
	out    io.Writer
	close  func()
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(out)
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx, out)
	if err != nil {
		return err
	}
	defer e.close()

	return cmd.run(ctx, e, args[1:])
}

func openEnv(ctx context.Context, out io.Writer) (*env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := slogx.New(slogx.Config{
		Service: "registryctl",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  os.Stderr,
	})

	db, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	return &env{cfg: cfg, logger: logger, db: db, out: out, close: func() { _ = db.Close() }}, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: registryctl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration is read from the environment and .env, as for the server.")
}

func parseFlags(fs *pflag.FlagSet, args []string) (bool, error) {
	err := fs.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if fs.NArg() > 0 {
		return false, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return true, nil
}

func runMigrate(_ context.Context, e *env, args []string) error {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	// openEnv already migrated.
	fmt.Fprintf(e.out, "migrations applied (%s)\n", e.cfg.DatabaseDriver)
	return nil
}

func runSeed(ctx context.Context, e *env, args []string) error {
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	file := fs.StringP("file", "f", "", "YAML file of clients to load instead of the built-in demo set")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	inputs, err := seed.Demo()
	if *file != "" {
		var f *os.File
		if f, err = os.Open(*file); err != nil {
			return err
		}
		defer f.Close()
		inputs, err = seed.Parse(f)
	}
	if err != nil {
		return err
	}

	clients := &service.ClientService{Store: e.db}
	res, err := seed.Load(slogx.WithContext(ctx, e.logger), clients, inputs)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d client(s) created, %d skipped\n", res.Created, res.Skipped)
	return nil
}

func runCreateAdmin(ctx context.Context, e *env, args []string) error {
	fs := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	username := fs.StringP("username", "u", "admin", "operator username")
	password := fs.StringP("password", "p", "", "operator password (generated when empty)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	generated := *password == ""
	if generated {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			return err
		}
		*password = pw
	}

	pepper, err := cryptox.LoadOrCreatePepper(e.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	auth := &service.AuthService{Store: e.db, Hasher: cryptox.PasswordHasher{Pepper: pepper}}
	created, err := auth.CreateAdmin(slogx.WithContext(ctx, e.logger), *username, *password)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(e.out, "operator %q already exists\n", *username)
		return nil
	}

	fmt.Fprintf(e.out, "operator %q created\n", *username)
	if generated {
		fmt.Fprintf(e.out, "password: %s\n", *password)
	}
	return nil
}

func runStats(ctx context.Context, e *env, args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	clients := &service.ClientService{Store: e.db}
	s, err := clients.Statistics(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "total:           %d\n", s.Total)
	fmt.Fprintf(e.out, "active:          %d\n", s.Active)
	fmt.Fprintf(e.out, "inactive:        %d\n", s.Inactive)
	fmt.Fprintf(e.out, "with fiscal key: %d\n", s.WithFiscalCredential)
	fmt.Fprintf(e.out, "active share:    %.2f%%\n", s.PercentActive)
	return nil
}
