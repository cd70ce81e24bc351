package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tim25651/repo-utilities/apt"
)

const usage = `Usage:
  repo-utilities build <repo> <pkg>... -k KEY [flags]
  repo-utilities genkey <keyfile> [flags]

Run a subcommand with -h for its flags.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(ctx, os.Args[2:])
	case "genkey":
		err = runGenKey(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runBuild(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("build", pflag.ExitOnError)
	key := flags.StringP("key", "k", "", "private key file for signing the repository")
	suite := flags.StringP("suite", "s", "", "release suite name")
	arches := flags.StringArrayP("arch", "a", nil, "architectures to index (repeatable)")
	configFile := flags.StringP("config", "c", "", "YAML config file")
	verbose := flags.BoolP("verbose", "v", false, "debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	rest := flags.Args()
	if len(rest) < 1 {
		return fmt.Errorf("missing repository directory")
	}
	if *key == "" {
		return fmt.Errorf("--key is required")
	}

	cfg, err := loadFileConfig(*configFile)
	if err != nil {
		return err
	}
	if *suite != "" {
		cfg.Suite = *suite
	}
	if len(*arches) > 0 {
		cfg.Arches = *arches
	}

	builder := apt.NewBuilder(rest[0], *key)
	if err := applyConfig(builder, cfg); err != nil {
		return err
	}
	return builder.Build(ctx, rest[1:])
}

func runGenKey(args []string) error {
	flags := pflag.NewFlagSet("genkey", pflag.ExitOnError)
	name := flags.StringP("name", "n", os.Getenv("APTNAME"), "key holder name")
	email := flags.StringP("mail", "m", os.Getenv("APTEMAIL"), "key holder email")
	if err := flags.Parse(args); err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) != 1 {
		return fmt.Errorf("expected exactly one key file path")
	}
	return apt.GeneratePrivateKey(rest[0], *name, *email)
}
