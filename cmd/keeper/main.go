// Command keeper prints a valid identity token for the configured photo-service account,
// logging in only when neither the held nor the persisted session still works.
//
//	keeper [--verbose] [--store file|postgres|redis] [--session-file PATH] [--env-file PATH] [--print-session]
//	keeper serve [--verbose] [--store ...]
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"keeper/cmd/internal/app"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func run(args []string) error {
	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	flags := pflag.NewFlagSet("keeper", pflag.ContinueOnError)
	var (
		opts    app.Options
		envFile string
	)
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log every tier and state transition")
	flags.StringVar(&opts.Store, "store", "", "session store: file, postgres or redis (default $KEEPER_STORE or file)")
	flags.StringVar(&opts.SessionFile, "session-file", "", "session file path for the file store")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.BoolVar(&opts.PrintSession, "print-session", false, "print the session id and cookie names instead of the token")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if flags.NArg() > 0 {
		err := fmt.Errorf("unexpected argument %q", flags.Arg(0))
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// Existing environment wins over the file; a missing default .env is fine.
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", envFile, err)
			return err
		}
	}

	opts.Serve = serve
	return app.Run(opts)
}
