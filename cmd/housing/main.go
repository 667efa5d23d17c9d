package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/Deshan-5/house-price-ml/cmd/housing/commands"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/version"
)

const (
	exitUsage    = 2  // command line could not be parsed
	exitInternal = 10 // matches the adapter's internal category
)

// exitSignal carries a kong-requested exit (help, --version) out of run.
type exitSignal struct{ code int }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	cli := &commands.CLI{}
	g := &commands.Global{Ctx: ctx, Out: stdout, Err: stderr}

	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(exitSignal)
			if !ok {
				panic(r)
			}
			code = sig.code
		}
	}()

	parser, err := kong.New(cli,
		kong.Name("housing"),
		kong.Description("Prepare the housing price training table and its feature matrix."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitSignal{code: code}) }),
		kong.Bind(g, cli),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "housing: %v\n", err)
		return exitInternal
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "housing: %v\n", err)
		return exitUsage
	}

	if err := kctx.Run(); err != nil {
		logger := logging.Discard()
		if g.Logs != nil {
			logger = g.Logs.Logger()
		}
		return ferrors.NewCLIErrorAdapter(cli.Verbose, logger).WithOutput(stderr).Report(err)
	}
	return 0
}
