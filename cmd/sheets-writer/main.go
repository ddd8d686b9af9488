// nolint: gocritic
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/cli"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(errors.PrefixError(err, "fatal error").Error()) // nolint:forbidigo
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := cli.NewRootCommand(cli.Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Envs:   os.LookupEnv,
	})
	return root.ExecuteContext(ctx)
}
