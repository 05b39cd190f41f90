// Command authctl registers accounts, issues tokens and verifies tokens
// directly against the configured store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/99minutos/auth-core/internal/cli"
	"github.com/99minutos/auth-core/internal/pkg/config"
	"github.com/99minutos/auth-core/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  os.Stderr,
		Service: "authctl",
	})

	if err := cli.New(cfg, log, os.Stdin, os.Stdout).Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
