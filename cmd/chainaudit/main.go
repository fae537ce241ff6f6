// Command chainaudit audits smart contracts and answers security questions
// about the findings.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/cli"
	"github.com/custodia-labs/chainaudit/internal/app"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(cli.Bootstrap{
		OpenSettings: app.OpenSettings,
		Build:        build,
		Check:        app.Check,
	})

	if err := cli.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func build(ctx context.Context, settings domain.AppSettings) (*cli.Runtime, error) {
	svc, err := app.Build(ctx, settings, app.Options{})
	if err != nil {
		return nil, err
	}
	return &cli.Runtime{
		Audit: svc.Audit,
		Ask:   svc.Ask,
		Close: svc.Close,
	}, nil
}
