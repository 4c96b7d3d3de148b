package main

import (
	"github.com/InNoobWeTrust/web-automator/cmd/cli"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Run  cli.RunCmd  `cmd:"" help:"Run the configured instructions against target URLs."`
	Lint cli.LintCmd `cmd:"" help:"Validate a configuration without opening a browser."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("web-automator"),
		kong.Description("Declarative per-domain browser automation."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
