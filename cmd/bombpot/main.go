package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Solve   SolveCmd         `cmd:"" help:"Solve a double board bomb pot"`
	Equity  EquityCmd        `cmd:"" help:"Monte Carlo double board equity"`
	Env     EnvCmd           `cmd:"" help:"List the environment variables read by solve"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bombpot"),
		kong.Description("Double board bomb pot PLO solver"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
