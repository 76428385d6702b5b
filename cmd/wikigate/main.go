package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/calheira/wikigate/cmd/wikigate/gensecret"
	"github.com/calheira/wikigate/cmd/wikigate/mkuser"
	"github.com/calheira/wikigate/cmd/wikigate/serve"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "wikigate",
		Usage: "Authenticating reverse proxy for wiki servers without a login of their own",
		Commands: []*cli.Command{
			serve.Cmd(),
			gensecret.Cmd(),
			mkuser.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
