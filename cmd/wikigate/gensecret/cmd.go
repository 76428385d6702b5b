package gensecret

import (
	"crypto/rand"
	"fmt"

	"github.com/calheira/wikigate/internal/secret"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "gensecret",
		Usage: "Generate a fresh token-signing secret and print it as hex",
		Action: func(ctx *cli.Context) error {
			key, err := secret.Generate(rand.Reader)
			if err != nil {
				return err
			}
			fmt.Println(key.Hex())
			return nil
		},
	}
}
