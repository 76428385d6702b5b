package cmdflags

import (
	"github.com/calheira/wikigate/internal/secret"
	"github.com/urfave/cli/v2"
)

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Aliases:     []string{"b"},
		Usage:       "Address to bind for incoming requests",
		Destination: out,
		Value:       *out,
	}
}

func Backend(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "backend",
		Aliases:     []string{"w", "wiki"},
		Usage:       "Location of the protected wiki server (host[:port] or http://host[:port]/base)",
		Destination: out,
		Required:    true,
	}
}

func Credentials(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "credentials",
		Aliases:     []string{"c"},
		Usage:       "Credential entries (user:salt:digest;... or salt:digest for a single anonymous user), as produced by mkuser",
		Destination: out,
		Required:    true,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = secret.EnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the hex-encoded secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func Username(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "username",
		Aliases:     []string{"u", "user"},
		Usage:       "Name of the user (omit for a single-user deployment)",
		Destination: out,
	}
}
