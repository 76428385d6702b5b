package serve

import (
	"fmt"
	"time"

	"github.com/calheira/wikigate/internal/cmdflags"
	"github.com/calheira/wikigate/internal/credstore"
	"github.com/calheira/wikigate/internal/gate"
	"github.com/calheira/wikigate/internal/httpserver"
	"github.com/calheira/wikigate/internal/journal"
	"github.com/calheira/wikigate/internal/secret"
	"github.com/calheira/wikigate/internal/throttle"
	"github.com/calheira/wikigate/internal/token"
	"github.com/calheira/wikigate/internal/upstream"
	"github.com/urfave/cli/v2"
)

const (
	throttleWindow = 15 * time.Minute
	throttleLimit  = 10
)

func Cmd() *cli.Command {
	bindAddr := "localhost:8080"
	var backend string
	var credentials string
	var secretEnvVar string
	var journalPath string
	var insecureCookie bool
	sessionTTL := time.Duration(0)
	backendTimeout := 30 * time.Second
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the authenticating proxy in front of the wiki backend",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			cmdflags.Backend(&backend),
			cmdflags.Credentials(&credentials),
			cmdflags.SecretEnvVar(&secretEnvVar),
			&cli.BoolFlag{
				Name:        "insecure-cookie",
				Usage:       "Allow the session cookie over plain HTTP (only for deployments without TLS in front)",
				Destination: &insecureCookie,
			},
			&cli.DurationFlag{
				Name:        "session-ttl",
				Usage:       "Reject session tokens older than this (0 disables expiry, secret rotation remains the only revocation)",
				Value:       sessionTTL,
				Destination: &sessionTTL,
			},
			&cli.DurationFlag{
				Name:        "backend-timeout",
				Usage:       "How long to wait for the backend to start responding",
				Value:       backendTimeout,
				Destination: &backendTimeout,
			},
			&cli.StringFlag{
				Name:        "journal",
				Usage:       "Path to a sqlite file where auth events are journaled (empty disables journaling)",
				Destination: &journalPath,
			},
		},
		Action: func(ctx *cli.Context) error {
			key, err := secret.FromEnv(secretEnvVar, nil, nil)
			if err != nil {
				return err
			}
			creds, err := credstore.Parse(credentials)
			if err != nil {
				return fmt.Errorf("invalid value for --credentials: %w", err)
			}
			target, err := upstream.ParseTarget(backend)
			if err != nil {
				return fmt.Errorf("invalid value for --backend: %w", err)
			}
			codec := token.New(key, sessionTTL)
			// the codec holds its own derived key from here on
			key.Zero()

			limiter, err := throttle.New(throttleWindow, throttleLimit)
			if err != nil {
				return err
			}
			var sink journal.Sink = journal.Discard()
			if journalPath != "" {
				db, err := journal.Open(ctx.Context, journalPath)
				if err != nil {
					return err
				}
				defer db.Close()
				sink = db
			}

			forwarder := upstream.NewForwarder(target, backendTimeout)
			handler := gate.New(creds, codec, forwarder, limiter, sink, insecureCookie).AsHandler()
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
