package mkuser

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calheira/wikigate/internal/cmdflags"
	"github.com/calheira/wikigate/internal/credstore"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const (
	saltLen      = 7
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

func Cmd() *cli.Command {
	var username string
	return &cli.Command{
		Name:  "mkuser",
		Usage: "Produce a credential entry for the serve --credentials list (password is prompted, never echoed)",
		Flags: []cli.Flag{
			cmdflags.Username(&username),
		},
		Action: func(ctx *cli.Context) error {
			if strings.ContainsAny(username, ":; \t") {
				return fmt.Errorf("username %q cannot contain the credential list separators or blanks", username)
			}
			password, err := readPassword()
			if err != nil {
				return err
			}
			if len(password) == 0 {
				return errors.New("password cannot be empty")
			}
			salt, err := randomSalt(rand.Reader, saltLen)
			if err != nil {
				return err
			}
			digest := credstore.Digest(salt, password)
			entry := fmt.Sprintf("%v:%v", salt, strings.ToUpper(hex.EncodeToString(digest[:])))
			if username != "" {
				entry = username + ":" + entry
			}
			fmt.Println(entry)
			return nil
		},
	}
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		buf, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("cannot read password, cause %w", err)
		}
		return string(buf), nil
	}
	// stdin is a pipe, read a single line
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	return strings.TrimSpace(sc.Text()), nil
}

func randomSalt(entropy io.Reader, size int) (string, error) {
	out := make([]byte, 0, size)
	var buf [1]byte
	for len(out) < size {
		_, err := io.ReadFull(entropy, buf[:])
		if err != nil {
			return "", fmt.Errorf("unable to gather entropy for salt, cause %w", err)
		}
		// 248 is the largest multiple of len(saltAlphabet) below 256,
		// rejecting above it keeps the draw uniform
		if int(buf[0]) >= 248 {
			continue
		}
		out = append(out, saltAlphabet[int(buf[0])%len(saltAlphabet)])
	}
	return string(out), nil
}
