package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	jwtmw "holdings_backend/internal/platform/jwt"
)

// tokenCmd implements the "token" command.
type tokenCmd struct {
	rt      *Runtime
	subject string
	ttl     time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue a bearer token for the query API" }
func (*tokenCmd) Usage() string {
	return `token -subject NAME [-ttl 720h]

Signs a token with JWT_SECRET for clients of the holdings HTTP API.
`
}
func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.subject, "subject", "", "client name recorded in the token")
	f.DurationVar(&c.ttl, "ttl", 30*24*time.Hour, "token lifetime")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.subject == "" {
		return c.rt.usage("-subject is required")
	}
	if c.rt.Config.JWTSecret == "" {
		return c.rt.fail(errors.New(jwtmw.EnvKeyJWTSecret + " is not set"))
	}
	token, err := jwtmw.NewGenerator(c.rt.Config.JWTSecret, c.ttl).GenerateToken(c.subject)
	if err != nil {
		return c.rt.fail(err)
	}
	fmt.Fprintln(c.rt.Out, token)
	return subcommands.ExitSuccess
}
