// Package authflow implements the login flow the admin panel drives:
// username+password, with a second round-trip answering the account's
// security question when the server signals the challenge.
package authflow

import (
	"context"
	"strings"

	"github.com/stormarchive/timeline-service/internal/blocking"
	"github.com/stormarchive/timeline-service/internal/types/admins"
)

// Client performs the login call. Non-2xx responses come back as errors
// carrying the server's message.
type Client interface {
	Login(ctx context.Context, username, password, securityAnswer string) (admins.LoginResponse, error)
}

// Flow holds the login form's state across the challenge round-trip.
type Flow struct {
	client Client
	ops    *blocking.Set

	challengeActive bool
	question        string
	errMsg          string
	admin           *admins.Admin
	token           string
}

func New(client Client, ops *blocking.Set) *Flow {
	if ops == nil {
		ops = blocking.NewSet()
	}
	return &Flow{client: client, ops: ops}
}

// Submit sends the credentials, including the security answer once the
// challenge is active. An empty answer is refused locally while a
// challenge is pending; the question text is preserved across the
// retry.
func (f *Flow) Submit(ctx context.Context, username, password, answer string) error {
	f.errMsg = ""

	if f.challengeActive && strings.TrimSpace(answer) == "" {
		f.errMsg = "Please answer the security question"
		return nil
	}

	release := f.ops.Acquire(blocking.OpLogin)
	resp, err := f.client.Login(ctx, username, password, answer)
	release()

	if err != nil {
		f.errMsg = err.Error()
		return err
	}

	if resp.RequiresSecurityAnswer {
		f.challengeActive = true
		f.question = resp.Question
		return nil
	}

	f.admin = resp.Admin
	f.token = resp.Token
	f.challengeActive = false
	f.question = ""
	return nil
}

func (f *Flow) ChallengeActive() bool { return f.challengeActive }
func (f *Flow) Question() string      { return f.question }
func (f *Flow) Err() string           { return f.errMsg }
func (f *Flow) Authenticated() bool   { return f.admin != nil }
func (f *Flow) Admin() *admins.Admin  { return f.admin }
func (f *Flow) Token() string         { return f.token }
