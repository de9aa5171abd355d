package authflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stormarchive/timeline-service/internal/types/admins"
)

type fakeLoginClient struct {
	calls     int
	responses []admins.LoginResponse
	errs      []error
}

func (f *fakeLoginClient) Login(ctx context.Context, username, password, securityAnswer string) (admins.LoginResponse, error) {
	n := f.calls
	f.calls++
	var resp admins.LoginResponse
	if n < len(f.responses) {
		resp = f.responses[n]
	}
	var err error
	if n < len(f.errs) {
		err = f.errs[n]
	}
	return resp, err
}

func TestSubmitWrongPasswordShowsSingleError(t *testing.T) {
	client := &fakeLoginClient{errs: []error{errors.New("invalid credentials")}}
	f := New(client, nil)

	if err := f.Submit(context.Background(), "admin", "wrong", ""); err == nil {
		t.Fatal("Expected submit to fail")
	}

	if f.Err() != "invalid credentials" {
		t.Fatalf("Expected credential error surfaced, got %q", f.Err())
	}
	if f.ChallengeActive() {
		t.Fatal("Expected no security prompt on bad credentials")
	}
	if f.Authenticated() {
		t.Fatal("Expected unauthenticated state")
	}
	if client.calls != 1 {
		t.Fatalf("Expected exactly one login call, got %d", client.calls)
	}
}

func TestSubmitSucceedsWithoutChallenge(t *testing.T) {
	client := &fakeLoginClient{responses: []admins.LoginResponse{
		{Admin: &admins.Admin{ID: "1", Username: "admin"}, Token: "tok"},
	}}
	f := New(client, nil)

	if err := f.Submit(context.Background(), "admin", "correct", ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !f.Authenticated() || f.Token() != "tok" {
		t.Fatal("Expected authenticated session with token")
	}
	if f.ChallengeActive() || f.Err() != "" {
		t.Fatal("Expected no challenge and no error")
	}
}

func TestChallengeFlow(t *testing.T) {
	client := &fakeLoginClient{responses: []admins.LoginResponse{
		{RequiresSecurityAnswer: true, Question: "First concert attended?"},
		{Admin: &admins.Admin{ID: "1", Username: "admin"}, Token: "tok"},
	}}
	f := New(client, nil)

	if err := f.Submit(context.Background(), "admin", "correct", ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !f.ChallengeActive() || f.Question() != "First concert attended?" {
		t.Fatalf("Expected challenge with question, got active=%v question=%q", f.ChallengeActive(), f.Question())
	}
	if f.Authenticated() {
		t.Fatal("Expected no session before the answer")
	}

	if err := f.Submit(context.Background(), "admin", "correct", "the misfits"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !f.Authenticated() || f.ChallengeActive() {
		t.Fatal("Expected challenge cleared and session established")
	}
	if client.calls != 2 {
		t.Fatalf("Expected two login calls, got %d", client.calls)
	}
}

func TestEmptyAnswerRefusedLocallyDuringChallenge(t *testing.T) {
	client := &fakeLoginClient{responses: []admins.LoginResponse{
		{RequiresSecurityAnswer: true, Question: "First concert attended?"},
	}}
	f := New(client, nil)

	f.Submit(context.Background(), "admin", "correct", "")
	if client.calls != 1 {
		t.Fatalf("Expected one call to trigger the challenge, got %d", client.calls)
	}

	if err := f.Submit(context.Background(), "admin", "correct", "   "); err != nil {
		t.Fatalf("Expected local refusal without a hard error, got %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("Expected refusal without a network call, got %d calls", client.calls)
	}
	if !f.ChallengeActive() {
		t.Fatal("Expected challenge to remain active")
	}
	if f.Err() == "" {
		t.Fatal("Expected an error message prompting for the answer")
	}
}

func TestChallengePreservedOnWrongAnswer(t *testing.T) {
	client := &fakeLoginClient{
		responses: []admins.LoginResponse{
			{RequiresSecurityAnswer: true, Question: "First concert attended?"},
			{},
		},
		errs: []error{nil, errors.New("invalid credentials")},
	}
	f := New(client, nil)

	f.Submit(context.Background(), "admin", "correct", "")
	if err := f.Submit(context.Background(), "admin", "correct", "wrong answer"); err == nil {
		t.Fatal("Expected wrong answer rejected")
	}

	if !f.ChallengeActive() || f.Question() != "First concert attended?" {
		t.Fatal("Expected question preserved so the user can retry")
	}
	if f.Err() != "invalid credentials" {
		t.Fatalf("Expected server error surfaced, got %q", f.Err())
	}
}
