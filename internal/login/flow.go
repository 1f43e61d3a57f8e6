package login

import (
	"context"
	"strings"

	"storekeep/internal/session"
)

// Step identifies where the two-step login handshake currently is.
type Step string

const (
	StepUsername Step = "username"
	StepPassword Step = "password"
)

// Authenticator is the slice of the session store the flow drives.
type Authenticator interface {
	CheckUsername(ctx context.Context, username string) session.CheckResult
	Login(ctx context.Context, username, password string) session.LoginResult
}

// Flow is the transient state of one login attempt. It is driven from
// a single UI loop and is not safe for concurrent use.
type Flow struct {
	auth Authenticator

	step      Step
	username  string
	password  string
	storeName string
	ownerName string
	lastError string
}

func NewFlow(auth Authenticator) *Flow {
	return &Flow{auth: auth, step: StepUsername}
}

func (f *Flow) Step() Step        { return f.step }
func (f *Flow) Username() string  { return f.username }
func (f *Flow) StoreName() string { return f.storeName }
func (f *Flow) OwnerName() string { return f.ownerName }
func (f *Flow) LastError() string { return f.lastError }

// SetUsername records the entered username. Changing it invalidates
// any store/owner names resolved for the previous value, so stale
// identity is never displayed after going back and editing.
func (f *Flow) SetUsername(username string) {
	username = strings.TrimSpace(username)
	if username != f.username {
		f.storeName = ""
		f.ownerName = ""
	}
	f.username = username
}

func (f *Flow) SetPassword(password string) {
	f.password = password
}

// SubmitUsername runs the existence check. Only a successful check
// advances the flow to the password step.
func (f *Flow) SubmitUsername(ctx context.Context) session.CheckResult {
	if f.step != StepUsername {
		return session.CheckResult{Error: "Not at the username step"}
	}

	res := f.auth.CheckUsername(ctx, f.username)
	if !res.Success {
		f.lastError = res.Error
		return res
	}

	f.storeName = res.StoreName
	f.ownerName = res.OwnerName
	f.lastError = ""
	f.step = StepPassword
	return res
}

// SubmitPassword verifies the password for the username captured at
// the previous step. Success resets the flow entirely; navigation away
// follows from the session becoming authenticated, not from the flow.
// Failure keeps the entered password for retry and never resubmits.
func (f *Flow) SubmitPassword(ctx context.Context) session.LoginResult {
	if f.step != StepPassword {
		return session.LoginResult{Error: "Not at the password step"}
	}

	if strings.TrimSpace(f.password) == "" {
		f.lastError = "Please enter your password"
		return session.LoginResult{Error: f.lastError}
	}

	res := f.auth.Login(ctx, f.username, f.password)
	if !res.Success {
		f.lastError = res.Error
		return res
	}

	f.reset()
	return res
}

// Back returns to the username step unconditionally, clearing the
// password field and any password-step error.
func (f *Flow) Back() {
	f.step = StepUsername
	f.password = ""
	f.lastError = ""
}

func (f *Flow) reset() {
	f.step = StepUsername
	f.username = ""
	f.password = ""
	f.storeName = ""
	f.ownerName = ""
	f.lastError = ""
}
