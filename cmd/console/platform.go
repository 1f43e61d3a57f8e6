package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"storekeep/internal/permission"
)

// terminalAuthorizer maps the platform permission surface onto stdin
// prompts. Grants live for the process lifetime only; answering
// "never" marks the capability permanently denied, like a user ticking
// "don't ask again" in a system dialog.
type terminalAuthorizer struct {
	in     *bufio.Reader
	grants map[permission.Capability]permission.Status
}

func (a *terminalAuthorizer) Check(_ context.Context, c permission.Capability) (permission.Status, error) {
	if st, ok := a.grants[c]; ok {
		return st, nil
	}
	return permission.Status{Granted: false, CanAskAgain: true}, nil
}

func (a *terminalAuthorizer) Request(_ context.Context, c permission.Capability) (permission.Status, error) {
	if st, ok := a.grants[c]; ok && (st.Granted || !st.CanAskAgain) {
		return st, nil
	}

	fmt.Printf("Allow %s access? [y/n/never] ", c)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return permission.Status{}, err
	}

	var st permission.Status
	switch strings.TrimSpace(line) {
	case "y", "yes":
		st = permission.Status{Granted: true, CanAskAgain: true}
	case "never":
		st = permission.Status{Granted: false, CanAskAgain: false}
	default:
		st = permission.Status{Granted: false, CanAskAgain: true}
	}

	if a.grants == nil {
		a.grants = make(map[permission.Capability]permission.Status)
	}
	a.grants[c] = st
	return st, nil
}

// terminalDialer prints the tel: URL instead of launching a phone app.
type terminalDialer struct{}

func (terminalDialer) Dial(phone string) error {
	fmt.Printf("Dial tel:%s\n", phone)
	return nil
}
