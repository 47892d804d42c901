package livetest

import (
	"context"
	"fmt"

	"github.com/mcdev12/liveworkshop/go/internal/live"
)

// Authorizer answers every RequireController call the same way.
type Authorizer struct {
	Identity live.Identity
	Err      error
}

// Controller returns an Authorizer that always grants subject.
func Controller(subject string) Authorizer {
	return Authorizer{Identity: live.Identity{Subject: subject}}
}

// Denied returns an Authorizer that always refuses.
func Denied() Authorizer {
	return Authorizer{Err: fmt.Errorf("%w: not the controller", live.ErrUnauthorized)}
}

func (a Authorizer) RequireController(context.Context) (live.Identity, error) {
	return a.Identity, a.Err
}
