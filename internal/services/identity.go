// identity.go
//
// Credential resolution. An absent credential is not an error; a present
// but invalid one always is.

package services

import (
	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/types"
)

// Identity is the result of resolving a bearer credential.
// A zero Identity means the request is unauthenticated.
type Identity struct {
	ActorID string
}

// Authenticated reports whether the identity carries a verified actor.
func (i Identity) Authenticated() bool {
	return i.ActorID != ""
}

// ResolveCredential turns an opaque bearer token into an Identity.
// An empty token resolves to the unauthenticated identity with no error.
// A non-empty token that fails verification is an InvalidCredential
// failure; callers must not fall back to an anonymous view on it.
func ResolveCredential(mgr *auth.Manager, token string) (Identity, error) {
	if token == "" {
		return Identity{}, nil
	}

	claims, err := mgr.Verify(token)
	if err != nil {
		return Identity{}, types.InvalidCredential("invalid or expired token")
	}
	if claims.UserID == "" {
		return Identity{}, types.InvalidCredential("token carries no actor id")
	}

	return Identity{ActorID: claims.UserID}, nil
}
