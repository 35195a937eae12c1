package core

import (
	"context"
	"time"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/store"
	"github.com/google/uuid"
)

// IdentityResolver issues and recognizes durable per-client identity tokens.
//
// The trust model is deliberate: a presented credential is taken verbatim as
// the identity with no server-side verification. Identity is a continuity
// token for correlating messages and moderation records, not an
// authentication credential.
type IdentityResolver struct {
	store store.IdentityStore
}

// NewIdentityResolver builds a resolver. A nil store disables first-seen
// bookkeeping.
func NewIdentityResolver(st store.IdentityStore) *IdentityResolver {
	return &IdentityResolver{store: st}
}

// Resolve maps a presented credential to an identity. An empty credential
// mints a fresh identity; minted reports that the caller must deliver the new
// credential to the client for future reconnects.
func (r *IdentityResolver) Resolve(ctx context.Context, credential string) (identity string, minted bool, err error) {
	identity = credential
	if identity == "" {
		identity = uuid.NewString()
		minted = true
	}

	if r.store != nil {
		if err := r.store.RecordIdentity(ctx, identity, time.Now()); err != nil {
			return identity, minted, err
		}
	}
	return identity, minted, nil
}
