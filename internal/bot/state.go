// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"

	"go.astrophena.name/linguabot/internal/store"
	"go.astrophena.name/linguabot/internal/util/set"
)

// Collections of identifiers persisted in the store. Each is a JSON array of
// opaque strings.
const (
	colAllowed = "allowedGroups"
	colPending = "pendingGroups"
	colAdmins  = "admins"
	colCodes   = "authCodes"
)

// State is the durable authorization state of the bot: which containers are
// allowed or pending, who the admins are and which authorization codes are
// outstanding.
//
// All methods are safe for concurrent use. Every mutation is flushed to the
// underlying store before the method returns; a flush failure is returned to
// the caller but the in-memory change is kept, so durability degrades
// gracefully instead of crashing mid-conversation.
type State struct {
	store store.Store

	mu      sync.Mutex
	allowed set.Set[string]
	pending set.Set[string]
	admins  set.Set[string]
	codes   set.Set[string]
}

// LoadState reads all collections from s. A collection that is absent is
// treated as empty; a collection that does not parse is an error, which
// callers are expected to treat as fatal at startup.
func LoadState(ctx context.Context, s store.Store) (*State, error) {
	st := &State{store: s}
	for _, c := range []struct {
		key string
		set *set.Set[string]
	}{
		{colAllowed, &st.allowed},
		{colPending, &st.pending},
		{colAdmins, &st.admins},
		{colCodes, &st.codes},
	} {
		vals, err := loadCollection(ctx, s, c.key)
		if err != nil {
			return nil, err
		}
		*c.set = set.NewFromSlice(vals...)
	}
	return st, nil
}

func loadCollection(ctx context.Context, s store.Store, key string) ([]string, error) {
	b, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	if b == nil {
		return nil, nil
	}
	var vals []string
	if err := json.Unmarshal(b, &vals); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", key, err)
	}
	return vals, nil
}

// flush must be called with st.mu held.
func (st *State) flush(ctx context.Context, key string, s set.Set[string]) error {
	b, err := json.Marshal(s.ToSortedSlice())
	if err != nil {
		return err
	}
	if err := st.store.Set(ctx, key, b); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// IsAdmin reports whether id is in the admin set. The owner is not implicitly
// a member of this set; see [Bot.roleOf].
func (st *State) IsAdmin(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.admins.Has(id)
}

// AddAdmin adds id to the admin set. Adding an existing admin is a no-op.
func (st *State) AddAdmin(ctx context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.admins.Add(id) {
		return nil
	}
	return st.flush(ctx, colAdmins, st.admins)
}

// AuthStateOf returns the authorization state of a container. A container
// never seen before is Unauthorized.
func (st *State) AuthStateOf(containerID string) AuthState {
	st.mu.Lock()
	defer st.mu.Unlock()
	switch {
	case st.allowed.Has(containerID):
		return Allowed
	case st.pending.Has(containerID):
		return Pending
	default:
		return Unauthorized
	}
}

// Allow transitions a container to Allowed, removing it from the pending set
// if present.
func (st *State) Allow(ctx context.Context, containerID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.allowLocked(ctx, containerID)
}

func (st *State) allowLocked(ctx context.Context, containerID string) error {
	added := st.allowed.Add(containerID)
	removed := st.pending.Del(containerID)
	if !added && !removed {
		return nil
	}
	err := st.flush(ctx, colAllowed, st.allowed)
	if removed {
		if perr := st.flush(ctx, colPending, st.pending); err == nil {
			err = perr
		}
	}
	return err
}

// Remove transitions a container out of Allowed (and out of Pending, if
// present).
func (st *State) Remove(ctx context.Context, containerID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	removedAllowed := st.allowed.Del(containerID)
	removedPending := st.pending.Del(containerID)
	var err error
	if removedAllowed {
		err = st.flush(ctx, colAllowed, st.allowed)
	}
	if removedPending {
		if perr := st.flush(ctx, colPending, st.pending); err == nil {
			err = perr
		}
	}
	return err
}

// MarkPending puts a container into the pending set, awaiting approval. A
// container that is already allowed or pending is left untouched.
func (st *State) MarkPending(ctx context.Context, containerID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.allowed.Has(containerID) {
		return nil
	}
	if !st.pending.Add(containerID) {
		return nil
	}
	return st.flush(ctx, colPending, st.pending)
}

// Approve moves a pending container to Allowed. It reports whether the
// container was in the pending set.
func (st *State) Approve(ctx context.Context, containerID string) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.pending.Has(containerID) {
		return false, nil
	}
	return true, st.allowLocked(ctx, containerID)
}

// Reject removes a container from the pending set without allowing it. It
// reports whether the container was in the pending set.
func (st *State) Reject(ctx context.Context, containerID string) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.pending.Del(containerID) {
		return false, nil
	}
	return true, st.flush(ctx, colPending, st.pending)
}

// Allowed returns all allowed containers, sorted.
func (st *State) Allowed() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.allowed.ToSortedSlice()
}

// Pending returns all pending containers, sorted.
func (st *State) Pending() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.pending.ToSortedSlice()
}

const (
	codeLen     = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// MintCode generates a new single-use authorization code, adds it to the
// outstanding set and persists it.
func (st *State) MintCode(ctx context.Context) (string, error) {
	b := make([]byte, codeLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeCharset[int(b[i])%len(codeCharset)]
	}
	code := string(b)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.codes.Add(code)
	return code, st.flush(ctx, colCodes, st.codes)
}

// Authorize consumes code and transitions the container to Allowed. It
// reports whether the code was valid; an unknown or already consumed code
// changes nothing. A consumed code can never authorize a second container.
func (st *State) Authorize(ctx context.Context, code, containerID string) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.codes.Del(code) {
		return false, nil
	}
	err := st.flush(ctx, colCodes, st.codes)
	if aerr := st.allowLocked(ctx, containerID); err == nil {
		err = aerr
	}
	return true, err
}
