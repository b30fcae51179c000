// Package session holds the per-client authentication state. Each browser
// tab (websocket) or request owns one State; there is no process wide
// "current user".
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"zappygames/internal/gateway"
	"zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

// Snapshot is the observable session: an identity, or nothing.
type Snapshot struct {
	Authenticated bool              `json:"authenticated"`
	Identity      *gateway.Identity `json:"user,omitempty"`
	Token         string            `json:"-"`
}

func (s Snapshot) UserID() uuid.UUID {
	if s.Identity == nil {
		return uuid.Nil
	}
	return s.Identity.ID
}

type Listener func(Snapshot)

type Service struct {
	gateway gateway.Gateway
	log     logger.Logger
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{
		gateway: gw,
		log:     logger.New("session"),
	}
}

func (s *Service) IsConfigured() bool {
	return s.gateway.IsConfigured()
}

// Open rehydrates a State from an existing token. An empty, expired or
// revoked token yields a signed out State.
func (s *Service) Open(ctx context.Context, token string) *State {
	log := s.log.TraceFromContext(ctx).Function("Open")

	state := &State{
		service:   s,
		listeners: make(map[int]Listener),
	}

	if token == "" {
		return state
	}

	remote, err := s.gateway.Auth().GetSession(ctx, token)
	if err != nil {
		log.Warn("failed to restore session", "error", err)
		return state
	}
	if remote != nil {
		state.current = snapshotOf(*remote)
	}

	return state
}

type State struct {
	service   *Service
	mu        sync.RWMutex
	current   Snapshot
	listeners map[int]Listener
	nextID    int
	closed    bool
}

func (st *State) IsConfigured() bool {
	return st.service.IsConfigured()
}

func (st *State) Current() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// OnChange registers fn for every later session change and returns a
// function that removes it.
func (st *State) OnChange(fn Listener) func() {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.nextID
	st.nextID++
	st.listeners[id] = fn

	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.listeners, id)
	}
}

func (st *State) SignIn(ctx context.Context, email, secret string) error {
	log := st.service.log.TraceFromContext(ctx).Function("SignIn")

	remote, err := st.service.gateway.Auth().SignIn(ctx, email, secret)
	if err != nil {
		log.Info("sign in rejected", "error", err)
		return err
	}

	st.ensureProfile(ctx, remote.Identity)
	st.set(snapshotOf(remote))
	return nil
}

// SignUp creates the account, then inserts the matching profile row. A
// failed profile insert is logged and the account is kept; SignIn repairs
// the missing row later.
func (st *State) SignUp(ctx context.Context, email, secret, displayName string) error {
	log := st.service.log.TraceFromContext(ctx).Function("SignUp")

	remote, err := st.service.gateway.Auth().SignUp(ctx, email, secret)
	if err != nil {
		log.Info("sign up rejected", "error", err)
		return err
	}

	profile := models.NewProfile(remote.Identity.ID, remote.Identity.Email, displayName)
	if err := st.service.gateway.Users().Insert(ctx, &profile); err != nil {
		log.Er("failed to create profile after sign up", err, "userID", remote.Identity.ID)
	}

	st.set(snapshotOf(remote))
	return nil
}

func (st *State) SignOut(ctx context.Context) error {
	log := st.service.log.TraceFromContext(ctx).Function("SignOut")

	token := st.Current().Token
	if token != "" {
		if err := st.service.gateway.Auth().SignOut(ctx, token); err != nil {
			log.Er("failed to end remote session", err)
			return err
		}
	}

	st.set(Snapshot{})
	return nil
}

// UpdateNotificationSettings stores the preference on the profile. It is a
// no-op when signed out.
func (st *State) UpdateNotificationSettings(ctx context.Context, enabled bool) error {
	current := st.Current()
	if !current.Authenticated {
		return nil
	}

	return st.service.gateway.Users().Update(ctx,
		[]gateway.Filter{gateway.Eq("id", current.UserID())},
		map[string]any{"notifications_enabled": enabled},
	)
}

// Close drops every listener; later changes are not delivered.
func (st *State) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.closed = true
	clear(st.listeners)
}

func (st *State) set(next Snapshot) {
	st.mu.Lock()
	st.current = next
	listeners := make([]Listener, 0, len(st.listeners))
	if !st.closed {
		for _, listener := range st.listeners {
			listeners = append(listeners, listener)
		}
	}
	st.mu.Unlock()

	for _, listener := range listeners {
		listener(next)
	}
}

func (st *State) ensureProfile(ctx context.Context, identity gateway.Identity) {
	log := st.service.log.TraceFromContext(ctx).Function("ensureProfile")

	users, err := st.service.gateway.Users().Select(ctx,
		gateway.Where(gateway.Eq("id", identity.ID)).WithLimit(1))
	if err != nil || len(users) > 0 || !st.service.gateway.IsConfigured() {
		return
	}

	profile := models.NewProfile(identity.ID, identity.Email, usernameFromEmail(identity.Email))
	if err := st.service.gateway.Users().Upsert(ctx, &profile, "id"); err != nil &&
		!errors.Is(err, gateway.ErrRemoteRejected) {
		log.Er("failed to repair missing profile", err, "userID", identity.ID)
		return
	}

	log.Info("Repaired missing profile", "userID", identity.ID)
}

func snapshotOf(remote gateway.Session) Snapshot {
	identity := remote.Identity
	return Snapshot{
		Authenticated: true,
		Identity:      &identity,
		Token:         remote.Token,
	}
}

func usernameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
