package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// memRepo is an in-memory refreshtokens.Repository with the same per-user
// atomicity as the real backends.
type memRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.RefreshToken
	byUser map[string]string
	seq    int64
	err    error
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*models.RefreshToken{}, byUser: map[string]string{}}
}

func (r *memRepo) store(userID, identifier string, expiresAt time.Time) *models.RefreshToken {
	if old, ok := r.byUser[userID]; ok {
		delete(r.byID, old)
	}
	r.seq++
	t := &models.RefreshToken{ID: r.seq, TokenIdentifier: identifier, UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	r.byID[identifier] = t
	r.byUser[userID] = identifier
	return t
}

func (r *memRepo) Replace(_ context.Context, userID, identifier string, expiresAt time.Time) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t := *r.store(userID, identifier, expiresAt)
	return &t, nil
}

func (r *memRepo) Rotate(_ context.Context, userID, oldIdentifier, newIdentifier string, expiresAt time.Time) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.byUser[userID] != oldIdentifier {
		return nil, common.ErrorNotFound
	}
	t := *r.store(userID, newIdentifier, expiresAt)
	return &t, nil
}

func (r *memRepo) FindByIdentifier(_ context.Context, identifier string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.byID[identifier]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memRepo) remove(identifier string) bool {
	t, ok := r.byID[identifier]
	if !ok {
		return false
	}
	delete(r.byID, identifier)
	if r.byUser[t.UserID] == identifier {
		delete(r.byUser, t.UserID)
	}
	return true
}

func (r *memRepo) DeleteExpired(_ context.Context, identifier string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	t, ok := r.byID[identifier]
	if !ok || !t.ExpiresAt.Before(now) {
		return false, nil
	}
	return r.remove(identifier), nil
}

func (r *memRepo) DeleteByIdentifier(_ context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.remove(identifier)
	return nil
}

func (r *memRepo) DeleteByUser(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	id, ok := r.byUser[userID]
	if !ok {
		return false, nil
	}
	return r.remove(id), nil
}

func (r *memRepo) DeleteAllExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for id, t := range r.byID {
		if t.ExpiresAt.Before(now) {
			r.remove(id)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) rowsFor(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.byID {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (r *memRepo) expireAll(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		t.ExpiresAt = at
	}
}

// fakeGateway is an in-memory identity.Gateway. Passwords are kept in clear.
type fakeGateway struct {
	mu         sync.Mutex
	users      map[string]*models.Identity
	passwords  map[string]string
	nextID     int
	createErr  error
	lookupErr  error
	hideOnRead bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{users: map[string]*models.Identity{}, passwords: map[string]string{}}
}

func (g *fakeGateway) add(username, email, password string, active bool) *models.Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	ident := &models.Identity{
		ID:       "user-" + strconv.Itoa(g.nextID),
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
		Active:   active,
	}
	g.users[username] = ident
	g.passwords[username] = password
	return ident
}

func (g *fakeGateway) setActive(username string, active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[username].Active = active
}

func (g *fakeGateway) FindByUsername(_ context.Context, username string) (*models.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lookupErr != nil {
		return nil, g.lookupErr
	}
	u, ok := g.users[username]
	if !ok || g.hideOnRead {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (g *fakeGateway) FindByID(_ context.Context, id string) (*models.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, u := range g.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (g *fakeGateway) Create(_ context.Context, req models.NewIdentity) (*models.Identity, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	ident := g.add(req.Username, req.Email, req.Password, true)
	cp := *ident
	return &cp, nil
}

func (g *fakeGateway) VerifyPassword(_ context.Context, username, password string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lookupErr != nil {
		return false, g.lookupErr
	}
	u, ok := g.users[username]
	if !ok || !u.Active {
		return false, nil
	}
	return g.passwords[username] == password, nil
}

type recordedCall struct {
	op, outcome string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) ObserveLifecycle(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{op, outcome})
}
