// Package session owns the signed-in user for this device: it calls the
// backend for login and registration, mirrors the identity into durable
// storage, and restores it on start.
//
// Login and Register never return errors. Transport failures, non-2xx
// statuses and malformed bodies are logged and reported as false.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/hortifood/internal/events"
	"github.com/Skotchmaster/hortifood/internal/logging"
	"github.com/Skotchmaster/hortifood/internal/metrics"
	"github.com/Skotchmaster/hortifood/internal/models"
	"github.com/Skotchmaster/hortifood/internal/persist"
)

// StorageKey is the single durable key holding the serialized identity.
const StorageKey = "hortifood_user"

// ErrInvalidIdentity is reported when the backend answers without a usable
// identity.
var ErrInvalidIdentity = errors.New("invalid identity")

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.UserIdentity, error)
	Register(ctx context.Context, name, email, password string) (*models.UserIdentity, error)
}

type State struct {
	CurrentUser *models.UserIdentity `json:"current_user"`
	IsPending   bool                 `json:"is_pending"`
}

type Store struct {
	auth      Authenticator
	storage   persist.Store
	publisher events.Publisher
	metrics   *metrics.Metrics

	mu      sync.Mutex
	current *models.UserIdentity
	pending int
	gen     uint64

	storageMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

type Option func(*Store)

func WithPublisher(p events.Publisher) Option {
	return func(s *Store) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func New(auth Authenticator, storage persist.Store, opts ...Option) *Store {
	s := &Store{
		auth:      auth,
		storage:   storage,
		publisher: events.Nop{},
		subs:      make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RestoreSession loads a previously saved identity. Missing, unreadable or
// invalid data leaves the session signed out.
func (s *Store) RestoreSession(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "session.restore")

	data, err := s.storage.Load(ctx, StorageKey)
	if err != nil {
		l.Warn("restore_session_error", "reason", "cannot read storage", "error", err)
		return
	}
	if data == nil {
		l.Debug("restore_session_empty")
		return
	}

	var user models.UserIdentity
	if err := json.Unmarshal(data, &user); err != nil {
		l.Warn("restore_session_error", "reason", "invalid json", "error", err)
		return
	}
	if !user.Valid() {
		l.Warn("restore_session_error", "reason", "identity missing fields")
		return
	}

	s.mu.Lock()
	s.current = &user
	st := s.state()
	s.mu.Unlock()

	l.Info("session_restored", "user_id", user.ID.String())
	s.notify(st)
}

func (s *Store) Login(ctx context.Context, email, password string) bool {
	l := logging.FromContext(ctx).With("svc", "session.login", "email", email)

	s.begin()
	user, err := s.auth.Login(ctx, email, password)
	if err == nil && !user.Valid() {
		err = ErrInvalidIdentity
	}
	if err != nil {
		s.finish(nil)
		s.metrics.AuthAttempt("login", false)
		l.Warn("login_failed", "error", err)
		return false
	}

	gen := s.finish(user)
	s.persist(ctx, l, user, gen)
	s.metrics.AuthAttempt("login", true)
	s.publish(ctx, l, "user_logged_in", user)
	l.Info("login_successful", "user_id", user.ID.String())
	return true
}

// Register creates the account and signs the new user in.
func (s *Store) Register(ctx context.Context, name, email, password string) bool {
	l := logging.FromContext(ctx).With("svc", "session.register", "email", email)

	s.begin()
	user, err := s.auth.Register(ctx, name, email, password)
	if err == nil && !user.Valid() {
		err = ErrInvalidIdentity
	}
	if err != nil {
		s.finish(nil)
		s.metrics.AuthAttempt("register", false)
		l.Warn("register_failed", "error", err)
		return false
	}

	gen := s.finish(user)
	s.persist(ctx, l, user, gen)
	s.metrics.AuthAttempt("register", true)
	s.publish(ctx, l, "user_registered", user)
	l.Info("register_successful", "user_id", user.ID.String())
	return true
}

func (s *Store) Logout(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "session.logout")

	s.storageMu.Lock()
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.gen++
	st := s.state()
	s.mu.Unlock()

	if err := s.storage.Clear(ctx, StorageKey); err != nil {
		l.Error("logout_error", "reason", "cannot clear storage", "error", err)
	}
	s.storageMu.Unlock()
	s.notify(st)

	if prev != nil {
		s.publish(ctx, l, "user_logged_out", prev)
		l.Info("successful_logout", "user_id", prev.ID.String())
	}
}

// CurrentUser returns a copy of the signed-in identity, or nil.
func (s *Store) CurrentUser() *models.UserIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.current)
}

func (s *Store) IsPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Subscribe registers fn to receive the state after every change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) begin() {
	s.mu.Lock()
	s.pending++
	st := s.state()
	s.mu.Unlock()

	s.metrics.AuthStarted()
	s.notify(st)
}

// finish ends one in-flight call; a non-nil user becomes current. It
// returns the session generation the call left behind.
func (s *Store) finish(user *models.UserIdentity) uint64 {
	s.mu.Lock()
	s.pending--
	if user != nil {
		s.current = copyUser(user)
		s.gen++
	}
	gen := s.gen
	st := s.state()
	s.mu.Unlock()

	s.metrics.AuthFinished()
	s.notify(st)
	return gen
}

// persist writes user unless a later login or a logout has replaced the
// session generation gen.
func (s *Store) persist(ctx context.Context, l *slog.Logger, user *models.UserIdentity, gen uint64) {
	s.storageMu.Lock()
	defer s.storageMu.Unlock()

	s.mu.Lock()
	current := s.gen
	s.mu.Unlock()
	if current != gen {
		l.Debug("persist_session_skipped", "reason", "session changed")
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		l.Error("persist_session_error", "error", err)
		return
	}
	if err := s.storage.Save(ctx, StorageKey, data); err != nil {
		l.Error("persist_session_error", "reason", "cannot write storage", "error", err)
	}
}

func (s *Store) publish(ctx context.Context, l *slog.Logger, typ string, user *models.UserIdentity) {
	event := map[string]any{
		"type":    typ,
		"user_id": user.ID.String(),
		"email":   user.Email,
		"at":      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicUser, user.ID.String(), event); err != nil {
		l.Error("kafka_publish_error", "type", typ, "error", err)
	}
}

func (s *Store) state() State {
	return State{CurrentUser: copyUser(s.current), IsPending: s.pending > 0}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func copyUser(u *models.UserIdentity) *models.UserIdentity {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
