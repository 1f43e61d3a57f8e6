package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"storekeep/internal/api"
	"storekeep/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Backend is the slice of the REST API the session store consumes.
type Backend interface {
	CheckUsername(ctx context.Context, username string) (*api.CheckUsernameResponse, error)
	VerifyPassword(ctx context.Context, username, password string) (*api.VerifyPasswordResponse, error)
}

// Store is the single source of truth for who is logged in. A session
// exists only after the backend has verified credentials; readers get
// a copy and only Login/Logout mutate it.
type Store struct {
	backend Backend
	storage Storage

	mu            sync.RWMutex
	session       *Session
	authenticated bool
	loading       bool
}

func NewStore(backend Backend, storage Storage) *Store {
	return &Store{
		backend: backend,
		storage: storage,
		loading: true,
	}
}

// Restore reads the persisted credential record and rebuilds the
// session. Any read, parse, or token-expiry problem degrades to
// "not authenticated" rather than failing startup. The loading flag
// is cleared on every path.
func (s *Store) Restore() {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	data, err := s.storage.Load()
	if err != nil {
		logger.L().Error("failed to read persisted session", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		logger.L().Error("persisted session is corrupt, discarding", zap.Error(err))
		if clearErr := s.storage.Clear(); clearErr != nil {
			logger.L().Error("failed to clear corrupt session", zap.Error(clearErr))
		}
		return
	}

	if sess.Token != "" && tokenExpired(sess.Token) {
		logger.L().Info("persisted session token expired, discarding",
			zap.String("username", sess.Username),
		)
		if clearErr := s.storage.Clear(); clearErr != nil {
			logger.L().Error("failed to clear expired session", zap.Error(clearErr))
		}
		return
	}

	s.mu.Lock()
	s.session = &sess
	s.authenticated = true
	s.mu.Unlock()

	logger.L().Info("session restored", zap.String("username", sess.Username))
}

// tokenExpired parses the backend-issued token without verifying its
// signature (the client holds no signing secret) and reports whether
// its expiry has passed. Opaque or claim-free tokens never expire here.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// CheckUsername asks the backend whether the username exists. Failures
// of any kind become a failure result, never an error to the caller.
func (s *Store) CheckUsername(ctx context.Context, username string) CheckResult {
	username = strings.TrimSpace(username)
	if username == "" {
		return CheckResult{Error: "Please enter your username"}
	}

	res, err := s.backend.CheckUsername(ctx, username)
	if err != nil {
		logger.FromCtx(ctx).Error("username check failed", zap.Error(err))
		return CheckResult{Error: "Unable to reach the server. Please try again."}
	}

	if !res.Success || res.Store == nil {
		msg := res.Error
		if msg == "" {
			msg = "User not found"
		}
		return CheckResult{Error: msg}
	}

	return CheckResult{
		Success:   true,
		StoreName: res.Store.Name,
		OwnerName: res.Store.Owner,
	}
}

// Login verifies the password with the backend. On a match it builds
// the session, persists it (overwriting any prior record), and marks
// the store authenticated. On any failure the existing session is
// left untouched.
func (s *Store) Login(ctx context.Context, username, password string) LoginResult {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	log := logger.FromCtx(ctx).With(zap.String("username", username))
	if username == "" || password == "" {
		return LoginResult{Error: "Username and password are required"}
	}

	res, err := s.backend.VerifyPassword(ctx, username, password)
	if err != nil {
		log.Error("password verification failed", zap.Error(err))
		return LoginResult{Error: "Unable to reach the server. Please try again."}
	}

	if !res.PasswordMatches || res.Store == nil {
		msg := res.Error
		if msg == "" {
			msg = "Invalid credentials"
		}
		return LoginResult{Error: msg}
	}

	sess := fromStore(res.Store)

	data, err := json.Marshal(sess)
	if err != nil {
		log.Error("failed to serialize session", zap.Error(err))
		return LoginResult{Error: "Login failed. Please try again."}
	}
	if err := s.storage.Save(data); err != nil {
		// A session must exist only when storage holds the verified
		// record, so a persist failure fails the login.
		log.Error("failed to persist session", zap.Error(err))
		return LoginResult{Error: "Login failed. Please try again."}
	}

	s.mu.Lock()
	s.session = &sess
	s.authenticated = true
	s.mu.Unlock()

	log.Info("login succeeded", zap.String("store_id", sess.ID))
	return LoginResult{Success: true, Session: sess}
}

// Logout clears persisted storage and the in-memory session. Storage
// errors are logged, never surfaced.
func (s *Store) Logout() {
	if err := s.storage.Clear(); err != nil {
		logger.L().Error("failed to clear persisted session", zap.Error(err))
	}

	s.mu.Lock()
	s.session = nil
	s.authenticated = false
	s.mu.Unlock()

	logger.L().Info("logged out")
}

// Authenticated reports whether a verified session is held.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Loading reports whether the initial restore has not yet finished.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Session returns a copy of the current session.
func (s *Store) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Refresh replaces the in-memory and persisted session with a freshly
// fetched store record, keeping the existing token. Used after profile
// edits so the identity shown always matches server truth.
func (s *Store) Refresh(store *api.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return
	}

	sess := fromStore(store)
	if sess.Token == "" && s.session != nil {
		sess.Token = s.session.Token
	}
	s.session = &sess

	data, err := json.Marshal(sess)
	if err != nil {
		logger.L().Error("failed to serialize refreshed session", zap.Error(err))
		return
	}
	if err := s.storage.Save(data); err != nil {
		logger.L().Error("failed to persist refreshed session", zap.Error(err))
	}
}
