package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrRateLimited        = errors.New("too many login attempts, slow down")
)

// Service resolves a credential pair to an owner id and hands out bearer
// tokens for the HTTP layer. The journal core never sees credentials,
// only the resolved id.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cfg    config.Auth

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	sessions map[string]session
}

type session struct {
	ownerID uint
	expires time.Time
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, logger *zap.Logger, cfg config.Auth) *Service {
	return &Service{
		db:       db,
		logger:   logger,
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
		sessions: make(map[string]session),
	}
}

// Register creates a new journal owner with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{Username: username, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Uint("owner_id", user.ID), zap.String("username", username))
	return &user, nil
}

// Login verifies the credential pair and returns a bearer token together
// with the resolved owner id. Attempts are rate limited per username.
func (s *Service) Login(ctx context.Context, username, password string) (string, uint, error) {
	if !s.limiter(username).Allow() {
		s.logger.Warn("Login rate limit hit", zap.String("username", username))
		return "", 0, ErrRateLimited
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, ErrInvalidCredentials
	}
	if err != nil {
		return "", 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", 0, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", 0, err
	}

	s.mu.Lock()
	s.sessions[token] = session{
		ownerID: user.ID,
		expires: time.Now().Add(time.Duration(s.cfg.SessionLifetime) * time.Minute),
	}
	s.mu.Unlock()

	s.logger.Info("User logged in", zap.Uint("owner_id", user.ID), zap.String("username", username))
	return token, user.ID, nil
}

// Resolve maps a bearer token back to an owner id. Expired sessions are
// dropped on lookup.
func (s *Service) Resolve(token string) (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	if time.Now().After(sess.expires) {
		delete(s.sessions, token)
		return 0, false
	}
	return sess.ownerID, true
}

// Logout invalidates a token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) limiter(username string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[username]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.LoginRateLimit), s.cfg.LoginRateBurst)
		s.limiters[username] = l
	}
	return l
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
