package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"cryptoboost/internal/domain/user"
	"cryptoboost/pkg/id"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type Options struct {
	Secret     []byte
	SessionTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Usecase struct {
	users user.Repository
	rdb   *redis.Client
	opts  Options
	now   func() time.Time

	mu        sync.RWMutex
	observers map[int]func(Event, Session)
	nextObs   int
}

func NewUsecase(users user.Repository, rdb *redis.Client, opts Options) *Usecase {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Usecase{
		users:     users,
		rdb:       rdb,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		observers: map[int]func(Event, Session){},
	}
}

func sessionKey(jti string) string { return "session:" + jti }

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// SignUp registers a client account and opens a session for it.
func (u *Usecase) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	usr, err := u.register(ctx, email, password, user.RoleClient)
	if err != nil {
		return nil, err
	}
	s, err := u.openSession(ctx, usr)
	if err != nil {
		return nil, err
	}
	u.emit(EventSignedUp, *s)
	return s, nil
}

func (u *Usecase) register(ctx context.Context, email, password string, role user.Role) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	usr := &user.User{Email: email, PasswordHash: hash, Role: role, IsActive: true}
	if err := u.users.Create(ctx, usr); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": usr.ID, "role": role}).Info("identity: user registered")
	return usr, nil
}

// SignIn checks the password and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (u *Usecase) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return nil, ErrSuspended
	}
	s, err := u.openSession(ctx, usr)
	if err != nil {
		return nil, err
	}
	u.emit(EventSignedIn, *s)
	return s, nil
}

// SignOut revokes the session behind token. Unknown or expired tokens are not an error.
func (u *Usecase) SignOut(ctx context.Context, token string) error {
	s, err := u.GetSession(ctx, token)
	if err != nil {
		return nil
	}
	if err := u.rdb.Del(ctx, sessionKey(s.TokenID)).Err(); err != nil {
		return err
	}
	u.emit(EventSignedOut, *s)
	return nil
}

// GetSession resolves a bearer token: the signature must verify and the
// session must still exist in redis.
func (u *Usecase) GetSession(ctx context.Context, token string) (*Session, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		return u.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil || !parsed.Valid || c.ID == "" || c.Subject == "" {
		return nil, ErrInvalidSession
	}

	userID, err := u.rdb.Get(ctx, sessionKey(c.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	if userID != c.Subject {
		return nil, ErrInvalidSession
	}

	s := &Session{
		AccessToken: token,
		TokenID:     c.ID,
		User:        Identity{ID: c.Subject, Email: c.Email, Role: user.Role(c.Role)},
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

func (u *Usecase) openSession(ctx context.Context, usr *user.User) (*Session, error) {
	now := u.now()
	exp := now.Add(u.opts.SessionTTL)
	jti := id.New()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: usr.Email,
		Role:  string(usr.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   usr.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(u.opts.Secret)
	if err != nil {
		return nil, err
	}
	if err := u.rdb.Set(ctx, sessionKey(jti), usr.ID, u.opts.SessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	return &Session{
		AccessToken: signed,
		TokenID:     jti,
		ExpiresAt:   exp,
		User:        Identity{ID: usr.ID, Email: usr.Email, Role: usr.Role},
	}, nil
}

// OnAuthChange registers fn for sign-in/up/out events and returns a func that
// removes it. Observers run synchronously on the caller's goroutine.
func (u *Usecase) OnAuthChange(fn func(Event, Session)) (unsubscribe func()) {
	u.mu.Lock()
	key := u.nextObs
	u.nextObs++
	u.observers[key] = fn
	u.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			u.mu.Lock()
			delete(u.observers, key)
			u.mu.Unlock()
		})
	}
}

func (u *Usecase) emit(ev Event, s Session) {
	u.mu.RLock()
	fns := make([]func(Event, Session), 0, len(u.observers))
	for _, fn := range u.observers {
		fns = append(fns, fn)
	}
	u.mu.RUnlock()
	for _, fn := range fns {
		fn(ev, s)
	}
}

// SetActive suspends or reactivates an account. Suspended accounts cannot sign in.
func (u *Usecase) SetActive(ctx context.Context, userID string, active bool) error {
	if err := u.users.SetActive(ctx, userID, active); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "active": active}).Info("identity: account status changed")
	return nil
}

// EnsureAdmin seeds an admin account when none exists for email.
// An existing account is left as is.
func (u *Usecase) EnsureAdmin(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	existing, err := u.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			log.WithField("email", email).Warn("identity: seed admin email belongs to a client account")
		}
		return nil
	case !errors.Is(err, user.ErrNotFound):
		return err
	}
	_, err = u.register(ctx, email, password, user.RoleAdmin)
	if errors.Is(err, user.ErrExists) {
		return nil
	}
	return err
}
