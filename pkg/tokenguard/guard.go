package tokenguard

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/dmitrymomot/leaderboard/core/logger"
)

const (
	// MinSessionAge is the minimum time between issuing and redeeming a token.
	MinSessionAge = 5 * time.Second

	// MinKeySize is the minimum signing key length in bytes.
	MinKeySize = 32

	sessionIDSize = 16
	keyInfo       = "leaderboard session token v1"
)

// Guard issues one-time session tokens and validates each at most once.
type Guard struct {
	key      []byte
	sessions SessionSet
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Guard.
type Option func(*guardOptions)

type guardOptions struct {
	key    []byte
	secret string
	now    func() time.Time
	logger *slog.Logger
}

// WithKey sets the raw HMAC key. It must be at least MinKeySize bytes.
func WithKey(key []byte) Option {
	return func(o *guardOptions) {
		o.key = key
	}
}

// WithSecret derives the HMAC key from secret with HKDF-SHA256, so
// processes sharing a session set accept each other's tokens.
func WithSecret(secret string) Option {
	return func(o *guardOptions) {
		o.secret = secret
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *guardOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *guardOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a Guard that tracks outstanding sessions in sessions.
// Without WithKey or WithSecret a random key is generated, so tokens do not
// survive a restart.
func New(sessions SessionSet, opts ...Option) (*Guard, error) {
	if sessions == nil {
		return nil, errors.New("tokenguard: session set is required")
	}

	o := guardOptions{
		now:    time.Now,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	key, err := resolveKey(o.key, o.secret)
	if err != nil {
		return nil, err
	}

	return &Guard{
		key:      key,
		sessions: sessions,
		now:      o.now,
		logger:   o.logger,
	}, nil
}

func resolveKey(key []byte, secret string) ([]byte, error) {
	switch {
	case len(key) > 0:
		if len(key) < MinKeySize {
			return nil, ErrInvalidKey
		}
		return append([]byte(nil), key...), nil
	case secret != "":
		derived := make([]byte, MinKeySize)
		if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), derived); err != nil {
			return nil, fmt.Errorf("tokenguard: derive key: %w", err)
		}
		return derived, nil
	default:
		random := make([]byte, MinKeySize)
		if _, err := rand.Read(random); err != nil {
			return nil, fmt.Errorf("tokenguard: generate key: %w", err)
		}
		return random, nil
	}
}

// Issue creates a token and records its session id as outstanding.
func (g *Guard) Issue(ctx context.Context) (string, error) {
	raw := make([]byte, sessionIDSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("tokenguard: generate session id: %w", err)
	}
	sessionID := hex.EncodeToString(raw)
	issuedAt := g.now()

	payload := sessionID + ":" + strconv.FormatInt(issuedAt.UnixMilli(), 10)
	token := payload + ":" + g.sign(payload)

	if err := g.sessions.Add(ctx, sessionID, issuedAt); err != nil {
		return "", errors.Join(ErrSessionStore, err)
	}
	return token, nil
}

// Validate checks token and consumes its session on success.
// Of several concurrent validations of the same token at most one succeeds.
// Rejections are ErrMalformed, ErrBadSignature, ErrUnknownOrReplayed or
// ErrTooFast; a too-young token stays outstanding.
func (g *Guard) Validate(ctx context.Context, token string) error {
	err := g.validate(ctx, token)
	if err != nil && IsRejection(err) {
		g.logger.DebugContext(ctx, "session token rejected", logger.Error(err))
	}
	return err
}

func (g *Guard) validate(ctx context.Context, token string) error {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return ErrMalformed
	}
	sessionID, issuedAtRaw, signature := parts[0], parts[1], parts[2]

	expected := g.sign(sessionID + ":" + issuedAtRaw)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}

	issuedAtMillis, err := strconv.ParseInt(issuedAtRaw, 10, 64)
	if err != nil {
		return ErrMalformed
	}

	ok, err := g.sessions.Contains(ctx, sessionID)
	if err != nil {
		return errors.Join(ErrSessionStore, err)
	}
	if !ok {
		return ErrUnknownOrReplayed
	}

	if g.now().Sub(time.UnixMilli(issuedAtMillis)) < MinSessionAge {
		return ErrTooFast
	}

	removed, err := g.sessions.Remove(ctx, sessionID)
	if err != nil {
		return errors.Join(ErrSessionStore, err)
	}
	if !removed {
		return ErrUnknownOrReplayed
	}
	return nil
}

func (g *Guard) sign(payload string) string {
	mac := hmac.New(sha256.New, g.key)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
