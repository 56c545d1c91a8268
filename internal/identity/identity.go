// Package identity resolves who is calling and with which role. The role
// comes from a single server-verified source, and nothing role-gated is
// decided until resolution has finished.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the authorization class of a user.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a claim value to a Role. Anything unknown is a client.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleClient
}

// State is the progress of identity resolution.
type State int

const (
	StateResolving State = iota
	StateResolved
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateAnonymous:
		return "anonymous"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is the outcome of resolution. UserID, AccountID and Role are only
// meaningful when State is StateResolved.
type Session struct {
	State     State
	UserID    string
	AccountID string
	Role      Role
}

// Anonymous is the session of a caller without credentials.
var Anonymous = Session{State: StateAnonymous}

// Allows reports whether the session may see content gated on role.
// Admins may see client content; nobody is allowed while resolving.
func (s Session) Allows(role Role) bool {
	if s.State != StateResolved {
		return false
	}
	return role == RoleClient || s.Role == RoleAdmin
}

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Resolver turns a bearer token into a Session.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Session, error)
}

// Claims is the JWT payload.
type Claims struct {
	Role      string `json:"role"`
	AccountID string `json:"account_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens signed with a shared secret.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver returns a resolver for tokens signed with secret.
func NewJWTResolver(secret []byte) *JWTResolver {
	return &JWTResolver{secret: secret}
}

// Resolve verifies token. An empty token is anonymous without error; an
// invalid one is anonymous with an error wrapping ErrInvalidToken. The
// account defaults to the subject when the token names none.
func (r *JWTResolver) Resolve(ctx context.Context, token string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Anonymous, err
	}
	if token == "" {
		return Anonymous, nil
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return r.secret, nil
	})
	if err != nil || !tok.Valid {
		return Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return Anonymous, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	account := claims.AccountID
	if account == "" {
		account = claims.Subject
	}
	return Session{
		State:     StateResolved,
		UserID:    claims.Subject,
		AccountID: account,
		Role:      ParseRole(claims.Role),
	}, nil
}

// Issuer signs tokens that JWTResolver accepts.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer whose tokens expire after ttl.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for userID acting on accountID with role.
func (i *Issuer) Issue(userID, accountID string, role Role) (string, error) {
	now := i.now()
	claims := &Claims{
		Role:      string(role),
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

type ctxKey struct{}

// WithGate returns a context carrying g. Sessions read from the context
// follow g as it settles.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, ctxKey{}, g)
}

// GateFrom returns the gate stored by WithGate, or nil.
func GateFrom(ctx context.Context) *Gate {
	g, _ := ctx.Value(ctxKey{}).(*Gate)
	return g
}

// WithSession returns a context carrying a gate already settled with s.
func WithSession(ctx context.Context, s Session) context.Context {
	g := NewGate()
	g.Set(s)
	return WithGate(ctx, g)
}

// FromContext returns the current session of the context's gate without
// blocking, or a resolving session when there is no gate.
func FromContext(ctx context.Context) Session {
	if g := GateFrom(ctx); g != nil {
		return g.Session()
	}
	return Session{State: StateResolving}
}
