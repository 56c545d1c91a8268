package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestJWTResolver_RoundTrip(t *testing.T) {
	tok, err := NewIssuer(secret, time.Hour).Issue("user-1", "acct-1", RoleAdmin)
	require.NoError(t, err)

	s, err := NewJWTResolver(secret).Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, Session{State: StateResolved, UserID: "user-1", AccountID: "acct-1", Role: RoleAdmin}, s)
}

func TestJWTResolver_AccountDefaultsToSubject(t *testing.T) {
	tok, err := NewIssuer(secret, time.Hour).Issue("user-1", "", RoleClient)
	require.NoError(t, err)

	s, err := NewJWTResolver(secret).Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.AccountID)
}

func TestJWTResolver_Anonymous(t *testing.T) {
	r := NewJWTResolver(secret)

	s, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, s.State)

	s, err = r.Resolve(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, StateAnonymous, s.State)
}

func TestJWTResolver_Rejections(t *testing.T) {
	r := NewJWTResolver(secret)

	other, err := NewIssuer([]byte("other-secret"), time.Hour).Issue("u", "a", RoleAdmin)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), other)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong signature")

	expired := NewIssuer(secret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := expired.Issue("u", "a", RoleAdmin)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), none)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleClient, ParseRole("client"))
	assert.Equal(t, RoleClient, ParseRole("superuser"))
	assert.Equal(t, RoleClient, ParseRole(""))
}

func TestSession_Allows(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		role    Role
		want    bool
	}{
		{"resolving never", Session{State: StateResolving, Role: RoleAdmin}, RoleClient, false},
		{"anonymous never", Anonymous, RoleClient, false},
		{"client sees client", Session{State: StateResolved, Role: RoleClient}, RoleClient, true},
		{"client denied admin", Session{State: StateResolved, Role: RoleClient}, RoleAdmin, false},
		{"admin sees admin", Session{State: StateResolved, Role: RoleAdmin}, RoleAdmin, true},
		{"admin sees client", Session{State: StateResolved, Role: RoleAdmin}, RoleClient, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Allows(tt.role))
		})
	}
}

func TestGate_ResolvingAllowsNothing(t *testing.T) {
	g := NewGate()
	assert.Equal(t, StateResolving, g.Session().State)
	assert.False(t, g.Allows(RoleClient))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s, err := g.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateResolving, s.State)
}

func TestGate_Resolve(t *testing.T) {
	tok, err := NewIssuer(secret, time.Hour).Issue("user-1", "acct-1", RoleAdmin)
	require.NoError(t, err)

	g := NewGate()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s, err := g.Wait(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, StateResolved, s.State)
	}()

	require.NoError(t, g.Resolve(context.Background(), NewJWTResolver(secret), tok))
	<-done
	assert.True(t, g.Allows(RoleAdmin))

	// Later settles are ignored.
	g.Set(Anonymous)
	assert.Equal(t, StateResolved, g.Session().State)
}

func TestGate_InvalidTokenIsAnonymous(t *testing.T) {
	g := NewGate()
	err := g.Resolve(context.Background(), NewJWTResolver(secret), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, g.Err(), ErrInvalidToken)
	assert.Equal(t, StateAnonymous, g.Session().State)
	assert.False(t, g.Allows(RoleClient))
}

func TestContextSession(t *testing.T) {
	assert.Equal(t, StateResolving, FromContext(context.Background()).State)
	assert.Nil(t, GateFrom(context.Background()))

	s := Session{State: StateResolved, UserID: "u", AccountID: "a", Role: RoleClient}
	assert.Equal(t, s, FromContext(WithSession(context.Background(), s)))

	// A resolving session cannot be planted; it settles as anonymous.
	ctx := WithSession(context.Background(), Session{State: StateResolving, Role: RoleAdmin})
	assert.Equal(t, StateAnonymous, FromContext(ctx).State)
}

func TestContextGate_FollowsResolution(t *testing.T) {
	tok, err := NewIssuer(secret, time.Hour).Issue("user-1", "acct-1", RoleClient)
	require.NoError(t, err)

	g := NewGate()
	ctx := WithGate(context.Background(), g)
	assert.Same(t, g, GateFrom(ctx))
	assert.Equal(t, StateResolving, FromContext(ctx).State)
	assert.False(t, FromContext(ctx).Allows(RoleClient))

	require.NoError(t, g.Resolve(ctx, NewJWTResolver(secret), tok))
	assert.Equal(t, "acct-1", FromContext(ctx).AccountID)
	assert.True(t, FromContext(ctx).Allows(RoleClient))
}
