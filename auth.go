package main

import (
	"context"
	"crypto/sha256"
	"net/http"
	"strings"
	"time"

	"github.com/aquilax/debateboard/argument"
	"github.com/gorilla/securecookie"
)

const tokenName = "debateboard-token"

type Identity struct {
	UserID argument.UserID `json:"uid"`
	Role   argument.Role   `json:"role"`
}

type identityKey struct{}

// Auth issues and verifies bearer tokens: encrypted, signed and
// expiring securecookie values carrying an Identity.
type Auth struct {
	sc *securecookie.SecureCookie
}

func NewAuth(secret string, maxAge time.Duration) *Auth {
	hashKey := sha256.Sum256([]byte("hash:" + secret))
	blockKey := sha256.Sum256([]byte("block:" + secret))
	sc := securecookie.New(hashKey[:], blockKey[:])
	sc.MaxAge(int(maxAge / time.Second))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Auth{sc: sc}
}

func (a *Auth) Issue(u *argument.User) (string, error) {
	return a.sc.Encode(tokenName, Identity{UserID: u.ID, Role: u.Role})
}

func (a *Auth) Verify(token string) (*Identity, error) {
	var id Identity
	if err := a.sc.Decode(tokenName, token, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Middleware attaches the caller's identity to the request context when a
// valid bearer token is present. Requests without one pass through
// anonymously; handlers that need a user ask for it with requireUser.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if id, err := a.Verify(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey{}, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func identityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
