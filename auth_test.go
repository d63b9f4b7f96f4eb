package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aquilax/debateboard/argument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenRoundTrip(t *testing.T) {
	a := NewAuth("0123456789abcdef", time.Hour)
	token, err := a.Issue(&argument.User{ID: "u1", Role: argument.RoleAdmin})
	require.NoError(t, err)

	id, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, argument.UserID("u1"), id.UserID)
	assert.Equal(t, argument.RoleAdmin, id.Role)

	other := NewAuth("another-secret-value", time.Hour)
	_, err = other.Verify(token)
	assert.Error(t, err)

	_, err = a.Verify(token + "x")
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	a := NewAuth("0123456789abcdef", time.Hour)
	token, err := a.Issue(&argument.User{ID: "u1", Role: argument.RoleUser})
	require.NoError(t, err)

	var got *Identity
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identityFrom(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid bearer", "Bearer " + token, true},
		{"lowercase scheme", "bearer " + token, true},
		{"missing header", "", false},
		{"wrong scheme", "Basic " + token, false},
		{"garbage token", "Bearer nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), r)
			assert.Equal(t, tt.want, got != nil)
		})
	}
}
