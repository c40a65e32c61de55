package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTokenCodec_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenCodec("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec("test-secret", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}

	token, err := codec.Issue(42, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	id, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if id.UserID != 42 {
		t.Errorf("UserID = %d, want 42", id.UserID)
	}
	if id.Username != "alice" {
		t.Errorf("Username = %s, want alice", id.Username)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec("test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}

	token, err := codec.Issue(1, "bob")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenCodec("secret-a", time.Hour)
	verifier, _ := NewTokenCodec("secret-b", time.Hour)

	token, err := issuer.Issue(1, "carol")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec, _ := NewTokenCodec("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"missing segments", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := codec.Verify(tt.token); !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("expected ErrTokenMalformed, got %v", err)
			}
		})
	}
}

func TestIdentityContext_RoundTrip(t *testing.T) {
	t.Parallel()

	id := &Identity{UserID: 7, Username: "dave"}
	ctx := ContextWithIdentity(context.Background(), id)

	got := IdentityFromContext(ctx)
	if got == nil {
		t.Fatal("expected identity in context")
	}
	if got.UserID != 7 || got.Username != "dave" {
		t.Errorf("got %+v, want %+v", got, id)
	}
}

func TestIdentityContext_Missing(t *testing.T) {
	t.Parallel()

	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("expected nil identity, got %+v", got)
	}
}
