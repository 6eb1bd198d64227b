package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	m := NewJWTManager("secret-one", time.Hour)
	other := NewJWTManager("secret-two", time.Hour)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidate_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidate_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
