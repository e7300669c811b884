package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueVerifyRoundtrip(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), 24*time.Hour)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), -time.Minute)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyInvalid(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), 24*time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not.a.token")
		if !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewIssuer([]byte("different"), 24*time.Hour)
		token, err := other.Issue(42)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		_, err = issuer.Verify(token)
		if !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("tampered", func(t *testing.T) {
		token, err := issuer.Issue(42)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		tampered := token[:len(token)-2] + "xx"
		if _, err := issuer.Verify(tampered); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})
}

func TestInvalidErrorCarriesReason(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), 24*time.Hour)
	_, err := issuer.Verify("garbage")
	if err == nil {
		t.Fatal("no error for garbage token")
	}
	if !strings.HasPrefix(err.Error(), ErrTokenInvalid.Error()+": ") {
		t.Errorf("error %q lacks reason suffix", err.Error())
	}
}
