package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

func TestOTPIssueAndVerify(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)
	tenantID := uuid.New()

	code, err := store.Issue("owner@example.com", tenantID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Errorf("code %q contains non-digit %q", code, c)
		}
	}

	got, err := store.Verify("owner@example.com", code)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != tenantID {
		t.Errorf("tenant = %v, want %v", got, tenantID)
	}
}

func TestOTPSingleUse(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)
	code, _ := store.Issue("owner@example.com", uuid.New())

	if _, err := store.Verify("owner@example.com", code); err != nil {
		t.Fatalf("first Verify() error = %v", err)
	}
	if _, err := store.Verify("owner@example.com", code); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Errorf("second Verify() error = %v, want ErrOTPNotFound", err)
	}
}

func TestOTPWrongCode(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)
	code, _ := store.Issue("owner@example.com", uuid.New())

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := store.Verify("owner@example.com", wrong); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Errorf("Verify() error = %v, want ErrOTPInvalid", err)
	}
}

func TestOTPExpiry(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }

	code, _ := store.Issue("owner@example.com", uuid.New())

	current = current.Add(6 * time.Minute)
	if _, err := store.Verify("owner@example.com", code); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Errorf("Verify() after expiry error = %v, want ErrOTPInvalid", err)
	}
}

func TestOTPReissueReplaces(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)
	first, _ := store.Issue("owner@example.com", uuid.New())
	second, _ := store.Issue("owner@example.com", uuid.New())

	if first != second {
		if _, err := store.Verify("owner@example.com", first); err == nil {
			t.Error("old passcode still valid after reissue")
		}
	}
	if _, err := store.Verify("owner@example.com", second); err != nil {
		t.Errorf("new passcode rejected: %v", err)
	}
}

func TestOTPUnknownEmail(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)
	if _, err := store.Verify("nobody@example.com", "123456"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Errorf("Verify() error = %v, want ErrOTPNotFound", err)
	}
}
