package auth

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/shoplens/pkg/domain"
)

// DefaultOTPTTL is how long an issued passcode stays valid.
const DefaultOTPTTL = 5 * time.Minute

const otpDigits = 6

type otpEntry struct {
	code     string
	tenantID uuid.UUID
	expires  time.Time
}

// OTPStore issues and verifies single-use emailed passcodes. Codes live in
// process memory only; a restart invalidates outstanding codes, which is
// acceptable for a 5-minute window.
type OTPStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewOTPStore creates a new OTP store.
func NewOTPStore(ttl time.Duration) *OTPStore {
	if ttl == 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPStore{
		entries: make(map[string]otpEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a new passcode for the email, replacing any outstanding one.
func (s *OTPStore) Issue(email string, tenantID uuid.UUID) (string, error) {
	code, err := generateNumericCode(otpDigits)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = otpEntry{
		code:     code,
		tenantID: tenantID,
		expires:  s.now().Add(s.ttl),
	}
	return code, nil
}

// Verify checks the passcode for the email. A matching, unexpired code is
// consumed and its tenant ID returned; any failure leaves nothing usable.
func (s *OTPStore) Verify(email, code string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok {
		return uuid.Nil, domain.ErrOTPNotFound
	}

	if entry.code != code || s.now().After(entry.expires) {
		return uuid.Nil, domain.ErrOTPInvalid
	}

	// Single use
	delete(s.entries, email)
	return entry.tenantID, nil
}

func generateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	code := n.String()
	for len(code) < digits {
		code = "0" + code
	}
	return code, nil
}
