package auth

import (
	"errors"
	"parkbook/internal/access"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueParseRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, expiresAt, err := tm.Issue("665f1c2b9a1e4a0012345678", access.RoleWorker)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt should be in the future: %v", expiresAt)
	}

	id, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if id.UserID != "665f1c2b9a1e4a0012345678" {
		t.Errorf("UserID = %q", id.UserID)
	}
	if !access.IsAdminOrWorker(id) || access.IsAdmin(id) {
		t.Errorf("roles = %v, want worker only", id.Roles)
	}
}

func TestParseRejects(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	good, _, err := tm.Issue("u1", access.RoleVisitor)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expired := NewTokenManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue("u1", access.RoleVisitor)

	other := NewTokenManager("another-secret-another-secret-xx", time.Hour)
	forged, _, _ := other.Issue("u1", access.RoleAdmin)

	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "parkbook",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "parkbook",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"expired", old, ErrInvalidToken},
		{"wrong secret", forged, ErrInvalidToken},
		{"unknown role", badRole, ErrInvalidToken},
		{"alg none", noneAlg, ErrInvalidToken},
		{"tampered payload", tamper(good, forged), ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Parse(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// tamper grafts the payload of donor onto token, keeping token's signature.
func tamper(token, donor string) string {
	parts := strings.Split(token, ".")
	parts[1] = strings.Split(donor, ".")[1]
	return strings.Join(parts, ".")
}
