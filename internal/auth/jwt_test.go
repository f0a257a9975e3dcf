package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret, issuer string, method jwt.SigningMethod) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":   "user-1",
		"user_type": "operator",
		"iss":       issuer,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestParseTokenValid(t *testing.T) {
	token := signToken(t, "secret", "issuer", jwt.SigningMethodHS256)
	claims, err := ParseToken("secret", "issuer", token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.UserID != "user-1" || claims.UserType != "operator" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejections(t *testing.T) {
	cases := map[string]string{
		"wrong secret": signToken(t, "other", "issuer", jwt.SigningMethodHS256),
		"wrong issuer": signToken(t, "secret", "someone-else", jwt.SigningMethodHS256),
		"wrong method": signToken(t, "secret", "issuer", jwt.SigningMethodHS512),
	}
	for name, token := range cases {
		if _, err := ParseToken("secret", "issuer", token); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}
