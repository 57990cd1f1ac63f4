package testutil

import (
	"database/sql"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"hardwareStoreInventory/internal/db"
)

// OpenInMemoryDB opens a shared-cache in-memory SQLite database with the
// session migrations applied. The name isolates databases between tests.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT for subject. A zero exp leaves the
// expiry claim out.
func GenerateJWTHS256(t *testing.T, secret, subject string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": subject}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
