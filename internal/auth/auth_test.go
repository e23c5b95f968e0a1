package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("s3cret")

	// The proof covers the compact JSON launch payload.
	m := hmac.New(sha256.New, []byte("s3cret"))
	m.Write([]byte(`{"telegram_id":42,"username":"<ann>"}`))
	want := hex.EncodeToString(m.Sum(nil))

	assert.Equal(t, want, v.Sign(42, "<ann>"))
	assert.True(t, v.Verify(42, "<ann>", want))

	assert.False(t, v.Verify(43, "<ann>", want), "other id")
	assert.False(t, v.Verify(42, "bob", want), "other username")
	assert.False(t, v.Verify(42, "<ann>", "not-hex"))
	assert.False(t, NewHMACVerifier("other").Verify(42, "<ann>", want))
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier("s3cret")

	token, err := v.Issue(7, time.Minute)
	require.NoError(t, err)
	assert.True(t, v.Verify(7, "", token))
	assert.False(t, v.Verify(8, "", token))
	assert.False(t, NewJWTVerifier("other").Verify(7, "", token))
	assert.False(t, v.Verify(7, "", "garbage"))

	forever, err := v.Issue(7, 0)
	require.NoError(t, err)
	assert.True(t, v.Verify(7, "", forever))

	old := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "7",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	stale, err := old.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	assert.False(t, v.Verify(7, "", stale))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "7"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.False(t, v.Verify(7, "", unsigned))
}

func TestNew(t *testing.T) {
	tests := []struct {
		mode    string
		want    Verifier
		wantErr bool
	}{
		{mode: "", want: AllowAll{}},
		{mode: ModeNone, want: AllowAll{}},
		{mode: ModeHMAC, want: NewHMACVerifier("k")},
		{mode: ModeJWT, want: NewJWTVerifier("k")},
		{mode: "ldap", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := New(tt.mode, "k")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}
