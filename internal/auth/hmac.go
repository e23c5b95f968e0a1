package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// launchPayload is the signed part of the launch link handed to clients.
// Field order and names are part of the signature.
type launchPayload struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
}

// HMACVerifier accepts a hex HMAC-SHA256 of the launch payload.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign returns the proof a client must present for the identity.
func (v *HMACVerifier) Sign(id int64, username string) string {
	return hex.EncodeToString(v.mac(id, username))
}

func (v *HMACVerifier) Verify(id int64, username, proof string) bool {
	got, err := hex.DecodeString(proof)
	if err != nil {
		return false
	}
	return hmac.Equal(got, v.mac(id, username))
}

func (v *HMACVerifier) mac(id int64, username string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of an int and a string cannot fail.
	_ = enc.Encode(launchPayload{TelegramID: id, Username: username})

	m := hmac.New(sha256.New, v.secret)
	m.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return m.Sum(nil)
}
