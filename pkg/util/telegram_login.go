package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrLoginHashMismatch = errors.New("telegram login hash mismatch")
	ErrLoginExpired      = errors.New("telegram login data is stale")
)

// MaxLoginAge bounds how old Telegram Login widget data may be before it is
// rejected as a replay.
const MaxLoginAge = 24 * time.Hour

// VerifyTelegramLogin checks the hash on data received from the Telegram
// Login widget. fields holds every key/value pair from the widget except
// "hash"; authDate is the unix timestamp from the "auth_date" field.
//
// Per the Telegram spec the signing key is SHA256(bot_token) and the signed
// message is the sorted "key=value" lines joined with newlines.
func VerifyTelegramLogin(fields map[string]string, hash, botToken string, authDate int64) error {
	if time.Since(time.Unix(authDate, 0)) > MaxLoginAge {
		return ErrLoginExpired
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%s", k, fields[k]))
	}
	dataCheckString := strings.Join(lines, "\n")

	secretKey := sha256.Sum256([]byte(botToken))

	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(dataCheckString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return ErrLoginHashMismatch
	}
	return nil
}
