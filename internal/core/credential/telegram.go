package credential

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

var ErrMissingBotToken = errors.New("credential: telegram bot token is not configured")

// TelegramVerifier checks login widget payloads against the bot token.
type TelegramVerifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTelegramVerifier derives the HMAC key as SHA256(botToken). A positive
// maxAge additionally rejects payloads whose auth_date is older than maxAge.
func NewTelegramVerifier(botToken string, maxAge time.Duration) (*TelegramVerifier, error) {
	if botToken == "" {
		return nil, ErrMissingBotToken
	}
	sum := sha256.Sum256([]byte(botToken))
	return &TelegramVerifier{secret: sum[:], maxAge: maxAge, now: time.Now}, nil
}

// DataCheckString serialises fields as key-sorted "key=value" lines joined by
// "\n", skipping "hash". Map iteration order never leaks into the result.
func DataCheckString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + fields[k]
	}
	return strings.Join(lines, "\n")
}

// Sign returns the hex HMAC-SHA256 of the data-check string of fields.
func (v *TelegramVerifier) Sign(fields map[string]string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(DataCheckString(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyFields reports whether hash is the signature of fields.
func (v *TelegramVerifier) VerifyFields(fields map[string]string, hash string) bool {
	expected := v.Sign(fields)
	return hmac.Equal([]byte(expected), []byte(hash))
}

// Verify checks the payload signature and, when configured, its freshness.
func (v *TelegramVerifier) Verify(a domain.TelegramAuth) error {
	if a.ID == "" || a.Hash == "" {
		return domain.ErrInvalidTelegram
	}
	if !v.VerifyFields(a.Fields(), a.Hash) {
		return domain.ErrInvalidTelegram
	}
	if v.maxAge > 0 && a.AuthDate != "" {
		ts, err := strconv.ParseInt(a.AuthDate, 10, 64)
		if err != nil || v.now().Sub(time.Unix(ts, 0)) > v.maxAge {
			return domain.ErrInvalidTelegram
		}
	}
	return nil
}
