package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedToken = errors.New("storage: malformed download token")
	ErrBadSignature   = errors.New("storage: invalid download token signature")
	ErrTokenExpired   = errors.New("storage: download token expired")
)

// Grant is the content of a verified download token.
type Grant struct {
	ExportID  string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner issues HMAC-SHA256 download tokens of the form id.expiry.path.signature.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token granting access to path until now+ttl.
func (s *SignedURLSigner) Sign(exportID, path string) (string, Grant, error) {
	if exportID == "" || path == "" {
		return "", Grant{}, fmt.Errorf("export id and path required")
	}
	if strings.Contains(exportID, ".") {
		return "", Grant{}, fmt.Errorf("export id must not contain '.'")
	}
	if len(s.secret) == 0 {
		return "", Grant{}, fmt.Errorf("signing secret missing")
	}
	expires := s.now().Add(s.ttl).Truncate(time.Second)
	encPath := base64.RawURLEncoding.EncodeToString([]byte(path))
	exp := strconv.FormatInt(expires.Unix(), 10)
	token := strings.Join([]string{exportID, exp, encPath, s.mac(exportID, exp, encPath)}, ".")
	return token, Grant{ExportID: exportID, Path: path, ExpiresAt: expires}, nil
}

// Verify checks the signature and, unless allowExpired is set, the expiry.
func (s *SignedURLSigner) Verify(token string, allowExpired bool) (Grant, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Grant{}, ErrMalformedToken
	}
	id, exp, encPath, sig := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.mac(id, exp, encPath)), []byte(sig)) {
		return Grant{}, ErrBadSignature
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return Grant{}, ErrMalformedToken
	}
	path, err := base64.RawURLEncoding.DecodeString(encPath)
	if err != nil {
		return Grant{}, ErrMalformedToken
	}
	grant := Grant{ExportID: id, Path: string(path), ExpiresAt: time.Unix(unix, 0)}
	if !allowExpired && s.now().After(grant.ExpiresAt) {
		return grant, ErrTokenExpired
	}
	return grant, nil
}

func (s *SignedURLSigner) mac(id, exp, encPath string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(id + "|" + exp + "|" + encPath))
	return hex.EncodeToString(m.Sum(nil))
}
