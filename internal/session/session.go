package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"waste-wizard-backend/internal/config"
	"waste-wizard-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	TokenTTL   = 24 * time.Hour
)

var (
	ErrNoSession    = errors.New("no session cookie")
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims identify the logged-in operator
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// legacyPayload is the unsigned base64 JSON cookie body of the legacy mode
type legacyPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Exp      int64  `json:"exp"`
}

// Manager mints and verifies session cookies.
//
// In legacy mode the cookie is base64 JSON and any cookie value is accepted:
// possession of the cookie is the whole check. That mode exists only for
// compatibility with old clients.
type Manager struct {
	secret []byte
	legacy bool
	secure bool
	now    func() time.Time
}

func NewManager(cfg config.SessionConfig, secure bool) *Manager {
	return &Manager{
		secret: []byte(cfg.Secret),
		legacy: cfg.LegacyCookie,
		secure: secure,
		now:    time.Now,
	}
}

// Legacy reports whether the presence-only cookie mode is active
func (m *Manager) Legacy() bool {
	return m.legacy
}

// Mint creates the cookie value for user
func (m *Manager) Mint(user *models.User) (string, error) {
	now := m.now()
	exp := now.Add(TokenTTL)

	if m.legacy {
		payload, err := json.Marshal(legacyPayload{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
			Exp:      exp.Unix(),
		})
		if err != nil {
			return "", fmt.Errorf("failed to encode session: %w", err)
		}
		return base64.StdEncoding.EncodeToString(payload), nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry of a cookie value
func (m *Manager) Verify(value string) (*Claims, error) {
	if m.legacy {
		return m.decodeLegacy(value), nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// decodeLegacy never fails: the legacy gate only checks the cookie exists
func (m *Manager) decodeLegacy(value string) *Claims {
	claims := &Claims{}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return claims
	}
	var payload legacyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return claims
	}
	claims.UserID = payload.ID
	claims.Username = payload.Username
	claims.Role = payload.Role
	if payload.Exp > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Unix(payload.Exp, 0))
	}
	return claims
}

// FromRequest reads and verifies the session cookie of r
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return m.Verify(cookie.Value)
}

// SetCookie attaches a session cookie valid for TokenTTL
func (m *Manager) SetCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the session cookie
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
