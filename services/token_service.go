package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const sessionTokenType = "session"

// SessionClaims identifies the admin behind a session token.
type SessionClaims struct {
	UserID   uint
	Username string
	TokenID  string
}

// sessionJWT is the signed payload. Type separates session tokens from any
// other token signed with the same secret.
type sessionJWT struct {
	Username string `json:"username"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	errTokenInvalid = errors.New("invalid or expired token")
	errTokenType    = errors.New("invalid token type")
	errTokenSubject = errors.New("invalid token subject")
)

// TokenService signs and verifies HS256 admin session tokens.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService panics on an empty secret. A non-positive ttl means 12h.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if secret == "" {
		panic("JWT secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenService{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) GenerateSession(userID uint, username string) (string, error) {
	issued := s.now()
	claims := sessionJWT{
		Username: username,
		Type:     sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *TokenService) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, errTokenInvalid
	}
	return s.key, nil
}

// ValidateSession checks signature, expiry and token type, then returns the
// claims.
func (s *TokenService) ValidateSession(raw string) (*SessionClaims, error) {
	var claims sessionJWT
	token, err := jwt.ParseWithClaims(raw, &claims, s.keyFunc)
	if err != nil || !token.Valid {
		return nil, errTokenInvalid
	}
	if claims.Type != sessionTokenType {
		return nil, errTokenType
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || id == 0 {
		return nil, errTokenSubject
	}
	return &SessionClaims{UserID: uint(id), Username: claims.Username, TokenID: claims.ID}, nil
}
