package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User is a staff account allowed into the admin dashboard.
type User struct {
	Username    string `json:"username"`
	Password    string `json:"-"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

var defaultUsers = []User{
	{
		Username:    "tatyana",
		Password:    "admin12345",
		Role:        RoleAdmin,
		DisplayName: "Татьяна",
	},
}

// Service validates credentials and issues/verifies admin tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	users  []User
	log    *zap.SugaredLogger
}

// NewService parses the "user:pass:role:displayName;..." spec; an empty or
// fully invalid spec falls back to the built-in default account.
func NewService(secret string, ttl time.Duration, usersSpec string, log *zap.SugaredLogger) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		users:  parseUsers(usersSpec),
		log:    log,
	}
}

func parseUsers(raw string) []User {
	if strings.TrimSpace(raw) == "" {
		return defaultUsers
	}

	var users []User
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parts := strings.Split(segment, ":")
		user := User{Role: RoleAdmin}
		if len(parts) > 0 {
			user.Username = strings.TrimSpace(parts[0])
		}
		if len(parts) > 1 {
			user.Password = parts[1]
		}
		if len(parts) > 2 && strings.TrimSpace(parts[2]) == RoleViewer {
			user.Role = RoleViewer
		}
		if len(parts) > 3 {
			user.DisplayName = strings.TrimSpace(parts[3])
		}
		if user.DisplayName == "" {
			user.DisplayName = user.Username
		}
		if user.Username != "" && user.Password != "" {
			users = append(users, user)
		}
	}
	if len(users) == 0 {
		return defaultUsers
	}
	return users
}

// ValidateCredentials returns the matching user, comparing passwords in
// constant time.
func (s *Service) ValidateCredentials(username, password string) (User, bool) {
	username = strings.TrimSpace(username)
	for _, user := range s.users {
		if user.Username != username {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) == 1 {
			return user, true
		}
		return User{}, false
	}
	return User{}, false
}

type claims struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token carrying the user's identity and role.
func (s *Service) IssueToken(user User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username:    user.Username,
		Role:        user.Role,
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token, returning the embedded user.
func (s *Service) VerifyToken(tokenString string) (User, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return User{}, err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return User{}, errors.New("invalid token")
	}
	return User{
		Username:    c.Username,
		Role:        c.Role,
		DisplayName: c.DisplayName,
	}, nil
}
