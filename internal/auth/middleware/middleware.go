package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/corector/internal/rbac"
)

// Account is a local login. PassHash is a bcrypt hash.
type Account struct {
	Username string
	PassHash string
	Role     string
}

type AuthService struct {
	hmac     []byte
	accounts map[string]Account
	ttl      time.Duration
}

func NewAuthService(secret string, accounts ...Account) *AuthService {
	a := &AuthService{hmac: []byte(secret), accounts: map[string]Account{}, ttl: 8 * time.Hour}
	for _, acc := range accounts {
		if acc.Username == "" || acc.PassHash == "" {
			continue
		}
		if acc.Role == "" {
			acc.Role = rbac.RoleTeacher
		}
		a.accounts[acc.Username] = acc
	}
	return a
}

// ParseAccounts reads "username:bcrypt-hash" entries.
func ParseAccounts(entries []string, role string) []Account {
	out := make([]Account, 0, len(entries))
	for _, e := range entries {
		user, hash, ok := strings.Cut(e, ":")
		if !ok || strings.TrimSpace(user) == "" || strings.TrimSpace(hash) == "" {
			continue
		}
		out = append(out, Account{Username: strings.TrimSpace(user), PassHash: strings.TrimSpace(hash), Role: role})
	}
	return out
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

type Claims struct {
	Sub   string `json:"sub"`
	Role  string `json:"role"` // teacher|guest|admin
	Guest bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string, guest bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:   sub,
		Role:  role,
		Guest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "corector",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// Check verifies a password against the configured accounts.
func (a *AuthService) Check(username, password string) (Account, bool) {
	acc, ok := a.accounts[username]
	if !ok {
		return Account{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PassHash), []byte(password)) != nil {
		return Account{}, false
	}
	return acc, true
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		acc, ok := a.Check(strings.TrimSpace(req.Username), req.Password)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(acc.Username, acc.Role, false)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": acc.Role})
	}
}

// JWTMiddleware validates the bearer token and puts subject, role and guest
// flag into the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = rbac.WithRole(ctx, c.Role)
			ctx = WithGuest(ctx, c.Guest)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
