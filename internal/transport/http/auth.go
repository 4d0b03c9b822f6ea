package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"nursing-quiz-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// GuestHeader carries the guest identity a client keeps in its local storage.
const GuestHeader = "X-Guest-ID"

// AuthService issues and verifies HS256 learner tokens.
type AuthService struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{hmac: []byte(secret), ttl: 8 * time.Hour, now: time.Now}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := a.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "nursing-quiz-service",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

type learnerKey struct{}

// Identify resolves the learner of a request. A bearer token (or token query
// parameter for websockets) makes an authenticated learner; otherwise the
// request is a guest, identified by X-Guest-ID or guest_id when present.
// A token that fails verification is rejected.
func (a *AuthService) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		learner := domain.Learner{GuestID: r.Header.Get(GuestHeader)}
		if learner.GuestID == "" {
			learner.GuestID = r.URL.Query().Get("guest_id")
		}

		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else if q := r.URL.Query().Get("token"); q != "" {
			token = q
		}
		if token != "" {
			claims, err := a.Parse(token)
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			learner.UserID = claims.Subject
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), learnerKey{}, learner)))
	})
}

// LearnerFrom returns the learner attached by Identify.
func LearnerFrom(ctx context.Context) domain.Learner {
	learner, _ := ctx.Value(learnerKey{}).(domain.Learner)
	return learner
}

// TokenHandler is a development login: POST /auth/token {"username","password"}
// succeeds when both are equal.
func (a *AuthService) TokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Username != req.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	tok, err := a.IssueJWT(req.Username, "learner")
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": tok})
}
