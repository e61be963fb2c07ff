package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	adminRole       = "admin"
	defaultAdminTTL = time.Hour
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	// ErrAdminDisabled indica que no hay secreto configurado para emitir ni validar tokens.
	ErrAdminDisabled = errors.New("admin token secret not configured")
)

// AdminClaims son los claims del token que habilita las operaciones administrativas.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminTokenService emite y valida tokens HS256 de administrador.
type AdminTokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAdminTokenService(secret, issuer string) *AdminTokenService {
	if strings.TrimSpace(issuer) == "" {
		issuer = "insight-profile"
	}
	return &AdminTokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enabled es false cuando no hay secreto; en ese caso las rutas admin quedan abiertas.
func (s *AdminTokenService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue firma un token de administrador para subject.
func (s *AdminTokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrAdminDisabled
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrTokenInvalid
	}
	if ttl <= 0 {
		ttl = defaultAdminTTL
	}
	now := s.now()
	claims := AdminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida firma, expiracion, issuer y rol.
func (s *AdminTokenService) Parse(tokenString string) (AdminClaims, error) {
	if !s.Enabled() {
		return AdminClaims{}, ErrAdminDisabled
	}
	if strings.TrimSpace(tokenString) == "" {
		return AdminClaims{}, ErrTokenInvalid
	}

	var claims AdminClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AdminClaims{}, ErrTokenExpired
		}
		return AdminClaims{}, ErrTokenInvalid
	}
	if claims.Role != adminRole || strings.TrimSpace(claims.Subject) == "" {
		return AdminClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Issuer) != s.issuer {
		return AdminClaims{}, ErrTokenInvalid
	}
	return claims, nil
}
