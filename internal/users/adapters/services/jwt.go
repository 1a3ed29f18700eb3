package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"notespace/internal/users/domain/services"
	svc "notespace/internal/users/ports/services"
	"notespace/pkg/logger"
)

const (
	methodGenerate     = "ServiceJWT.Generate"
	methodValidate     = "ServiceJWT.Validate"
	msgTokenGenerated  = "token generated"
	msgTokenExpired    = "token has expired"
	msgTokenInvalid    = "invalid token"
	errCtxGenerating   = "generating token"
	errCtxValidating   = "validating token"
	errMsgEmptySecret  = "empty secret key"
	errMsgEmptySubject = "empty sub claim"
)

// Claims - представление токена для библиотеки JWT: sub - ID пользователя.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ServiceJWT выпускает и проверяет HS256 токены.
type ServiceJWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ svc.TokenService = (*ServiceJWT)(nil)

// NewJWT создает сервис токенов.
func NewJWT(secret string, ttl time.Duration) *ServiceJWT {
	return &ServiceJWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate выпускает токен с sub и email.
func (s *ServiceJWT) Generate(ctx context.Context, userID, email string) (string, time.Time, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGenerate), zap.String("userID", userID))

	if len(s.secret) == 0 {
		log.Error(ctx, errMsgEmptySecret)
		return "", time.Time{}, fmt.Errorf("%s: %w: %s", errCtxGenerating, services.ErrGeneratingJWTToken, errMsgEmptySecret)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		log.Error(ctx, "error signing token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxGenerating, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenGenerated, zap.Time("expiresAt", expiresAt))
	return signed, expiresAt, nil
}

// Validate проверяет подпись и срок действия токена.
func (s *ServiceJWT) Validate(ctx context.Context, tokenString string) (*services.Claims, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidate))

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxValidating, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, msgTokenInvalid, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxValidating, services.ErrInvalidJWTToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		log.Debug(ctx, errMsgEmptySubject)
		return nil, fmt.Errorf("%s: %w: %s", errCtxValidating, services.ErrInvalidJWTToken, errMsgEmptySubject)
	}

	out := &services.Claims{UserID: claims.Subject, Email: claims.Email}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
