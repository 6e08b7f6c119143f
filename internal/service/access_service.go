package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/escolinha-api/internal/models"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
)

const (
	adminHashCost = 10

	msgAccessCodeRequired = "Código de acesso é obrigatório."
	msgLoginSucceeded     = "Login bem-sucedido!"
	msgAdminHashMissing   = "Erro de configuração do servidor: Senha do admin não carregada."
	msgSigningKeyMissing  = "Erro de configuração do servidor: Chave secreta JWT ausente."
)

// ErrAdminHashAlreadySet is returned when the admin hash is installed twice.
var ErrAdminHashAlreadySet = errors.New("admin hash already set")

// AccessConfig defines the owner login settings.
type AccessConfig struct {
	SigningKey string
	TokenTTL   time.Duration
	Issuer     string
	AdminHash  string
}

// AccessService exchanges the shared owner access code for a signed token.
type AccessService struct {
	cfg       AccessConfig
	adminHash atomic.Pointer[string]
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAccessService constructs an AccessService. The admin hash may be installed later via SetAdminHash.
func NewAccessService(cfg AccessConfig, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *AccessService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	s := &AccessService{cfg: cfg, validator: validate, metrics: metrics, logger: logger, now: time.Now}
	if cfg.AdminHash != "" {
		hash := cfg.AdminHash
		s.adminHash.Store(&hash)
	}
	return s
}

// HashAdminSecret derives the bcrypt hash of the configured admin password.
func HashAdminSecret(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("admin password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), adminHashCost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return string(hash), nil
}

// SetAdminHash installs the admin hash. It succeeds only once.
func (s *AccessService) SetAdminHash(hash string) error {
	if hash == "" {
		return errors.New("admin hash is empty")
	}
	if !s.adminHash.CompareAndSwap(nil, &hash) {
		return ErrAdminHashAlreadySet
	}
	return nil
}

// Ready reports whether logins can currently succeed.
func (s *AccessService) Ready() bool {
	return s.adminHash.Load() != nil && s.cfg.SigningKey != ""
}

// Login checks the access code and issues an owner token.
func (s *AccessService) Login(ctx context.Context, req models.LoginRequest) (resp *models.LoginResponse, err error) {
	defer func() { s.metrics.RecordLogin(err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msgAccessCodeRequired)
	}

	hash := s.adminHash.Load()
	if hash == nil {
		s.logger.Error("owner login attempted before admin hash was loaded")
		return nil, appErrors.Clone(appErrors.ErrConfiguration, msgAdminHashMissing)
	}
	if s.cfg.SigningKey == "" {
		s.logger.Error("owner login attempted without a signing key")
		return nil, appErrors.Clone(appErrors.ErrConfiguration, msgSigningKeyMissing)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn("owner login rejected")
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, msgAdminHashMissing)
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.cfg.TokenTTL)
	claims := models.OwnerClaims{
		Role: models.RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   models.RoleOwner,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SigningKey))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	s.logger.Info("owner logged in")
	return &models.LoginResponse{
		Authenticated: true,
		Message:       msgLoginSucceeded,
		Token:         token,
		Role:          models.RoleOwner,
		ExpiresIn:     int64(s.cfg.TokenTTL.Seconds()),
		ExpiresAt:     expiresAt,
	}, nil
}

// ValidateToken parses an owner token. Only HS256 signatures are accepted.
func (s *AccessService) ValidateToken(tokenString string) (*models.OwnerClaims, error) {
	if s.cfg.SigningKey == "" {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, msgSigningKeyMissing)
	}
	claims := &models.OwnerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SigningKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "Token inválido ou expirado.")
	}
	return claims, nil
}
