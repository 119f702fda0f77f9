package auth

import (
	"errors"
	"fmt"

	"github.com/blueline-estimating/takeoff-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTValidator validates HMAC-signed bearer tokens issued by the identity
// service in front of this API.
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.JwtConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.Secret.Value),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	claims := jwt.MapClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	userCtx := &UserContext{
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email", "upn"),
		Roles:       ExtractRoles(claims),
	}

	if sub := extractString(claims, "sub", "oid"); sub != "" {
		if uid, err := uuid.Parse(sub); err == nil {
			userCtx.UserID = uid
		}
	}

	// Callers without a parseable subject still get a stable identity
	if userCtx.UserID == uuid.Nil && userCtx.Email != "" {
		userCtx.UserID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(userCtx.Email))
	}

	companyStr := extractString(claims, "company_id")
	if companyStr == "" {
		return nil, fmt.Errorf("%w: missing company_id claim", ErrInvalidToken)
	}
	companyID, err := uuid.Parse(companyStr)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed company_id claim", ErrInvalidToken)
	}
	userCtx.CompanyID = companyID

	if len(userCtx.Roles) == 0 {
		userCtx.Roles = []Role{RoleViewer}
	}

	return userCtx, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

// ExtractRoles extracts roles from JWT claims
func ExtractRoles(claims jwt.MapClaims) []Role {
	roles := []Role{}

	for _, key := range []string{"roles", "role"} {
		if val, ok := claims[key]; ok {
			switch v := val.(type) {
			case []interface{}:
				for _, r := range v {
					if str, ok := r.(string); ok {
						roles = append(roles, Role(str))
					}
				}
			case []string:
				for _, str := range v {
					roles = append(roles, Role(str))
				}
			case string:
				roles = append(roles, Role(v))
			}
		}
	}

	return roles
}
