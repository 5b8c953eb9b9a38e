package accesscontrol

import (
	"context"
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/identity"
	"github.com/brightpath/guidance-service/internal/repository"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// Viewer is the authenticated caller with its resolved role context.
type Viewer struct {
	UserID      string
	Email       string
	Role        domain.Role
	StaffLevel  *domain.StaffLevel
	MFAVerified bool
}

// IsStaff reports whether the viewer holds the staff role.
func (v *Viewer) IsStaff() bool {
	return v != nil && v.Role == domain.RoleStaff
}

// Level returns the staff level, or empty when none.
func (v *Viewer) Level() domain.StaffLevel {
	if v == nil || v.StaffLevel == nil {
		return ""
	}
	return *v.StaffLevel
}

// Resolver turns a raw bearer token into a Viewer.
type Resolver struct {
	provider identity.Provider
	roles    repository.RoleRepository
	logger   *zap.Logger
}

// NewResolver constructs a resolver.
func NewResolver(provider identity.Provider, roles repository.RoleRepository, logger *zap.Logger) *Resolver {
	return &Resolver{provider: provider, roles: roles, logger: logger}
}

// Resolve validates the token with the identity provider and reconciles
// the role from provider metadata and the user_roles table. The table
// wins when a row exists and is readable; metadata is fallback only.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*Viewer, error) {
	mfaVerified := assuranceVerified(rawToken)

	ident, err := r.provider.ResolveToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, apperrors.NewUnauthorized("invalid token")
		}
		return nil, apperrors.MapError(err)
	}

	role, level := domain.NormalizeRole(ident.AppMetadata.Role, ident.AppMetadata.StaffLevel)

	row, err := r.roles.GetByUserID(ctx, ident.ID)
	switch {
	case err == nil:
		rawLevel := ""
		if row.StaffLevel != nil {
			rawLevel = string(*row.StaffLevel)
		}
		role, level = domain.NormalizeRole(string(row.Role), rawLevel)
	case errors.Is(err, pgx.ErrNoRows):
		// no system-of-record row; keep the metadata fallback
	default:
		r.logger.Warn("role table read failed; falling back to token metadata",
			zap.String("user_id", ident.ID), zap.Error(err))
	}

	return &Viewer{
		UserID:      ident.ID,
		Email:       ident.Email,
		Role:        role,
		StaffLevel:  level,
		MFAVerified: mfaVerified,
	}, nil
}

// assuranceVerified reads the assurance-level claim without verifying the
// signature; token validity is checked separately by the provider. Any
// decode failure or unknown value means not MFA-verified, never an error.
func assuranceVerified(rawToken string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return false
	}
	aal, ok := claims["aal"].(string)
	if !ok {
		return false
	}
	return aal == "aal2" || aal == "aal3"
}
