// Package account handles registration, sessions and admin user management.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/access"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

type Store interface {
	storage.UserStore
	ListDepartments(ctx context.Context) ([]models.Department, error)
	GetDepartmentByID(ctx context.Context, id string) (*models.Department, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type Service struct {
	store   Store
	tokens  *auth.TokenService
	hasher  *auth.PasswordHasher
	revoked storage.TokenDenyList
	cache   storage.Cache
	domain  string
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates the account service. revoked may be nil, in which case
// logout only clears the client cookie.
func NewService(store Store, tokens *auth.TokenService, hasher *auth.PasswordHasher, revoked storage.TokenDenyList, emailDomain string, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		tokens:  tokens,
		hasher:  hasher,
		revoked: revoked,
		domain:  emailDomain,
		log:     log,
		now:     time.Now,
	}
}

// WithCache makes user deletions drop the cached report summary, whose
// per-officer rows would otherwise keep naming the removed user.
func (s *Service) WithCache(cache storage.Cache) *Service {
	s.cache = cache
	return s
}

// Register creates a self-service account. No session is started.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*models.User, error) {
	if cmd.Role == "" {
		cmd.Role = models.RoleStudent
	}
	fields := checkFields(cmd.Email, cmd.Password, cmd.Name, s.domain)
	if !cmd.Role.SelfService() {
		fields["role"] = roleChoices(models.Role.SelfService)
	}
	if err := validationError(fields); err != nil {
		return nil, err
	}
	return s.create(ctx, CreateUserCommand(cmd))
}

// CreateUser creates an account of any role on behalf of an admin.
func (s *Service) CreateUser(ctx context.Context, actor auth.Identity, cmd CreateUserCommand) (*models.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperr.Forbidden("only admins can manage users")
	}
	if cmd.Role == "" {
		cmd.Role = models.RoleStudent
	}
	fields := checkFields(cmd.Email, cmd.Password, cmd.Name, s.domain)
	if !cmd.Role.Valid() {
		fields["role"] = roleChoices(models.Role.Valid)
	}
	if err := validationError(fields); err != nil {
		return nil, err
	}
	return s.create(ctx, cmd)
}

func (s *Service) create(ctx context.Context, cmd CreateUserCommand) (*models.User, error) {
	dept, err := s.department(ctx, cmd.DepartmentID)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(cmd.Name),
		Role:         cmd.Role,
		DepartmentID: dept,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.Conflict("an account with this email already exists")
		}
		return nil, apperr.Internal(err)
	}
	return s.reload(ctx, u.ID)
}

// department checks that id, if set, names an existing department.
func (s *Service) department(ctx context.Context, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	d, err := s.store.GetDepartmentByID(ctx, *id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Validation("unknown department", map[string]string{"departmentId": "does not exist"})
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &d.ID, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !s.hasher.Check(u.PasswordHash, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	token, claims, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// Logout revokes token until it would have expired. Invalid tokens are
// ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" || s.revoked == nil {
		return nil
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revoked.RevokeToken(ctx, claims.ID, ttl); err != nil {
		s.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("token could not be revoked")
	}
	return nil
}

// Authenticate resolves a bearer token into the identity of a current user.
// The user is re-read so role changes and deletions apply immediately. When
// the deny-list cannot be reached the token is accepted.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, apperr.Unauthorized("authentication required")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, apperr.Unauthorized("invalid or expired token")
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Msg("revocation check failed, accepting token")
		} else if revoked {
			return auth.Identity{}, apperr.Unauthorized("token has been revoked")
		}
	}
	u, err := s.store.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return auth.Identity{}, apperr.Unauthorized("account no longer exists")
	}
	if err != nil {
		return auth.Identity{}, apperr.Internal(err)
	}
	return auth.IdentityOf(u), nil
}

func (s *Service) Me(ctx context.Context, actor auth.Identity) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, actor.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// UpdateUser changes the role and/or department of user id.
func (s *Service) UpdateUser(ctx context.Context, actor auth.Identity, id string, cmd UpdateUserCommand) (*models.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperr.Forbidden("only admins can manage users")
	}
	u, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if cmd.Role != nil {
		if !cmd.Role.Valid() {
			return nil, apperr.Validation("unknown role", map[string]string{"role": roleChoices(models.Role.Valid)})
		}
		u.Role = *cmd.Role
	}
	if cmd.DepartmentID.Set {
		dept, err := s.department(ctx, cmd.DepartmentID.Value)
		if err != nil {
			return nil, err
		}
		u.DepartmentID = dept
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Internal(err)
	}
	return s.reload(ctx, u.ID)
}

// DeleteUser removes user id. Admins cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actor auth.Identity, id string) error {
	if !access.CanManageUsers(actor) {
		return apperr.Forbidden("only admins can manage users")
	}
	if !access.CanDeleteUser(actor, id) {
		return apperr.Validation("you cannot delete your own account", map[string]string{"id": "is your own account"})
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("user")
		}
		return apperr.Internal(err)
	}
	s.log.Info().Str("user_id", id).Str("by", actor.UserID).Msg("user deleted")
	if s.cache != nil {
		if err := s.cache.CacheDelete(ctx, config.ReportCacheKey); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate report cache")
		}
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context, actor auth.Identity) ([]models.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperr.Forbidden("only admins can manage users")
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]models.Department, error) {
	depts, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return depts, nil
}

func (s *Service) reload(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// roleChoices lists the roles accepted by keep, in display order.
func roleChoices(keep func(models.Role) bool) string {
	names := make([]string, 0, len(models.Roles))
	for _, r := range models.Roles {
		if keep(r) {
			names = append(names, string(r))
		}
	}
	return "must be one of " + strings.Join(names, ", ")
}
