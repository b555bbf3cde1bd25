package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/core/credential"
	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/policy"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// AuthService implements sign-up, sessions, profiles, bans and Telegram identity.
type AuthService struct {
	store    ports.Store
	hasher   *credential.Hasher
	tokens   *credential.TokenIssuer
	telegram *credential.TelegramVerifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the service. telegram may be nil, which disables the
// Telegram login and linking flows.
func NewAuthService(
	store ports.Store,
	hasher *credential.Hasher,
	tokens *credential.TokenIssuer,
	telegram *credential.TelegramVerifier,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		telegram: telegram,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.AuthService = (*AuthService)(nil)

func (s *AuthService) SignUp(ctx context.Context, actor *domain.Principal, in ports.SignUpInput) (*domain.TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "email and password are required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		MiddleName:   in.MiddleName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		if _, err := tx.Users().GetByEmail(ctx, email); err == nil {
			return domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		var workspaceID int64
		if actor != nil {
			if in.Role == "" {
				return domain.ErrRoleRequired
			}
			if !in.Role.Valid() {
				return domain.Errorf(domain.ErrInvalidArgument, "unknown role %q", in.Role)
			}
			res := policy.Resource{}
			if in.Role == domain.RoleManager {
				if in.WorkspaceID == 0 {
					return domain.ErrWorkspaceRequired
				}
				var err error
				if _, res, err = workspaceResource(ctx, tx, *actor, in.WorkspaceID); err != nil {
					return err
				}
				workspaceID = in.WorkspaceID
			}
			res.TargetRole = in.Role
			if err := policy.Authorize(*actor, policy.CreateUser, res); err != nil {
				return err
			}
			user.Role = in.Role
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		if workspaceID != 0 {
			return tx.Managers().Add(ctx, &domain.WorkspaceManager{
				WorkspaceID: workspaceID,
				ManagerID:   user.ID,
				CreatedAt:   now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return s.issue(user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Banned {
		return nil, domain.ErrUserBanned
	}
	return s.issue(user)
}

// Refresh rotates a token pair. Claims are re-read from storage so role
// changes and bans take effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if user.Banned {
		return nil, domain.ErrUserBanned
	}
	return s.issue(user)
}

func (s *AuthService) Profile(ctx context.Context, actor domain.Principal) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, actor.UserID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, actor domain.Principal, in ports.ProfileUpdate) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	mergeString(&user.FirstName, in.FirstName)
	mergeString(&user.MiddleName, in.MiddleName)
	mergeString(&user.LastName, in.LastName)
	mergeString(&user.Phone, in.Phone)
	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.Errorf(domain.ErrInvalidArgument, "password must not be empty")
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update profile: hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now()

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) SetBan(ctx context.Context, actor domain.Principal, in ports.BanInput) (*domain.User, error) {
	target, err := s.store.Users().GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.SetBan, policy.Resource{
		TargetUserID: target.ID,
		TargetRole:   target.Role,
	}); err != nil {
		return nil, err
	}

	if in.Banned != nil {
		target.Banned = *in.Banned
	}
	switch {
	case !target.Banned:
		target.ReasonBanned = nil
	case in.Reason != nil:
		target.ReasonBanned = in.Reason
	}
	target.UpdatedAt = s.now()

	if err := s.store.Users().Update(ctx, target); err != nil {
		return nil, fmt.Errorf("set ban: %w", err)
	}
	s.log.Info().
		Int64("user_id", target.ID).
		Int64("actor_id", actor.UserID).
		Bool("banned", target.Banned).
		Msg("ban state changed")
	return target, nil
}

func (s *AuthService) ListUsers(ctx context.Context, actor domain.Principal, f ports.UserFilter) (*ports.UserPage, error) {
	if err := policy.Authorize(actor, policy.ListUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	f.Offset, f.Limit = page(f.Offset, f.Limit)
	users, total, err := s.store.Users().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.UserPage{Items: users, Total: total}, nil
}

// MyWorkspaces returns the workspaces the actor owns or manages.
func (s *AuthService) MyWorkspaces(ctx context.Context, actor domain.Principal) ([]*domain.Workspace, error) {
	items, _, err := s.store.Workspaces().List(ctx, ports.WorkspaceFilter{MemberID: actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("my workspaces: %w", err)
	}
	return items, nil
}

func (s *AuthService) TelegramLogin(ctx context.Context, payload domain.TelegramAuth) (*domain.TokenPair, error) {
	if err := s.verifyTelegram(payload); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByTelegramID(ctx, payload.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTelegramNotLinked
		}
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	if user.Banned {
		return nil, domain.ErrUserBanned
	}
	return s.issue(user)
}

func (s *AuthService) LinkTelegram(ctx context.Context, actor domain.Principal, payload domain.TelegramAuth) (*domain.User, error) {
	if err := s.verifyTelegram(payload); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.store.InTx(ctx, ports.TxOptions{}, func(ctx context.Context, tx ports.Store) error {
		owner, err := tx.Users().GetByTelegramID(ctx, payload.ID)
		switch {
		case err == nil && owner.ID != actor.UserID:
			return domain.ErrTelegramLinked
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return err
		}

		if user, err = tx.Users().GetByID(ctx, actor.UserID); err != nil {
			return err
		}
		id := payload.ID
		user.TelegramID = &id
		user.TelegramUsername = nil
		if payload.Username != "" {
			username := payload.Username
			user.TelegramUsername = &username
		}
		user.UpdatedAt = s.now()
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("link telegram: %w", err)
	}
	return user, nil
}

func (s *AuthService) UnlinkTelegram(ctx context.Context, actor domain.Principal) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user.TelegramID == nil {
		return nil, domain.ErrTelegramNotLinked
	}
	user.TelegramID = nil
	user.TelegramUsername = nil
	user.UpdatedAt = s.now()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("unlink telegram: %w", err)
	}
	return user, nil
}

func (s *AuthService) verifyTelegram(payload domain.TelegramAuth) error {
	if s.telegram == nil {
		return domain.ErrTelegramDisabled
	}
	return s.telegram.Verify(payload)
}

func (s *AuthService) issue(u *domain.User) (*domain.TokenPair, error) {
	pair, err := s.tokens.IssuePair(domain.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &pair, nil
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
