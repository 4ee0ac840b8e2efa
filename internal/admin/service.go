package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/mlbahja/01-blog/internal/audit"
	"github.com/mlbahja/01-blog/internal/auth"
	"github.com/mlbahja/01-blog/internal/domain/user"
	"github.com/mlbahja/01-blog/internal/rbac"
	"github.com/mlbahja/01-blog/internal/repository"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	msgCannotTargetSelfFmt = "administrators cannot %s their own account"
	msgAdminRequired       = "administrator role required"
	msgNotAccountOwner     = "only the account owner or an administrator can delete this account"
	msgInvalidRole         = "role must be one of USER, ADMIN"
	msgListUsersFailed     = "failed to list users"
	msgUpdateUserFailed    = "failed to update user"
)

// Service carries out account moderation on behalf of an ADMIN principal.
// Bans and role changes take effect on the target's next request because
// every request re-reads the user record.
type Service struct {
	users    repository.UserRepository
	roles    *rbac.Checker
	recorder audit.Recorder
	logger   zerolog.Logger
}

func NewService(users repository.UserRepository, roles *rbac.Checker, recorder audit.Recorder, logger zerolog.Logger) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{users: users, roles: roles, recorder: recorder, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]user.View, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.InternalServer(msgListUsersFailed, err)
	}

	views := make([]user.View, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return u, nil
}

func (s *Service) Ban(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := s.requireAdmin(actor, msgAdminRequired); err != nil {
		return err
	}
	if actor.UserID == id {
		return selfTargetError("ban")
	}
	if err := s.users.SetBanned(ctx, id, true); err != nil {
		return mapStoreError(err)
	}
	s.record(ctx, audit.EventUserBanned, actor, id, nil)
	return nil
}

func (s *Service) Unban(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := s.requireAdmin(actor, msgAdminRequired); err != nil {
		return err
	}
	if err := s.users.SetBanned(ctx, id, false); err != nil {
		return mapStoreError(err)
	}
	s.record(ctx, audit.EventUserUnbanned, actor, id, nil)
	return nil
}

func (s *Service) ChangeRole(ctx context.Context, actor auth.Principal, id uuid.UUID, role string) error {
	if err := s.requireAdmin(actor, msgAdminRequired); err != nil {
		return err
	}
	validated, err := s.roles.ValidateRole(role)
	if err != nil {
		return apperrors.Validation(msgInvalidRole)
	}
	newRole := user.Role(validated)

	if actor.UserID == id && newRole != actor.Role {
		return selfTargetError("change the role of")
	}

	if err := s.users.SetRole(ctx, id, newRole); err != nil {
		return mapStoreError(err)
	}
	s.record(ctx, audit.EventRoleChanged, actor, id, map[string]any{"role": string(newRole)})
	return nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := s.requireAdmin(actor, msgAdminRequired); err != nil {
		return err
	}
	if actor.UserID == id {
		return selfTargetError("delete")
	}
	return s.delete(ctx, actor, id)
}

// DeleteAccount lets a user close their own account; any other target requires ADMIN.
func (s *Service) DeleteAccount(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if actor.UserID != id {
		if err := s.requireAdmin(actor, msgNotAccountOwner); err != nil {
			return err
		}
	}
	return s.delete(ctx, actor, id)
}

func (s *Service) delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.record(ctx, audit.EventUserDeleted, actor, id, map[string]any{"self": actor.UserID == id})
	return nil
}

// requireAdmin maps an rbac denial to a 403 carrying msg.
func (s *Service) requireAdmin(actor auth.Principal, msg string) error {
	if err := s.roles.RequireRole(rbac.Role(actor.Role), rbac.Role(user.RoleAdmin)); err != nil {
		if errors.Is(err, rbac.ErrDenied) {
			return apperrors.Forbidden(msg)
		}
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, eventType audit.EventType, actor auth.Principal, target uuid.UUID, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["target_id"] = target.String()

	actorID := actor.UserID
	event := &audit.Event{
		Type:     eventType,
		Status:   audit.StatusSuccess,
		ActorID:  &actorID,
		Subject:  actor.Username,
		Metadata: metadata,
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to record audit event")
	}
}

func mapStoreError(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return apperrors.InternalServer(msgUpdateUserFailed, err)
}

func selfTargetError(action string) error {
	return apperrors.Validation(fmt.Sprintf(msgCannotTargetSelfFmt, action))
}
