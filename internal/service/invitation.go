package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/burnsbros/taskdeck/internal/email"
	"github.com/burnsbros/taskdeck/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InvitationService issues and redeems workspace invitation tokens. Tokens
// are AES-GCM sealed invitation payloads; the invitee receives them by email
// and presents them back at sign-up.
type InvitationService struct {
	workspaceRepo WorkspaceRepository
	encryptor     *security.Encryptor
	sender        email.Sender
	ttl           time.Duration
	baseURL       string
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	workspaceRepo WorkspaceRepository,
	encryptor *security.Encryptor,
	sender email.Sender,
	ttl time.Duration,
	baseURL string,
) *InvitationService {
	return &InvitationService{
		workspaceRepo: workspaceRepo,
		encryptor:     encryptor,
		sender:        sender,
		ttl:           ttl,
		baseURL:       baseURL,
	}
}

// Invite seals an invitation token and emails it to the invitee. The
// requester must hold at least the admin role in the workspace.
func (s *InvitationService) Invite(ctx context.Context, requester *domain.User, workspaceID uuid.UUID, input domain.MemberInvite) (string, error) {
	role, err := s.workspaceRepo.GetMemberRole(ctx, workspaceID, requester.ID)
	if err != nil {
		return "", fmt.Errorf("failed to get member role: %w", err)
	}
	if role == "" {
		return "", ErrAccessDenied
	}
	if role != domain.RoleSuperAdmin && role != domain.RoleAdmin {
		return "", ErrAdminRequired
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return "", ErrWorkspaceNotFound
	}

	inv := domain.Invitation{
		WorkspaceID: workspaceID,
		Email:       input.Email,
		Role:        input.Role,
		Message:     input.Message,
		InvitedBy:   requester.ID,
		ExpiresAt:   time.Now().Add(s.ttl),
	}

	token, err := s.encryptor.SealJSON(inv)
	if err != nil {
		return "", fmt.Errorf("failed to seal invitation: %w", err)
	}

	acceptURL := fmt.Sprintf("%s/sign-up?__clerk_invitation_token=%s", s.baseURL, url.QueryEscape(token))

	mail := email.InvitationMail{
		To:            input.Email,
		WorkspaceName: workspace.Name,
		InviterName:   requester.Name,
		Message:       input.Message,
		AcceptURL:     acceptURL,
	}
	if s.sender != nil {
		if err := s.sender.SendInvitation(ctx, mail); err != nil {
			// The token is still returned; the caller may surface it directly.
			log.Error().Err(err).Str("to", input.Email).Msg("Failed to send invitation email")
		}
	}

	return token, nil
}

// Redeem opens an invitation token and adds the user to the workspace
func (s *InvitationService) Redeem(ctx context.Context, token string, userID uuid.UUID) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := s.encryptor.OpenJSON(token, &inv); err != nil {
		return nil, ErrInvitationInvalid
	}

	if inv.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}

	if !domain.ValidRole(inv.Role) || inv.Role == domain.RoleSuperAdmin {
		return nil, ErrInvitationInvalid
	}

	if err := s.workspaceRepo.AddMember(ctx, inv.WorkspaceID, userID, inv.Role); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return &inv, nil
}

// Peek opens an invitation token without redeeming it, so sign-up forms can
// prefill the invitee's email.
func (s *InvitationService) Peek(token string) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := s.encryptor.OpenJSON(token, &inv); err != nil {
		return nil, ErrInvitationInvalid
	}
	if inv.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}
	return &inv, nil
}
