package service

import (
	"context"
	"testing"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/burnsbros/taskdeck/internal/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func testJWTManager() *security.JWTManager {
	return security.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func testEncryptor(t *testing.T) *security.Encryptor {
	t.Helper()
	enc, err := security.NewEncryptor(security.KeyFromSecret("test-secret"))
	assert.NoError(t, err)
	return enc
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("plain sign-up", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		svc := NewAuthService(mockUsers, nil, testJWTManager())

		mockUsers.On("EmailExists", ctx, "alice@example.com").Return(false, nil)
		mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		result, err := svc.Register(ctx, domain.UserCreate{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "hunter22",
		})
		assert.NoError(t, err)
		assert.False(t, result.InvitationAccepted)
		assert.Equal(t, "alice@example.com", result.User.Email)
		assert.NotEqual(t, "hunter22", result.User.PasswordHash)
		mockUsers.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		svc := NewAuthService(mockUsers, nil, testJWTManager())

		mockUsers.On("EmailExists", ctx, "alice@example.com").Return(true, nil)

		_, err := svc.Register(ctx, domain.UserCreate{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "hunter22",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
		mockUsers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("valid invitation token joins the workspace", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockWs := new(MockWorkspaceRepository)
		enc := testEncryptor(t)

		invitations := NewInvitationService(mockWs, enc, nil, 7*24*time.Hour, "https://app.example.com")
		svc := NewAuthService(mockUsers, invitations, testJWTManager())

		workspaceID := uuid.New()
		token, err := enc.SealJSON(domain.Invitation{
			WorkspaceID: workspaceID,
			Email:       "bob@example.com",
			Role:        domain.RoleMember,
			InvitedBy:   uuid.New(),
			ExpiresAt:   time.Now().Add(time.Hour),
		})
		assert.NoError(t, err)

		mockUsers.On("EmailExists", ctx, "bob@example.com").Return(false, nil)
		mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
		mockWs.On("AddMember", ctx, workspaceID, mock.AnythingOfType("uuid.UUID"), domain.RoleMember).Return(nil)

		result, err := svc.Register(ctx, domain.UserCreate{
			Name:            "Bob",
			Email:           "bob@example.com",
			Password:        "hunter22",
			InvitationToken: token,
		})
		assert.NoError(t, err)
		assert.True(t, result.InvitationAccepted)
		mockWs.AssertExpectations(t)
	})

	t.Run("garbage invitation token falls back to plain sign-up", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockWs := new(MockWorkspaceRepository)

		invitations := NewInvitationService(mockWs, testEncryptor(t), nil, 7*24*time.Hour, "https://app.example.com")
		svc := NewAuthService(mockUsers, invitations, testJWTManager())

		mockUsers.On("EmailExists", ctx, "bob@example.com").Return(false, nil)
		mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		result, err := svc.Register(ctx, domain.UserCreate{
			Name:            "Bob",
			Email:           "bob@example.com",
			Password:        "hunter22",
			InvitationToken: "not-a-token",
		})
		assert.NoError(t, err)
		assert.False(t, result.InvitationAccepted)
		mockWs.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}

	t.Run("success", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		svc := NewAuthService(mockUsers, nil, testJWTManager())

		mockUsers.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)

		pair, err := svc.Login(ctx, domain.UserLogin{Email: "alice@example.com", Password: "hunter22"})
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		svc := NewAuthService(mockUsers, nil, testJWTManager())

		mockUsers.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)

		_, err := svc.Login(ctx, domain.UserLogin{Email: "alice@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		svc := NewAuthService(mockUsers, nil, testJWTManager())

		mockUsers.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)

		_, err := svc.Login(ctx, domain.UserLogin{Email: "nobody@example.com", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestInvitationService_Invite(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	requester := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	t.Run("member cannot invite", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := NewInvitationService(mockWs, testEncryptor(t), nil, 7*24*time.Hour, "https://app.example.com")

		mockWs.On("GetMemberRole", ctx, workspaceID, requester.ID).Return(domain.RoleMember, nil)

		_, err := svc.Invite(ctx, requester, workspaceID, domain.MemberInvite{
			Email: "bob@example.com",
			Role:  domain.RoleMember,
		})
		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("admin invite seals a redeemable token", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		mockSender := new(MockEmailSender)
		enc := testEncryptor(t)
		svc := NewInvitationService(mockWs, enc, mockSender, 7*24*time.Hour, "https://app.example.com")

		mockWs.On("GetMemberRole", ctx, workspaceID, requester.ID).Return(domain.RoleSuperAdmin, nil)
		mockWs.On("GetByID", ctx, workspaceID).Return(&domain.Workspace{ID: workspaceID, Name: "The Burns Brothers"}, nil)
		mockSender.On("SendInvitation", mock.Anything, mock.AnythingOfType("email.InvitationMail")).Return(nil)

		token, err := svc.Invite(ctx, requester, workspaceID, domain.MemberInvite{
			Email: "bob@example.com",
			Role:  domain.RoleMember,
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		inv, err := svc.Peek(token)
		assert.NoError(t, err)
		assert.Equal(t, workspaceID, inv.WorkspaceID)
		assert.Equal(t, "bob@example.com", inv.Email)
		assert.Equal(t, domain.RoleMember, inv.Role)
		mockSender.AssertExpectations(t)
	})

	t.Run("expired token cannot be redeemed", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		enc := testEncryptor(t)
		svc := NewInvitationService(mockWs, enc, nil, 7*24*time.Hour, "https://app.example.com")

		token, err := enc.SealJSON(domain.Invitation{
			WorkspaceID: workspaceID,
			Email:       "bob@example.com",
			Role:        domain.RoleMember,
			ExpiresAt:   time.Now().Add(-time.Hour),
		})
		assert.NoError(t, err)

		_, err = svc.Redeem(ctx, token, uuid.New())
		assert.ErrorIs(t, err, ErrInvitationExpired)
		mockWs.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
