package service

import (
	"context"
	"testing"

	"github.com/burnsbros/taskdeck/internal/config"
	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newWorkspaceService(ws *MockWorkspaceRepository, pr *MockProjectRepository, tr *MockTaskRepository) *WorkspaceService {
	return NewWorkspaceService(ws, pr, tr, nil, config.WorkspaceConfig{
		DefaultName: "The Burns Brothers",
		MaxPerUser:  3,
	})
}

func TestWorkspaceService_EnsureDefault(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns existing workspace without creating", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		mockPr := new(MockProjectRepository)
		mockTr := new(MockTaskRepository)
		svc := newWorkspaceService(mockWs, mockPr, mockTr)

		existing := &domain.Workspace{
			ID:      uuid.New(),
			Name:    "The Burns Brothers",
			Slug:    domain.DefaultWorkspaceSlug,
			OwnerID: userID,
		}
		mockWs.On("GetByOwnerAndSlug", ctx, userID, domain.DefaultWorkspaceSlug).Return(existing, nil)
		mockWs.On("GetByID", ctx, existing.ID).Return(existing, nil)
		mockPr.On("ListByWorkspace", ctx, existing.ID).Return([]domain.Project{}, nil)

		got, err := svc.EnsureDefault(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, got.ID)
		mockWs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates default workspace when missing", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		mockPr := new(MockProjectRepository)
		mockTr := new(MockTaskRepository)
		svc := newWorkspaceService(mockWs, mockPr, mockTr)

		mockWs.On("GetByOwnerAndSlug", ctx, userID, domain.DefaultWorkspaceSlug).Return(nil, nil)
		mockWs.On("Create", ctx, mock.AnythingOfType("*domain.Workspace")).Return(nil)
		mockWs.On("AddMember", ctx, mock.AnythingOfType("uuid.UUID"), userID, domain.RoleSuperAdmin).Return(nil)
		mockWs.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).Return(&domain.Workspace{
			ID:      uuid.New(),
			Name:    "The Burns Brothers",
			Slug:    domain.DefaultWorkspaceSlug,
			OwnerID: userID,
		}, nil)
		mockPr.On("ListByWorkspace", ctx, mock.AnythingOfType("uuid.UUID")).Return([]domain.Project{}, nil)

		got, err := svc.EnsureDefault(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, domain.DefaultWorkspaceSlug, got.Slug)
		assert.Equal(t, "The Burns Brothers", got.Name)
		mockWs.AssertExpectations(t)
	})
}

func TestWorkspaceService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("rejects creation at the limit", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := newWorkspaceService(mockWs, new(MockProjectRepository), new(MockTaskRepository))

		mockWs.On("CountByOwner", ctx, userID).Return(3, nil)

		_, err := svc.Create(ctx, userID, domain.WorkspaceCreate{Name: "Fourth"})
		assert.ErrorIs(t, err, ErrWorkspaceLimit)
		mockWs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("suffixes slug on per-owner collision", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		mockPr := new(MockProjectRepository)
		svc := newWorkspaceService(mockWs, mockPr, new(MockTaskRepository))

		taken := &domain.Workspace{ID: uuid.New(), Slug: "side-project"}
		mockWs.On("CountByOwner", ctx, userID).Return(1, nil)
		mockWs.On("GetByOwnerAndSlug", ctx, userID, "side-project").Return(taken, nil)
		mockWs.On("GetByOwnerAndSlug", ctx, userID, "side-project-2").Return(nil, nil)
		mockWs.On("Create", ctx, mock.AnythingOfType("*domain.Workspace")).Run(func(args mock.Arguments) {
			ws := args.Get(1).(*domain.Workspace)
			assert.Equal(t, "side-project-2", ws.Slug)
		}).Return(nil)
		mockWs.On("AddMember", ctx, mock.AnythingOfType("uuid.UUID"), userID, domain.RoleSuperAdmin).Return(nil)
		mockWs.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).Return(&domain.Workspace{
			ID: uuid.New(), Slug: "side-project-2", OwnerID: userID,
		}, nil)
		mockPr.On("ListByWorkspace", ctx, mock.AnythingOfType("uuid.UUID")).Return([]domain.Project{}, nil)

		got, err := svc.Create(ctx, userID, domain.WorkspaceCreate{Name: "Side Project"})
		assert.NoError(t, err)
		assert.Equal(t, "side-project-2", got.Slug)
		mockWs.AssertExpectations(t)
	})
}

func TestWorkspaceService_Limits(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("capped quota", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := newWorkspaceService(mockWs, new(MockProjectRepository), new(MockTaskRepository))
		mockWs.On("CountByOwner", ctx, userID).Return(2, nil)

		limits, err := svc.Limits(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, 2, limits.CurrentWorkspaces)
		assert.Equal(t, 3, limits.MaxWorkspaces)
		assert.True(t, limits.CanCreateMore)
		assert.False(t, limits.CanCreateUnlimited)
	})

	t.Run("unlimited when no cap configured", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := NewWorkspaceService(mockWs, new(MockProjectRepository), new(MockTaskRepository), nil,
			config.WorkspaceConfig{DefaultName: "The Burns Brothers", MaxPerUser: 0})
		mockWs.On("CountByOwner", ctx, userID).Return(42, nil)

		limits, err := svc.Limits(ctx, userID)
		assert.NoError(t, err)
		assert.True(t, limits.CanCreateMore)
		assert.True(t, limits.CanCreateUnlimited)
	})
}

func TestWorkspaceService_RemoveMember(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	adminID := uuid.New()
	memberID := uuid.New()
	workspaceID := uuid.New()

	workspace := &domain.Workspace{ID: workspaceID, OwnerID: ownerID}

	t.Run("owner cannot be removed", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := newWorkspaceService(mockWs, new(MockProjectRepository), new(MockTaskRepository))

		mockWs.On("GetMemberRole", ctx, workspaceID, adminID).Return(domain.RoleAdmin, nil)
		mockWs.On("GetByID", ctx, workspaceID).Return(workspace, nil)

		err := svc.RemoveMember(ctx, adminID, workspaceID, ownerID)
		assert.ErrorIs(t, err, ErrCannotRemoveOwner)
		mockWs.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("plain member cannot remove", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := newWorkspaceService(mockWs, new(MockProjectRepository), new(MockTaskRepository))

		mockWs.On("GetMemberRole", ctx, workspaceID, memberID).Return(domain.RoleMember, nil)

		err := svc.RemoveMember(ctx, memberID, workspaceID, adminID)
		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("non-member denied", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := newWorkspaceService(mockWs, new(MockProjectRepository), new(MockTaskRepository))

		mockWs.On("GetMemberRole", ctx, workspaceID, memberID).Return("", nil)

		err := svc.RemoveMember(ctx, memberID, workspaceID, adminID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("admin removes a member", func(t *testing.T) {
		mockWs := new(MockWorkspaceRepository)
		svc := newWorkspaceService(mockWs, new(MockProjectRepository), new(MockTaskRepository))

		mockWs.On("GetMemberRole", ctx, workspaceID, adminID).Return(domain.RoleAdmin, nil)
		mockWs.On("GetByID", ctx, workspaceID).Return(workspace, nil)
		mockWs.On("RemoveMember", ctx, workspaceID, memberID).Return(nil)

		err := svc.RemoveMember(ctx, adminID, workspaceID, memberID)
		assert.NoError(t, err)
		mockWs.AssertExpectations(t)
	})
}

func TestWorkspaceService_HydrateGroupsTasksByFolder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	workspaceID := uuid.New()
	projectID := uuid.New()
	folderID := uuid.New()

	rootTask := domain.Task{ID: uuid.New(), ProjectID: projectID}
	folderTask := domain.Task{ID: uuid.New(), ProjectID: projectID, FolderID: &folderID}

	mockWs := new(MockWorkspaceRepository)
	mockPr := new(MockProjectRepository)
	mockTr := new(MockTaskRepository)
	svc := newWorkspaceService(mockWs, mockPr, mockTr)

	mockWs.On("ListByUserID", ctx, userID).Return([]domain.Workspace{{ID: workspaceID, OwnerID: userID}}, nil)
	mockPr.On("ListByWorkspace", ctx, workspaceID).Return([]domain.Project{{ID: projectID, WorkspaceID: workspaceID}}, nil)
	mockPr.On("ListFolders", ctx, projectID).Return([]domain.Folder{{ID: folderID, ProjectID: projectID}}, nil)
	mockTr.On("ListByProject", ctx, projectID).Return([]domain.Task{rootTask, folderTask}, nil)

	workspaces, err := svc.ListByUser(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, workspaces, 1)

	project := workspaces[0].Projects[0]
	// The project view carries every task; the folder view only its own.
	assert.Len(t, project.Tasks, 2)
	assert.Len(t, project.Folders, 1)
	assert.Len(t, project.Folders[0].Tasks, 1)
	assert.Equal(t, folderTask.ID, project.Folders[0].Tasks[0].ID)
}
