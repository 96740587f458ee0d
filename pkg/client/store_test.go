package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// workspaceServer serves a fixed workspace list in the API envelope
func workspaceServer(t *testing.T, workspaces []domain.Workspace) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workspaces" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"workspaces": workspaces},
		})
	}))
}

func TestStore_FetchSelectsDefaultSlug(t *testing.T) {
	a := domain.Workspace{ID: uuid.New(), Slug: "foo"}
	b := domain.Workspace{ID: uuid.New(), Slug: domain.DefaultWorkspaceSlug}
	srv := workspaceServer(t, []domain.Workspace{a, b})
	defer srv.Close()

	store := NewStore(New(srv.URL))

	assert.False(t, store.Initialized())
	err := store.FetchWorkspaces(context.Background())
	assert.NoError(t, err)

	assert.True(t, store.Initialized())
	assert.False(t, store.Loading())
	current := store.CurrentWorkspace()
	assert.NotNil(t, current)
	assert.Equal(t, b.ID, current.ID)
}

func TestStore_FetchPrefersPersistedSelection(t *testing.T) {
	a := domain.Workspace{ID: uuid.New(), Slug: "foo"}
	b := domain.Workspace{ID: uuid.New(), Slug: domain.DefaultWorkspaceSlug}
	srv := workspaceServer(t, []domain.Workspace{a, b})
	defer srv.Close()

	settings := NewMemorySettings()
	settings.SetLastWorkspace(a.ID.String())

	store := NewStore(New(srv.URL), WithSettings(settings))
	assert.NoError(t, store.FetchWorkspaces(context.Background()))

	current := store.CurrentWorkspace()
	assert.NotNil(t, current)
	assert.Equal(t, a.ID, current.ID)
}

func TestStore_FetchFallsBackToFirst(t *testing.T) {
	a := domain.Workspace{ID: uuid.New(), Slug: "foo"}
	b := domain.Workspace{ID: uuid.New(), Slug: "bar"}
	srv := workspaceServer(t, []domain.Workspace{a, b})
	defer srv.Close()

	store := NewStore(New(srv.URL))
	assert.NoError(t, store.FetchWorkspaces(context.Background()))

	assert.Equal(t, a.ID, store.CurrentWorkspace().ID)
}

func TestStore_FetchEmptyList(t *testing.T) {
	srv := workspaceServer(t, []domain.Workspace{})
	defer srv.Close()

	store := NewStore(New(srv.URL))
	assert.NoError(t, store.FetchWorkspaces(context.Background()))

	assert.True(t, store.Initialized())
	assert.False(t, store.Loading())
	assert.Nil(t, store.CurrentWorkspace())
}

func TestStore_FetchFailureLeavesStateUnchanged(t *testing.T) {
	a := domain.Workspace{ID: uuid.New(), Slug: "foo"}
	srv := workspaceServer(t, []domain.Workspace{a})
	defer srv.Close()

	store := NewStore(New(srv.URL))
	assert.NoError(t, store.FetchWorkspaces(context.Background()))
	assert.Len(t, store.Workspaces(), 1)

	srv.Close()
	err := store.FetchWorkspaces(context.Background())
	assert.Error(t, err)

	// Terminal for the call: READY, data intact.
	assert.True(t, store.Initialized())
	assert.False(t, store.Loading())
	assert.Len(t, store.Workspaces(), 1)
	assert.Equal(t, a.ID, store.CurrentWorkspace().ID)
}

func TestStore_SetCurrentWorkspaceIdempotent(t *testing.T) {
	a := domain.Workspace{ID: uuid.New(), Slug: "foo"}
	b := domain.Workspace{ID: uuid.New(), Slug: "bar"}

	store := NewStore(nil)
	store.AddWorkspace(a)
	store.AddWorkspace(b)

	store.SetCurrentWorkspace(a.ID)
	first := store.CurrentWorkspace()
	store.SetCurrentWorkspace(a.ID)
	second := store.CurrentWorkspace()

	assert.Equal(t, first, second)
	assert.Equal(t, a.ID, second.ID)
}

func TestStore_SetCurrentWorkspaceMiss(t *testing.T) {
	store := NewStore(nil)
	store.AddWorkspace(domain.Workspace{ID: uuid.New()})

	before := store.CurrentWorkspace().ID
	store.SetCurrentWorkspace(uuid.New())

	assert.Equal(t, before, store.CurrentWorkspace().ID)
	assert.Equal(t, uint64(1), store.Misses())
}

func TestStore_AddWorkspaceBecomesCurrent(t *testing.T) {
	store := NewStore(nil)

	ws := domain.Workspace{ID: uuid.New(), Name: "Acme", Projects: []domain.Project{}}
	store.AddWorkspace(ws)

	assert.Len(t, store.Workspaces(), 1)
	current := store.CurrentWorkspace()
	assert.NotNil(t, current)
	assert.Equal(t, ws.ID, current.ID)
	assert.Equal(t, "Acme", current.Name)
}

func TestStore_DeleteWorkspaceReselects(t *testing.T) {
	a := domain.Workspace{ID: uuid.New(), Slug: "foo"}
	b := domain.Workspace{ID: uuid.New(), Slug: domain.DefaultWorkspaceSlug}

	store := NewStore(nil)
	store.AddWorkspace(a)
	store.AddWorkspace(b)
	store.SetCurrentWorkspace(a.ID)

	store.DeleteWorkspace(a.ID)

	// The default-slug workspace takes over the selection.
	current := store.CurrentWorkspace()
	assert.NotNil(t, current)
	assert.Equal(t, b.ID, current.ID)

	store.DeleteWorkspace(b.ID)
	assert.Nil(t, store.CurrentWorkspace())
}

func TestStore_DualViewConsistency(t *testing.T) {
	wsID := uuid.New()
	projectID := uuid.New()

	store := NewStore(nil)
	store.AddWorkspace(domain.Workspace{ID: wsID, Projects: []domain.Project{}})
	store.AddProject(domain.Project{ID: projectID, WorkspaceID: wsID})

	task := domain.Task{ID: uuid.New(), ProjectID: projectID, Title: "One"}
	store.AddTask(task)

	fromCurrent := store.CurrentWorkspace().Projects[0].Tasks
	var fromList []domain.Task
	for _, ws := range store.Workspaces() {
		if ws.ID == wsID {
			fromList = ws.Projects[0].Tasks
		}
	}

	assert.Equal(t, fromCurrent, fromList)
	assert.Len(t, fromCurrent, 1)
}

func TestStore_BulkDeleteTasks(t *testing.T) {
	wsID := uuid.New()
	projectID := uuid.New()
	t1 := domain.Task{ID: uuid.New(), ProjectID: projectID, Title: "t1"}
	t2 := domain.Task{ID: uuid.New(), ProjectID: projectID, Title: "t2"}
	t3 := domain.Task{ID: uuid.New(), ProjectID: projectID, Title: "t3"}

	store := NewStore(nil)
	store.AddWorkspace(domain.Workspace{ID: wsID})
	store.AddProject(domain.Project{ID: projectID, WorkspaceID: wsID})
	store.AddTask(t1)
	store.AddTask(t2)
	store.AddTask(t3)

	store.DeleteTasks([]uuid.UUID{t1.ID, t3.ID})

	tasks := store.CurrentWorkspace().Projects[0].Tasks
	assert.Len(t, tasks, 1)
	assert.Equal(t, t2.ID, tasks[0].ID)
}

func TestStore_UpdateTaskRejectsStale(t *testing.T) {
	wsID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()
	now := time.Now()

	store := NewStore(nil)
	store.AddWorkspace(domain.Workspace{ID: wsID})
	store.AddProject(domain.Project{ID: projectID, WorkspaceID: wsID})
	store.AddTask(domain.Task{ID: taskID, ProjectID: projectID, Title: "current", UpdatedAt: now})

	// A response from an earlier write landing late must not clobber.
	store.UpdateTask(domain.Task{ID: taskID, ProjectID: projectID, Title: "stale", UpdatedAt: now.Add(-time.Minute)})
	assert.Equal(t, "current", store.CurrentWorkspace().Projects[0].Tasks[0].Title)
	assert.Equal(t, uint64(1), store.Misses())

	store.UpdateTask(domain.Task{ID: taskID, ProjectID: projectID, Title: "newer", UpdatedAt: now.Add(time.Minute)})
	assert.Equal(t, "newer", store.CurrentWorkspace().Projects[0].Tasks[0].Title)
}

func TestStore_TaskMutationMissesAreSilent(t *testing.T) {
	store := NewStore(nil)
	store.AddWorkspace(domain.Workspace{ID: uuid.New()})

	// Unknown project: no panic, just a counted no-op.
	store.AddTask(domain.Task{ID: uuid.New(), ProjectID: uuid.New()})
	store.UpdateTask(domain.Task{ID: uuid.New(), ProjectID: uuid.New()})
	store.DeleteProject(uuid.New())

	assert.Equal(t, uint64(3), store.Misses())
}

func TestStore_FolderGrouping(t *testing.T) {
	wsID := uuid.New()
	projectID := uuid.New()
	folderID := uuid.New()

	store := NewStore(nil)
	store.AddWorkspace(domain.Workspace{ID: wsID})
	store.AddProject(domain.Project{ID: projectID, WorkspaceID: wsID})
	store.AddFolder(domain.Folder{ID: folderID, ProjectID: projectID, Name: "Sprint 1"})

	inFolder := domain.Task{ID: uuid.New(), ProjectID: projectID, FolderID: &folderID}
	atRoot := domain.Task{ID: uuid.New(), ProjectID: projectID}
	store.AddTask(inFolder)
	store.AddTask(atRoot)

	project := store.CurrentWorkspace().Projects[0]
	assert.Len(t, project.Tasks, 2)
	assert.Len(t, project.Folders[0].Tasks, 1)
	assert.Equal(t, inFolder.ID, project.Folders[0].Tasks[0].ID)

	// Deleting the folder moves its task to the project root.
	store.DeleteFolder(projectID, folderID)
	project = store.CurrentWorkspace().Projects[0]
	assert.Len(t, project.Folders, 0)
	assert.Len(t, project.Tasks, 2)
	for _, task := range project.Tasks {
		assert.Nil(t, task.FolderID)
	}
}

func TestStore_Reset(t *testing.T) {
	store := NewStore(nil)
	store.AddWorkspace(domain.Workspace{ID: uuid.New()})
	store.SetCurrentWorkspace(uuid.New()) // one miss

	store.Reset()

	assert.False(t, store.Initialized())
	assert.False(t, store.Loading())
	assert.Len(t, store.Workspaces(), 0)
	assert.Nil(t, store.CurrentWorkspace())
	assert.Equal(t, uint64(0), store.Misses())
}
