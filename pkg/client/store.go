package client

import (
	"context"
	"sync"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the single in-process source of truth for workspace, project,
// folder and task data. Every mutation goes through its method set; views
// never write fields directly. Stores are plain values meant to be
// constructed per session, not process-wide singletons.
//
// Lifecycle: UNINITIALIZED (loading=false, initialized=false) →
// LOADING (loading=true) → READY (initialized=true), reached on fetch
// success or failure alike.
//
// The current workspace is held as an id and resolved against the list on
// read, so the "current" view can never drift from the list view.
type Store struct {
	mu       sync.Mutex
	client   *Client
	settings Settings
	log      zerolog.Logger

	workspaces  []domain.Workspace
	currentID   uuid.UUID
	loading     bool
	initialized bool
	misses      uint64
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithSettings sets the persistence backend for the last-selected workspace
func WithSettings(s Settings) StoreOption {
	return func(st *Store) { st.settings = s }
}

// WithStoreLogger sets the diagnostic logger
func WithStoreLogger(log zerolog.Logger) StoreOption {
	return func(st *Store) { st.log = log }
}

// NewStore creates an empty store in the UNINITIALIZED state
func NewStore(c *Client, opts ...StoreOption) *Store {
	s := &Store{
		client:   c,
		settings: NewMemorySettings(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loading reports whether a fetch is in flight
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Initialized reports whether the first fetch has completed (either way)
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Misses counts silent no-ops: mutations referencing entities the store
// does not hold. A rising count means caller/server drift.
func (s *Store) Misses() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.misses
}

// Workspaces returns a copy of the workspace list. The copy is shallow:
// nested Projects, Folders and Tasks slices are shared with the store and
// must be treated as read-only. Mutate through the store's methods.
func (s *Store) Workspaces() []domain.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Workspace, len(s.workspaces))
	copy(out, s.workspaces)
	return out
}

// CurrentWorkspace resolves the current selection against the list. Returns
// nil when nothing is selected. The pointer aliases the store's internal
// state and must be treated as read-only; mutate through the store's
// methods.
func (s *Store) CurrentWorkspace() *domain.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findWorkspace(s.currentID)
}

// FetchWorkspaces loads the workspace list from the server and selects a
// current workspace: previously persisted id if still present, else the
// default-slug workspace, else the first entry, else none. A fetch failure
// leaves the data unchanged and is terminal for this call; the caller
// decides whether to re-invoke.
func (s *Store) FetchWorkspaces(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	workspaces, err := s.client.ListWorkspaces(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.initialized = true

	if err != nil {
		s.log.Warn().Err(err).Msg("Workspace fetch failed")
		return err
	}

	s.workspaces = workspaces
	s.currentID = s.pickCurrent()
	return nil
}

// pickCurrent applies the selection precedence. Caller holds the lock.
func (s *Store) pickCurrent() uuid.UUID {
	if len(s.workspaces) == 0 {
		return uuid.Nil
	}

	if persisted := s.settings.LastWorkspace(); persisted != "" {
		if id, err := uuid.Parse(persisted); err == nil && s.findWorkspace(id) != nil {
			return id
		}
	}

	for _, ws := range s.workspaces {
		if ws.Slug == domain.DefaultWorkspaceSlug {
			return ws.ID
		}
	}

	return s.workspaces[0].ID
}

// SetCurrentWorkspace selects a workspace by id and persists the choice.
// An id not in the list is a silent no-op.
func (s *Store) SetCurrentWorkspace(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findWorkspace(id) == nil {
		s.miss("set current workspace", id)
		return
	}

	s.currentID = id
	s.settings.SetLastWorkspace(id.String())
}

// AddWorkspace appends a workspace and makes it current
func (s *Store) AddWorkspace(ws domain.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaces = append(s.workspaces, ws)
	s.currentID = ws.ID
	s.settings.SetLastWorkspace(ws.ID.String())
}

// UpdateWorkspace replaces a workspace by id
func (s *Store) UpdateWorkspace(ws domain.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.workspaces {
		if s.workspaces[i].ID == ws.ID {
			s.workspaces[i] = ws
			return
		}
	}
	s.miss("update workspace", ws.ID)
}

// DeleteWorkspace removes a workspace by id. Deleting the current workspace
// reselects: default slug first, then the first remaining entry.
func (s *Store) DeleteWorkspace(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.workspaces {
		if s.workspaces[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.miss("delete workspace", id)
		return
	}

	s.workspaces = append(s.workspaces[:idx], s.workspaces[idx+1:]...)

	if s.currentID == id {
		s.currentID = s.pickCurrent()
		if s.currentID != uuid.Nil {
			s.settings.SetLastWorkspace(s.currentID.String())
		} else {
			s.settings.SetLastWorkspace("")
		}
	}
}

// AddProject appends a project to its workspace
func (s *Store) AddProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.findWorkspace(p.WorkspaceID)
	if ws == nil {
		s.miss("add project", p.WorkspaceID)
		return
	}
	ws.Projects = append(ws.Projects, p)
}

// UpdateProject replaces a project by id
func (s *Store) UpdateProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for wi := range s.workspaces {
		for pi := range s.workspaces[wi].Projects {
			if s.workspaces[wi].Projects[pi].ID == p.ID {
				s.workspaces[wi].Projects[pi] = p
				return
			}
		}
	}
	s.miss("update project", p.ID)
}

// DeleteProject removes a project by id
func (s *Store) DeleteProject(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for wi := range s.workspaces {
		projects := s.workspaces[wi].Projects
		for pi := range projects {
			if projects[pi].ID == id {
				s.workspaces[wi].Projects = append(projects[:pi], projects[pi+1:]...)
				return
			}
		}
	}
	s.miss("delete project", id)
}

// AddFolder appends a folder to its project
func (s *Store) AddFolder(f domain.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProject(f.ProjectID)
	if p == nil {
		s.miss("add folder", f.ProjectID)
		return
	}
	p.Folders = append(p.Folders, f)
	regroupFolders(p)
}

// UpdateFolder replaces a folder by id
func (s *Store) UpdateFolder(f domain.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProject(f.ProjectID)
	if p == nil {
		s.miss("update folder", f.ProjectID)
		return
	}
	for i := range p.Folders {
		if p.Folders[i].ID == f.ID {
			p.Folders[i] = f
			regroupFolders(p)
			return
		}
	}
	s.miss("update folder", f.ID)
}

// DeleteFolder removes a folder; its tasks stay in the project at the root
func (s *Store) DeleteFolder(projectID, folderID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProject(projectID)
	if p == nil {
		s.miss("delete folder", projectID)
		return
	}
	for i := range p.Folders {
		if p.Folders[i].ID == folderID {
			p.Folders = append(p.Folders[:i], p.Folders[i+1:]...)
			for ti := range p.Tasks {
				if p.Tasks[ti].FolderID != nil && *p.Tasks[ti].FolderID == folderID {
					p.Tasks[ti].FolderID = nil
				}
			}
			regroupFolders(p)
			return
		}
	}
	s.miss("delete folder", folderID)
}

// AddTask appends a task to its project
func (s *Store) AddTask(t domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProject(t.ProjectID)
	if p == nil {
		s.miss("add task", t.ProjectID)
		return
	}
	p.Tasks = append(p.Tasks, t)
	regroupFolders(p)
}

// UpdateTask replaces a task by id. An update older than the held copy
// (by UpdatedAt) is rejected: with concurrent writes in flight, responses
// can land out of order and a stale payload must not clobber a newer one.
func (s *Store) UpdateTask(t domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProject(t.ProjectID)
	if p == nil {
		s.miss("update task", t.ProjectID)
		return
	}
	for i := range p.Tasks {
		if p.Tasks[i].ID == t.ID {
			if p.Tasks[i].UpdatedAt.After(t.UpdatedAt) {
				s.misses++
				s.log.Debug().Str("task_id", t.ID.String()).Msg("Rejected stale task update")
				return
			}
			p.Tasks[i] = t
			regroupFolders(p)
			return
		}
	}
	s.miss("update task", t.ID)
}

// DeleteTasks removes every task whose id is listed, across all projects
func (s *Store) DeleteTasks(ids []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	for wi := range s.workspaces {
		for pi := range s.workspaces[wi].Projects {
			p := &s.workspaces[wi].Projects[pi]
			kept := p.Tasks[:0]
			for _, task := range p.Tasks {
				if !drop[task.ID] {
					kept = append(kept, task)
				}
			}
			if len(kept) != len(p.Tasks) {
				p.Tasks = kept
				regroupFolders(p)
			}
		}
	}
}

// Reset clears all state back to UNINITIALIZED (used on sign-out)
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaces = nil
	s.currentID = uuid.Nil
	s.loading = false
	s.initialized = false
	s.misses = 0
}

// findWorkspace returns the list entry with the given id. Caller holds the
// lock.
func (s *Store) findWorkspace(id uuid.UUID) *domain.Workspace {
	if id == uuid.Nil {
		return nil
	}
	for i := range s.workspaces {
		if s.workspaces[i].ID == id {
			return &s.workspaces[i]
		}
	}
	return nil
}

// findProject searches every workspace for a project. Caller holds the lock.
func (s *Store) findProject(id uuid.UUID) *domain.Project {
	for wi := range s.workspaces {
		for pi := range s.workspaces[wi].Projects {
			if s.workspaces[wi].Projects[pi].ID == id {
				return &s.workspaces[wi].Projects[pi]
			}
		}
	}
	return nil
}

// miss records a silent no-op. Caller holds the lock.
func (s *Store) miss(op string, id uuid.UUID) {
	s.misses++
	s.log.Debug().Str("op", op).Str("id", id.String()).Msg("Store miss")
}

// regroupFolders recomputes each folder's task view from the project task
// list, keeping the two views consistent after any task mutation
func regroupFolders(p *domain.Project) {
	for fi := range p.Folders {
		grouped := []domain.Task{}
		for _, task := range p.Tasks {
			if task.FolderID != nil && *task.FolderID == p.Folders[fi].ID {
				grouped = append(grouped, task)
			}
		}
		p.Folders[fi].Tasks = grouped
	}
}
