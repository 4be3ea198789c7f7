package executor

import (
	"sync"

	"mgit/internal/logging"
	"mgit/internal/repository"
)

// Manager is the operation surface the executor drives. The production
// implementation is RepoManager; tests substitute fakes.
type Manager interface {
	Pull(remote, branch string) error
	Push(remote, branch string, setUpstream bool) error
	Fetch(remote string) error
	Commit(message string, paths []string) error
	Sync(remote, branch string) error
	Init(path, initialBranch string) error
	Clone(url, targetPath string, opts repository.CloneOptions) error
	SetProgress(fn repository.ProgressFunc)
}

// RepoManager adapts a repository handle to the Manager interface and owns
// the application's notion of "the open repository". Init and Clone rebind
// the manager to the repository they produce.
type RepoManager struct {
	mu       sync.Mutex
	handle   *repository.Handle
	progress repository.ProgressFunc
	logger   *logging.AppLogger
}

// NewRepoManager creates a manager. The handle may be nil until an open,
// init, or clone provides one.
func NewRepoManager(handle *repository.Handle, logger *logging.AppLogger) *RepoManager {
	return &RepoManager{handle: handle, logger: logger}
}

// Handle returns the currently bound repository handle, or nil.
func (m *RepoManager) Handle() *repository.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// Bind replaces the current repository handle.
func (m *RepoManager) Bind(h *repository.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handle = h
	m.applyProgressLocked()
}

func (m *RepoManager) SetProgress(fn repository.ProgressFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = fn
	m.applyProgressLocked()
}

func (m *RepoManager) applyProgressLocked() {
	if m.handle != nil {
		m.handle.SetProgress(m.progress)
	}
}

// current returns the bound handle or a zero handle whose operations all
// fail with a NotARepository error.
func (m *RepoManager) current() *repository.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return &repository.Handle{}
	}
	return m.handle
}

func (m *RepoManager) Pull(remote, branch string) error {
	return m.current().Pull(remote, branch)
}

func (m *RepoManager) Push(remote, branch string, setUpstream bool) error {
	return m.current().Push(remote, branch, setUpstream)
}

func (m *RepoManager) Fetch(remote string) error {
	return m.current().Fetch(remote)
}

func (m *RepoManager) Commit(message string, paths []string) error {
	return m.current().Commit(message, paths)
}

func (m *RepoManager) Sync(remote, branch string) error {
	return m.current().SyncWithRemote(remote, branch)
}

func (m *RepoManager) Init(path, initialBranch string) error {
	h, err := repository.InitRepository(path, initialBranch, m.logger)
	if err != nil {
		return err
	}
	m.Bind(h)
	return nil
}

func (m *RepoManager) Clone(url, targetPath string, opts repository.CloneOptions) error {
	m.mu.Lock()
	opts.Progress = m.progress
	m.mu.Unlock()

	h, err := repository.CloneRepository(url, targetPath, opts, m.logger)
	if err != nil {
		return err
	}
	m.Bind(h)
	return nil
}
