package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// HandleFile is the handle database inside the daemon workspace.
const HandleFile = "handles.json"

var handleIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateHandleID rejects ids that are unsafe as directory names.
func ValidateHandleID(id string) error {
	if !handleIDPattern.MatchString(id) {
		return errUtils.Usagef("invalid handle id [%s]: use letters, digits, dot, dash and underscore", id)
	}
	return nil
}

// Handle is a container the daemon manages under a client chosen id. The
// descriptor it was started with is kept so it can be restarted later.
type Handle struct {
	ID          string `json:"id"`
	ContainerID string `json:"containerId"`
	Descriptor  string `json:"descriptor"`
	Autostart   bool   `json:"autostart"`
	LogPath     string `json:"logPath,omitempty"`

	// ForceStop is set by an explicit stop and keeps autostart away until
	// the next start. It is not persisted.
	ForceStop bool `json:"-"`

	container container.Controllable
}

// State returns the container state. A handle without a live container
// counts as stopped.
func (h *Handle) State() models.State {
	if h.container == nil {
		return models.StateStopped
	}
	return h.container.State()
}

// Status is the public view of a handle.
type Status struct {
	ID          string       `json:"id"`
	ContainerID string       `json:"containerId"`
	State       models.State `json:"state"`
	Autostart   bool         `json:"autostart"`
	ForceStop   bool         `json:"forceStop"`
	LogPath     string       `json:"logPath,omitempty"`
}

func (h *Handle) status() Status {
	return Status{
		ID:          h.ID,
		ContainerID: h.ContainerID,
		State:       h.State(),
		Autostart:   h.Autostart,
		ForceStop:   h.ForceStop,
		LogPath:     h.LogPath,
	}
}

// HandleDB holds the handles and persists them to a JSON file. Writes are
// atomic so a crash never leaves a truncated database behind.
type HandleDB struct {
	mu      sync.RWMutex
	path    string
	handles map[string]*Handle
}

// OpenHandleDB loads the database at path. A missing file is an empty database.
func OpenHandleDB(path string) (*HandleDB, error) {
	db := &HandleDB{path: path, handles: make(map[string]*Handle)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return nil, errUtils.Wrapf(err, errUtils.ErrConfiguration, "cannot read handle database %s", path)
	}

	var stored []*Handle
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrConfiguration, "corrupt handle database %s", path)
	}
	for _, h := range stored {
		db.handles[h.ID] = h
	}
	return db, nil
}

// Get returns the handle with id or nil.
func (db *HandleDB) Get(id string) *Handle {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.handles[id]
}

// Put adds or replaces a handle.
func (db *HandleDB) Put(h *Handle) {
	db.mu.Lock()
	db.handles[h.ID] = h
	db.mu.Unlock()
}

// Remove drops a handle.
func (db *HandleDB) Remove(id string) {
	db.mu.Lock()
	delete(db.handles, id)
	db.mu.Unlock()
}

// List returns every handle sorted by id.
func (db *HandleDB) List() []*Handle {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]*Handle, 0, len(db.handles))
	for _, h := range db.handles {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Save writes the database.
func (db *HandleDB) Save() error {
	data, err := json.MarshalIndent(db.List(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "cannot create %s", filepath.Dir(db.path))
	}
	if err := renameio.WriteFile(db.path, data, 0o644); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "cannot write handle database %s", db.path)
	}
	return nil
}
