// Package workspace persists a named collection of datasets on disk. A
// workspace is a directory holding a workspace.json registry; datasets stay
// where they are and the registry keeps a summary of each.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/popstat-cli/internal/dataset"
	"github.com/KaramelBytes/popstat-cli/internal/table"
	"github.com/KaramelBytes/popstat-cli/internal/utils"
)

const workspaceFileName = "workspace.json"

// Workspace represents a dataset registry persisted on disk.
type Workspace struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Datasets    map[string]*Dataset `json:"datasets"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Not serialized: on-disk location of the workspace.json
	rootDir string `json:"-"`
}

// Dataset records one registered dataset with a cached shape summary.
type Dataset struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	EntityCol   string    `json:"entity_column,omitempty"`
	TimeCol     string    `json:"time_column,omitempty"`
	ValueCol    string    `json:"value_column,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// New constructs an in-memory workspace. Call Save() to persist.
func New(name, description, rootDir string) *Workspace {
	return &Workspace{
		Name:        name,
		Description: description,
		Datasets:    make(map[string]*Dataset),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// Load reads a workspace.json from the provided directory.
func Load(dir string) (*Workspace, error) {
	path := filepath.Join(dir, workspaceFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	w.rootDir = dir
	return &w, nil
}

// RootDir returns the on-disk workspace directory path.
func (w *Workspace) RootDir() string { return w.rootDir }

// Save writes workspace.json using atomic write.
func (w *Workspace) Save() error {
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	if err := utils.EnsureDir(w.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	w.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(w)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(w.rootDir, workspaceFileName), data)
}

// AddDataset loads path to validate it, resolves its schema, and registers
// it under a fresh ID. The loaded table is returned alongside the entry so
// callers can keep analyzing it.
func (w *Workspace) AddDataset(path, description string, opts dataset.Options, cand table.Candidates) (*Dataset, *table.Table, error) {
	t, err := dataset.Load(path, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}
	schema := table.ResolveSchema(t, cand)

	d := &Dataset{
		ID:          uuid.NewString(),
		Path:        path,
		Name:        filepath.Base(path),
		Description: description,
		Rows:        t.NumRows(),
		Columns:     t.Columns(),
		EntityCol:   schema.Entity,
		TimeCol:     schema.Time,
		ValueCol:    schema.Value,
		AddedAt:     time.Now(),
	}
	if w.Datasets == nil {
		w.Datasets = make(map[string]*Dataset)
	}
	w.Datasets[d.ID] = d
	w.UpdatedAt = time.Now()
	return d, t, nil
}

// Find returns a dataset by ID or, failing that, by name.
func (w *Workspace) Find(ref string) (*Dataset, bool) {
	if d, ok := w.Datasets[ref]; ok {
		return d, true
	}
	for _, d := range w.Datasets {
		if d.Name == ref {
			return d, true
		}
	}
	return nil, false
}

// Sorted returns the registered datasets ordered by name, then ID.
func (w *Workspace) Sorted() []*Dataset {
	out := make([]*Dataset, 0, len(w.Datasets))
	for _, d := range w.Datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
