// Package progress persists wizard snapshots so a partially completed form
// can be resumed. Stores are injected into the wizard; nothing here reaches
// for process-wide state.
package progress

import (
	"context"
	"slices"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/field"
)

const (
	// WizardNamespace prefixes snapshot keys of step wizards.
	WizardNamespace = "stepApplicationFormMeta"
	// FormNamespace prefixes snapshot keys of single-page forms.
	FormNamespace = "applicationFormMeta"
)

// Key builds the storage key "<namespace>-<instanceKey>".
func Key(namespace, instanceKey string) string {
	return namespace + "-" + instanceKey
}

// Snapshot is the persisted progress of one form instance.
type Snapshot struct {
	Values         field.Values `json:"formData"`
	CurrentStep    int          `json:"currentStep"`
	CompletedSteps []int        `json:"completedSteps"`
}

// Clone returns a copy that shares nothing mutable with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{CurrentStep: s.CurrentStep}
	if s.Values != nil {
		out.Values = s.Values.Clone()
	}
	if s.CompletedSteps != nil {
		out.CompletedSteps = slices.Clone(s.CompletedSteps)
	}
	return out
}

// Store is the persistence port used by the wizard. Restore reports
// ok=false with a nil error for an unknown key.
type Store interface {
	Save(ctx context.Context, key string, snap Snapshot) error
	Restore(ctx context.Context, key string) (Snapshot, bool, error)
	Clear(ctx context.Context, key string) error
}

// Memory is an in-process Store, mainly for tests.
type Memory struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]Snapshot)}
}

func (m *Memory) Save(ctx context.Context, key string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap.Clone()
	return nil
}

func (m *Memory) Restore(ctx context.Context, key string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[key]
	if !ok {
		return Snapshot{}, false, nil
	}
	return snap.Clone(), true, nil
}

func (m *Memory) Clear(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

// Len returns the number of stored snapshots.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}
