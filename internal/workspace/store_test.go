package workspace

import (
	"errors"
	"testing"

	"github.com/web-terminal-gateway/backend/internal/logging"
)

type fakeRepo struct {
	state   State
	has     bool
	saveErr error
	saves   int
}

func (r *fakeRepo) Load() (State, bool, error) { return r.state, r.has, nil }

func (r *fakeRepo) Save(state State) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.state = state
	r.has = true
	return nil
}

func TestNewStoreStartsEmpty(t *testing.T) {
	store, err := NewStore(&fakeRepo{}, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Current().Tabs) != 0 {
		t.Fatalf("expected empty workspace")
	}
}

func TestNewStoreSanitizesPersistedState(t *testing.T) {
	repo := &fakeRepo{
		has: true,
		state: State{
			Tabs: []Tab{
				{ID: "tab1", Root: terminalLeaf("t1")},
				{ID: "tab2", Root: &Node{Kind: "junk"}},
			},
		},
	}

	store, err := NewStore(repo, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Current().Tabs) != 1 {
		t.Fatalf("expected persisted junk tab to be dropped")
	}
}

func TestReplaceSanitizesAndPersists(t *testing.T) {
	repo := &fakeRepo{}
	store, _ := NewStore(repo, logging.NewNop())

	accepted := store.Replace(State{
		Tabs: []Tab{{ID: "tab1", Root: &Node{
			Kind:  KindSplit,
			Ratio: 0.5,
			A:     terminalLeaf("t1"),
			B:     &Node{Kind: KindLeaf, Type: LeafTerminal},
		}}},
	})

	if accepted.Tabs[0].Root.Kind != KindLeaf {
		t.Fatalf("expected one-sided split collapsed before persisting")
	}
	if repo.saves != 1 {
		t.Fatalf("expected 1 save, got %d", repo.saves)
	}
}

func TestReplaceSurvivesPersistFailure(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("disk full")}
	store, _ := NewStore(repo, logging.NewNop())

	store.Replace(State{Tabs: []Tab{{ID: "tab1", Root: terminalLeaf("t1")}}})

	// The in-memory state moved on even though persistence failed.
	if len(store.Current().Tabs) != 1 {
		t.Fatalf("expected in-memory state to update despite persist failure")
	}
}

func TestRestoredAppliesRunningSet(t *testing.T) {
	store, _ := NewStore(&fakeRepo{}, logging.NewNop())
	store.Replace(State{Tabs: []Tab{
		{ID: "tab1", Root: terminalLeaf("running")},
		{ID: "tab2", Root: terminalLeaf("gone")},
	}})

	restored := store.Restored(map[string]bool{"running": true})
	if len(restored.Tabs) != 1 || restored.Tabs[0].ID != "tab1" {
		t.Fatalf("expected only the running tab, got %+v", restored.Tabs)
	}
}
