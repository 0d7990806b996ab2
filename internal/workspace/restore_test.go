package workspace

import "testing"

func TestRestore_DropsVanishedTerminals(t *testing.T) {
	state := State{
		Tabs: []Tab{{
			ID:    "tab1",
			Title: "one",
			Root: &Node{
				Kind:  KindSplit,
				Ratio: 0.5,
				A:     terminalLeaf("running"),
				B:     terminalLeaf("gone"),
			},
		}},
		ActiveTabID: "tab1",
	}

	restored := Restore(state, map[string]bool{"running": true})

	if len(restored.Tabs) != 1 {
		t.Fatalf("expected 1 tab, got %d", len(restored.Tabs))
	}
	root := restored.Tabs[0].Root
	if root.Kind != KindLeaf || root.TerminalID != "running" {
		t.Fatalf("expected collapse to the running leaf, got %+v", root)
	}
}

func TestRestore_KeepsWebAndBrowserLeaves(t *testing.T) {
	state := State{
		Tabs: []Tab{{
			ID: "tab1",
			Root: &Node{
				Kind:  KindSplit,
				Ratio: 0.3,
				A:     &Node{Kind: KindLeaf, Type: LeafWeb, Web: &WebTarget{Port: 3000, Path: "/"}},
				B:     &Node{Kind: KindLeaf, Type: LeafBrowser, URL: "https://example.com"},
			},
		}},
		ActiveTabID: "tab1",
	}

	restored := Restore(state, map[string]bool{})

	root := restored.Tabs[0].Root
	if root == nil || root.Kind != KindSplit {
		t.Fatalf("web and browser leaves must survive restore, got %+v", root)
	}
}

func TestRestore_DropsEmptyTabs(t *testing.T) {
	state := State{
		Tabs: []Tab{
			{ID: "tab1", Root: terminalLeaf("gone")},
			{ID: "tab2", Root: terminalLeaf("running")},
		},
		ActiveTabID:      "tab1",
		ActiveTerminalID: "gone",
		ActiveLeaf:       &ActiveLeaf{Type: LeafTerminal, TerminalID: "gone"},
	}

	restored := Restore(state, map[string]bool{"running": true})

	if len(restored.Tabs) != 1 || restored.Tabs[0].ID != "tab2" {
		t.Fatalf("expected only tab2 to survive, got %+v", restored.Tabs)
	}
	if restored.ActiveTabID != "tab2" {
		t.Errorf("expected active tab fallback to tab2, got %q", restored.ActiveTabID)
	}
	if restored.ActiveTerminalID != "" {
		t.Errorf("expected vanished active terminal cleared, got %q", restored.ActiveTerminalID)
	}
	if restored.ActiveLeaf != nil {
		t.Errorf("expected vanished active leaf cleared, got %+v", restored.ActiveLeaf)
	}
}

func TestRestore_AllGoneYieldsEmpty(t *testing.T) {
	state := State{
		Tabs:        []Tab{{ID: "tab1", Root: terminalLeaf("gone")}},
		ActiveTabID: "tab1",
	}

	restored := Restore(state, nil)

	if len(restored.Tabs) != 0 {
		t.Fatalf("expected no tabs, got %d", len(restored.Tabs))
	}
	if restored.ActiveTabID != "" {
		t.Fatalf("expected empty active tab id, got %q", restored.ActiveTabID)
	}
}

func TestRestore_DoesNotMutateInput(t *testing.T) {
	root := &Node{Kind: KindSplit, Ratio: 0.5, A: terminalLeaf("a"), B: terminalLeaf("b")}
	state := State{Tabs: []Tab{{ID: "tab1", Root: root}}}

	Restore(state, map[string]bool{"a": true})

	if root.B == nil || root.B.TerminalID != "b" {
		t.Fatalf("restore mutated its input")
	}
}
