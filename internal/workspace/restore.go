package workspace

import "time"

// Restore re-attaches a persisted workspace to the sessions that are
// actually running. Terminal leaves whose session is gone are dropped
// silently; web and browser leaves carry enough addressing to be recreated
// client-side, so they always survive. Tabs whose root empties out are
// dropped entirely, and active references to vanished terminals are
// cleared. Pure: the input is never mutated.
func Restore(state State, runningTerminals map[string]bool) State {
	tabs := make([]Tab, 0, len(state.Tabs))
	for _, tab := range state.Tabs {
		root := restoreNode(tab.Root, runningTerminals)
		if root == nil {
			continue
		}
		tabs = append(tabs, Tab{ID: tab.ID, Title: tab.Title, Root: root})
	}

	activeTabID := state.ActiveTabID
	if !hasTab(tabs, activeTabID) {
		activeTabID = ""
		if len(tabs) > 0 {
			activeTabID = tabs[0].ID
		}
	}

	activeTerminalID := state.ActiveTerminalID
	if activeTerminalID != "" && !runningTerminals[activeTerminalID] {
		activeTerminalID = ""
	}

	activeLeaf := state.ActiveLeaf
	if activeLeaf != nil && activeLeaf.Type == LeafTerminal && !runningTerminals[activeLeaf.TerminalID] {
		activeLeaf = nil
	}

	return State{
		Tabs:             tabs,
		ActiveTabID:      activeTabID,
		ActiveTerminalID: activeTerminalID,
		ActiveLeaf:       activeLeaf,
		UpdatedAt:        time.Now(),
	}
}

func restoreNode(node *Node, runningTerminals map[string]bool) *Node {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case KindLeaf:
		if node.Type == LeafTerminal && !runningTerminals[node.TerminalID] {
			return nil
		}
		copied := *node
		return &copied

	case KindSplit:
		a := restoreNode(node.A, runningTerminals)
		b := restoreNode(node.B, runningTerminals)
		switch {
		case a == nil && b == nil:
			return nil
		case a == nil:
			return b
		case b == nil:
			return a
		}
		return &Node{Kind: KindSplit, Direction: node.Direction, Ratio: node.Ratio, A: a, B: b}

	default:
		return nil
	}
}
