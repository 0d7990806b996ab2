package workspace

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sanitize validates an untrusted workspace into a well-formed one. It is
// pure: the input is never mutated. Invalid leaves are dropped, one-sided
// splits collapse to the surviving side, tabs whose root empties out are
// dropped, and the active references are re-validated against what
// survived.
func Sanitize(input State) State {
	tabs := make([]Tab, 0, len(input.Tabs))
	for _, tab := range input.Tabs {
		root := SanitizeNode(tab.Root)
		if root == nil {
			continue
		}
		id := strings.TrimSpace(tab.ID)
		if id == "" {
			id = uuid.NewString()
		}
		title := truncate(tab.Title, maxTitleLength)
		if title == "" {
			title = fmt.Sprintf("Tab %d", len(tabs)+1)
		}
		tabs = append(tabs, Tab{ID: id, Title: title, Root: root})
	}

	activeTabID := strings.TrimSpace(input.ActiveTabID)
	if !hasTab(tabs, activeTabID) {
		activeTabID = ""
		if len(tabs) > 0 {
			activeTabID = tabs[0].ID
		}
	}

	return State{
		Tabs:             tabs,
		ActiveTabID:      activeTabID,
		ActiveTerminalID: strings.TrimSpace(input.ActiveTerminalID),
		ActiveLeaf:       sanitizeActiveLeaf(input.ActiveLeaf),
		UpdatedAt:        time.Now(),
	}
}

// SanitizeNode validates one subtree. Returns nil when nothing valid
// remains under it.
func SanitizeNode(node *Node) *Node {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case KindLeaf:
		return sanitizeLeaf(node)

	case KindSplit:
		direction := DirectionRow
		if node.Direction == DirectionColumn {
			direction = DirectionColumn
		}
		ratio := node.Ratio
		if ratio == 0 {
			ratio = defaultSplitRatio
		}
		if ratio < minSplitRatio {
			ratio = minSplitRatio
		}
		if ratio > maxSplitRatio {
			ratio = maxSplitRatio
		}
		a := SanitizeNode(node.A)
		b := SanitizeNode(node.B)
		switch {
		case a == nil && b == nil:
			return nil
		case a == nil:
			return b
		case b == nil:
			return a
		}
		return &Node{Kind: KindSplit, Direction: direction, Ratio: ratio, A: a, B: b}

	default:
		return nil
	}
}

func sanitizeLeaf(node *Node) *Node {
	leafType := strings.TrimSpace(node.Type)
	if leafType == "" {
		leafType = LeafTerminal
	}
	title := truncate(node.Title, maxTitleLength)

	switch leafType {
	case LeafTerminal:
		terminalID := strings.TrimSpace(node.TerminalID)
		if terminalID == "" {
			return nil
		}
		return &Node{Kind: KindLeaf, Type: LeafTerminal, TerminalID: terminalID, Title: title}

	case LeafWeb:
		target := sanitizeWebTarget(node.Web)
		if target == nil {
			return nil
		}
		return &Node{Kind: KindLeaf, Type: LeafWeb, Web: target, Title: title}

	case LeafBrowser:
		url := truncate(node.URL, maxURLLength)
		if url == "" {
			return nil
		}
		return &Node{Kind: KindLeaf, Type: LeafBrowser, URL: url, Title: title}

	default:
		return nil
	}
}

func sanitizeWebTarget(target *WebTarget) *WebTarget {
	if target == nil {
		return nil
	}
	if target.Port < 1 || target.Port > 65535 {
		return nil
	}
	path := truncate(target.Path, maxPathLength)
	if path == "" {
		path = "/"
	}
	return &WebTarget{Port: target.Port, Path: path}
}

func sanitizeActiveLeaf(leaf *ActiveLeaf) *ActiveLeaf {
	if leaf == nil {
		return nil
	}
	switch leaf.Type {
	case LeafTerminal:
		terminalID := strings.TrimSpace(leaf.TerminalID)
		if terminalID == "" {
			return nil
		}
		return &ActiveLeaf{Type: LeafTerminal, TerminalID: terminalID}

	case LeafWeb:
		target := sanitizeWebTarget(leaf.Web)
		if target == nil {
			return nil
		}
		return &ActiveLeaf{Type: LeafWeb, Web: target}

	case LeafBrowser:
		url := truncate(leaf.URL, maxURLLength)
		if url == "" {
			return nil
		}
		return &ActiveLeaf{Type: LeafBrowser, URL: url}

	default:
		return nil
	}
}

func hasTab(tabs []Tab, id string) bool {
	if id == "" {
		return false
	}
	for _, tab := range tabs {
		if tab.ID == id {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
