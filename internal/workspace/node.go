// Package workspace implements the pane-tree layout model: a binary tree
// of splits and session-referencing leaves, grouped into tabs. The model
// only stores references (terminal ids, proxy ports, browser URLs); it
// never owns sessions.
package workspace

import "time"

const (
	maxTitleLength = 120
	maxURLLength   = 2048
	maxPathLength  = 2048

	minSplitRatio     = 0.1
	maxSplitRatio     = 0.9
	defaultSplitRatio = 0.5
)

// Node kinds.
const (
	KindLeaf  = "leaf"
	KindSplit = "split"
)

// Leaf types.
const (
	LeafTerminal = "terminal"
	LeafWeb      = "web"
	LeafBrowser  = "browser"
)

// Split directions.
const (
	DirectionRow    = "row"
	DirectionColumn = "column"
)

// WebTarget addresses a proxied local service.
type WebTarget struct {
	Port int    `json:"port"`
	Path string `json:"path"`
}

// Node is one pane-tree node: either a session-referencing leaf or a
// two-way split. Fields irrelevant to the node's kind stay zero.
type Node struct {
	Kind string `json:"kind"`

	// Leaf fields. Type selects which address field applies.
	Type       string     `json:"type,omitempty"`
	Title      string     `json:"title,omitempty"`
	TerminalID string     `json:"terminalId,omitempty"`
	Web        *WebTarget `json:"web,omitempty"`
	URL        string     `json:"url,omitempty"`

	// Split fields.
	Direction string  `json:"direction,omitempty"`
	Ratio     float64 `json:"ratio,omitempty"`
	A         *Node   `json:"a,omitempty"`
	B         *Node   `json:"b,omitempty"`
}

// Tab is one workspace tab: a pane tree plus its title.
type Tab struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Root  *Node  `json:"root"`
}

// ActiveLeaf records which pane had focus, for restore.
type ActiveLeaf struct {
	Type       string     `json:"type"`
	TerminalID string     `json:"terminalId,omitempty"`
	Web        *WebTarget `json:"web,omitempty"`
	URL        string     `json:"url,omitempty"`
}

// State is the full persisted workspace.
type State struct {
	Tabs             []Tab       `json:"tabs"`
	ActiveTabID      string      `json:"activeTabId"`
	ActiveTerminalID string      `json:"activeTerminalId"`
	ActiveLeaf       *ActiveLeaf `json:"activeLeaf"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Empty returns a workspace with no tabs.
func Empty() State {
	return State{Tabs: []Tab{}, UpdatedAt: time.Now()}
}
