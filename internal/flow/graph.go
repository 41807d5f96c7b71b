// Package flow implements a small named-node/transition interpreter used to
// sequence onboarding and survey-style conversations. The current node name
// is persisted through a caller-supplied store, so a restarted process
// resumes exactly where the user left off.
package flow

import (
	"context"
	"errors"
	"fmt"
)

// End is the terminal marker: a transition mapping to End finishes the
// conversation and clears the persisted node.
const End = ""

// Outcome is a handler-returned key selecting the next transition.
type Outcome string

// Stay tells the graph to remain on the current node without re-running
// enter hooks (used for invalid input that should be re-prompted).
const Stay Outcome = "__stay__"

var (
	ErrUnknownNode       = errors.New("unknown node")
	ErrUnknownTransition = errors.New("unknown transition")
	ErrNoEntryNode       = errors.New("no entry node configured")
)

// Event is one inbound chat event routed through the graph.
type Event struct {
	UserID int64
	Text   string
	Data   string // callback payload, empty for plain messages
}

// Handler processes an event on a node and returns the outcome key.
type Handler func(ctx context.Context, ev Event) (Outcome, error)

// Hook runs on node entry or exit.
type Hook func(ctx context.Context, ev Event) error

// Node is a single named state with its transition map.
type Node struct {
	Name        string
	Handler     Handler
	Transitions map[Outcome]string
	OnEnter     Hook
	OnExit      Hook
}

// NodeStore persists the current node name per user.
type NodeStore interface {
	SetCurrentNode(ctx context.Context, userID int64, node string) error
}

// Graph is a directed conversation graph. Nodes are registered once at
// startup; Advance is safe for concurrent use across users.
type Graph struct {
	nodes map[string]*Node
	entry string
	store NodeStore
}

// New creates an empty graph backed by the given node store.
func New(store NodeStore) *Graph {
	return &Graph{nodes: make(map[string]*Node), store: store}
}

// Add registers a node. Duplicate names overwrite, last one wins.
func (g *Graph) Add(n *Node) { g.nodes[n.Name] = n }

// SetEntry designates the node new conversations start on.
func (g *Graph) SetEntry(name string) error {
	if _, ok := g.nodes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	g.entry = name
	return nil
}

// Entry returns the designated entry node name.
func (g *Graph) Entry() string { return g.entry }

// Has reports whether a node with the given name is registered.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Advance runs one step: invoke the current node's handler, look the
// outcome up in the transition map, fire exit/enter hooks, persist and
// return the new node name. current=="" means a fresh conversation
// starting at the entry node. Loops are never implicit; a node repeats
// only via an explicit self-transition or the Stay outcome.
func (g *Graph) Advance(ctx context.Context, current string, ev Event) (string, error) {
	if current == "" {
		if g.entry == "" {
			return "", ErrNoEntryNode
		}
		current = g.entry
	}
	node, ok := g.nodes[current]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, current)
	}

	outcome, err := node.Handler(ctx, ev)
	if err != nil {
		return current, err
	}
	if outcome == Stay {
		return current, nil
	}

	nextName, ok := node.Transitions[outcome]
	if !ok {
		return current, fmt.Errorf("%w: %s -> %q", ErrUnknownTransition, current, outcome)
	}

	if node.OnExit != nil {
		if err := node.OnExit(ctx, ev); err != nil {
			return current, err
		}
	}

	if err := g.store.SetCurrentNode(ctx, ev.UserID, nextName); err != nil {
		return current, err
	}

	if nextName == End {
		return End, nil
	}
	next := g.nodes[nextName]
	if next == nil {
		return current, fmt.Errorf("%w: %s", ErrUnknownNode, nextName)
	}
	if next.OnEnter != nil {
		if err := next.OnEnter(ctx, ev); err != nil {
			return nextName, err
		}
	}
	return nextName, nil
}
