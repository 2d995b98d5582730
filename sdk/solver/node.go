package solver

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/poker"
)

// Kind discriminates the two node variants.
type Kind uint8

const (
	KindDecision Kind = iota
	KindChance
)

func (k Kind) String() string {
	switch k {
	case KindDecision:
		return "decision"
	case KindChance:
		return "chance"
	default:
		return "unknown"
	}
}

// Node is a vertex of the persistent game tree. A decision node stores one
// InfoSet per hand seen by the seat to act and a child per action taken. A
// chance node stores one decision child per pair of cards dealt to the two
// boards.
//
// Only the solver worker mutates a node. Readers such as the inspector take
// the read lock and see whatever the last completed update left behind.
type Node struct {
	kind   Kind
	parent *Node
	via    string // edge label from the parent, empty at the root
	seat   int    // seat to act, -1 on chance nodes
	seats  int
	street string

	mu       sync.RWMutex
	decision *decisionPayload
	chance   *chancePayload
}

type decisionPayload struct {
	actions  []game.Action
	infoSets map[poker.HandHash]*InfoSet
	children map[game.Action]*Node
}

type chancePayload struct {
	children map[game.Deal]*Node
}

// newDecision creates a decision node for the seat next to act in state. The
// legal action set is fixed at creation.
func newDecision(parent *Node, via string, state *game.State) *Node {
	return &Node{
		kind:   KindDecision,
		parent: parent,
		via:    via,
		seat:   state.NextToAct(),
		seats:  state.NumSeats(),
		street: state.Street(),
		decision: &decisionPayload{
			actions:  state.LegalActions(),
			infoSets: make(map[poker.HandHash]*InfoSet),
			children: make(map[game.Action]*Node),
		},
	}
}

func newChance(parent *Node, via string, state *game.State) *Node {
	return &Node{
		kind:   KindChance,
		parent: parent,
		via:    via,
		seat:   -1,
		seats:  state.NumSeats(),
		street: state.Street(),
		chance: &chancePayload{children: make(map[game.Deal]*Node)},
	}
}

// Kind reports whether the node is a decision or a chance node.
func (n *Node) Kind() Kind { return n.kind }

// Parent returns the parent node, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Seat returns the seat to act, or -1 for chance nodes.
func (n *Node) Seat() int { return n.seat }

// Via returns the action or deal that led from the parent to this node.
func (n *Node) Via() string { return n.via }

// Street names the betting round the node belongs to.
func (n *Node) Street() string { return n.street }

// Position returns the table position label of the seat to act.
func (n *Node) Position() string {
	if n.kind != KindDecision {
		return ""
	}
	return game.PositionLabel(n.seat, n.seats)
}

// Actions returns the legal actions of a decision node.
func (n *Node) Actions() []game.Action {
	if n.kind != KindDecision {
		return nil
	}
	return slices.Clone(n.decision.actions)
}

// Path lists the edge labels from the root to this node.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		path = append(path, cur.via)
	}
	slices.Reverse(path)
	return path
}

// PathString renders Path joined with slashes, or "root".
func (n *Node) PathString() string {
	path := n.Path()
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, "/")
}

func (n *Node) actionIndex(a game.Action) int {
	return slices.Index(n.decision.actions, a)
}

func (n *Node) uniformProbs() []game.ActionProb {
	p := 1.0 / float64(len(n.decision.actions))
	out := make([]game.ActionProb, len(n.decision.actions))
	for i, a := range n.decision.actions {
		out[i] = game.ActionProb{Action: a, Prob: p}
	}
	return out
}

func (n *Node) probs(values []float64) []game.ActionProb {
	out := make([]game.ActionProb, len(values))
	for i, v := range values {
		out[i] = game.ActionProb{Action: n.decision.actions[i], Prob: v}
	}
	return out
}

// Strategy returns the current strategy of hash at this node, creating a
// uniform entry the first time the hand is seen.
func (n *Node) Strategy(hash poker.HandHash) []game.ActionProb {
	if n.kind != KindDecision {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.probs(n.infoSet(hash).Strategy)
}

func (n *Node) infoSet(hash poker.HandHash) *InfoSet {
	e, ok := n.decision.infoSets[hash]
	if !ok {
		e = newInfoSet(len(n.decision.actions))
		n.decision.infoSets[hash] = e
	}
	return e
}

// CurrentStrategy is the read only form of Strategy used by observers. An
// unseen hand reports the uniform distribution without being recorded.
func (n *Node) CurrentStrategy(hash poker.HandHash) []game.ActionProb {
	if n.kind != KindDecision {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if e, ok := n.decision.infoSets[hash]; ok {
		return n.probs(e.Strategy)
	}
	return n.uniformProbs()
}

// AverageStrategy returns the reach weighted average strategy of hash,
// uniform when nothing has accumulated yet.
func (n *Node) AverageStrategy(hash poker.HandHash) []game.ActionProb {
	if n.kind != KindDecision {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if e, ok := n.decision.infoSets[hash]; ok {
		return n.probs(e.average())
	}
	return n.uniformProbs()
}

// Visits returns the accumulated reach probability of hash at this node.
func (n *Node) Visits(hash poker.HandHash) float64 {
	if n.kind != KindDecision {
		return 0
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if e, ok := n.decision.infoSets[hash]; ok {
		return e.Visits
	}
	return 0
}

// Update records the sampled utilities of the seat to act holding hash.
// Actions missing from actionEV count as zero.
func (n *Node) Update(actionEV map[game.Action]float64, hash poker.HandHash, reach float64) error {
	if n.kind != KindDecision {
		return fmt.Errorf("%w: update on %s node", game.ErrInvariant, n.kind)
	}
	ev := make([]float64, len(n.decision.actions))
	for a, v := range actionEV {
		i := n.actionIndex(a)
		if i < 0 {
			return fmt.Errorf("%w: %s is not legal at %s", game.ErrInvariant, a, n.PathString())
		}
		ev[i] = v
	}
	n.mu.Lock()
	n.infoSet(hash).update(ev, reach)
	n.mu.Unlock()
	return nil
}

// child returns the node reached by taking action from this decision node,
// creating it from the post-action state on first use.
func (n *Node) child(action game.Action, state *game.State) (*Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.decision.children[action]; ok {
		return c, false
	}
	var c *Node
	if state.EndOfAction() {
		c = newChance(n, action.String(), state)
	} else {
		c = newDecision(n, action.String(), state)
	}
	n.decision.children[action] = c
	return c, true
}

// childFor returns the decision subtree for deal, creating it on first use.
func (n *Node) childFor(deal game.Deal, state *game.State) (*Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.chance.children[deal]; ok {
		return c, false
	}
	c := newDecision(n, deal.String(), state)
	n.chance.children[deal] = c
	return c, true
}

// Child returns the existing child for action, or nil.
func (n *Node) Child(action game.Action) *Node {
	if n.kind != KindDecision {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.decision.children[action]
}

// ChanceChild returns the existing child for deal, or nil.
func (n *Node) ChanceChild(deal game.Deal) *Node {
	if n.kind != KindChance {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.chance.children[deal]
}

// Children returns the existing children ordered by action, or by deal label
// for chance nodes.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []*Node
	switch n.kind {
	case KindDecision:
		for _, a := range n.decision.actions {
			if c, ok := n.decision.children[a]; ok {
				out = append(out, c)
			}
		}
	case KindChance:
		for _, c := range n.chance.children {
			out = append(out, c)
		}
		slices.SortFunc(out, func(a, b *Node) int { return strings.Compare(a.via, b.via) })
	}
	return out
}

// NumChildren returns how many children exist.
func (n *Node) NumChildren() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.kind == KindDecision {
		return len(n.decision.children)
	}
	return len(n.chance.children)
}

// Hands returns the hashes of every hand with an info set at this node.
func (n *Node) Hands() []poker.HandHash {
	if n.kind != KindDecision {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]poker.HandHash, 0, len(n.decision.infoSets))
	for h := range n.decision.infoSets {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}
