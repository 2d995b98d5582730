package solver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/poker"
)

// ErrNoSuchNode is returned by Navigate when a path leaves the explored tree.
var ErrNoSuchNode = errors.New("no such node")

// HandRow is one hand's strategy at a decision node.
type HandRow struct {
	Hand     string    `json:"hand"`
	Category string    `json:"category"`
	Strategy []float64 `json:"strategy"`
	Average  []float64 `json:"average"`
	Visits   float64   `json:"visits"`
}

// NodeReport is a point in time view of a node for display. Strategy and
// Average columns follow Actions.
type NodeReport struct {
	Kind        string    `json:"kind"`
	Path        string    `json:"path"`
	Street      string    `json:"street"`
	Seat        int       `json:"seat"`
	Position    string    `json:"position,omitempty"`
	Actions     []string  `json:"actions,omitempty"`
	Hands       []HandRow `json:"hands,omitempty"`
	HandsSeen   int       `json:"hands_seen"`
	TotalVisits float64   `json:"total_visits"`
	Children    []string  `json:"children,omitempty"`
}

// Report summarises the node. Hands are ordered by visits, most visited
// first, and truncated to limit rows when limit is positive.
func (n *Node) Report(limit int) NodeReport {
	r := NodeReport{
		Kind:     n.kind.String(),
		Path:     n.PathString(),
		Street:   n.street,
		Seat:     n.seat,
		Position: n.Position(),
	}
	for _, c := range n.Children() {
		r.Children = append(r.Children, c.via)
	}
	if n.kind != KindDecision {
		return r
	}
	for _, a := range n.decision.actions {
		r.Actions = append(r.Actions, a.String())
	}

	type entry struct {
		hash poker.HandHash
		set  InfoSet
		avg  []float64
	}
	n.mu.RLock()
	entries := make([]entry, 0, len(n.decision.infoSets))
	for h, e := range n.decision.infoSets {
		entries = append(entries, entry{
			hash: h,
			set: InfoSet{
				Strategy: append([]float64(nil), e.Strategy...),
				Visits:   e.Visits,
			},
			avg: e.average(),
		})
	}
	n.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].set.Visits != entries[j].set.Visits {
			return entries[i].set.Visits > entries[j].set.Visits
		}
		return entries[i].hash < entries[j].hash
	})

	r.HandsSeen = len(entries)
	for _, e := range entries {
		r.TotalVisits += e.set.Visits
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	r.Hands = make([]HandRow, len(entries))
	for i, e := range entries {
		r.Hands[i] = HandRow{
			Hand:     e.hash.String(),
			Category: poker.CategorizeOmaha(poker.HandFromHash(e.hash)).String(),
			Strategy: e.set.Strategy,
			Average:  e.avg,
			Visits:   e.set.Visits,
		}
	}
	return r
}

// Navigate follows path from root. Decision edges are action names and
// chance edges are the four character deal, e.g. "Th2s".
func Navigate(root *Node, path []string) (*Node, error) {
	cur := root
	for i, label := range path {
		var next *Node
		switch cur.Kind() {
		case KindDecision:
			a, err := game.ParseAction(label)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			next = cur.Child(a)
		case KindChance:
			d, err := game.ParseDeal(label)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			next = cur.ChanceChild(d)
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %q at step %d below %s", ErrNoSuchNode, label, i, cur.PathString())
		}
		cur = next
	}
	return cur, nil
}
