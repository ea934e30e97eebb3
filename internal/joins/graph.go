// Package joins derives the joins that connect a query's selected tables to its FROM
// table and holds the user's edits to each join.
//
// The graph is a star rooted at the from-table: every join target is matched against a
// field of the from-table, never against another joined table, so there are no cycles to
// detect. Conditions between two joined tables are not modelled.
package joins

import (
	"slices"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
)

// Graph holds one join per selected table other than the from-table, in the order the
// tables were added to the selection
type Graph struct {
	from  string
	joins []Join
}

// NewGraph returns an empty graph with no from-table
func NewGraph() *Graph {
	return &Graph{}
}

// From returns the current from-table, or "" before the first Recompute
func (g *Graph) From() string {
	return g.from
}

// Recompute aligns the graph with the included tables. Joins whose target is still
// included keep their edits, newly included tables get a blank join appended, and joins
// for excluded tables are dropped. Choosing a different from-table starts over.
// Calling it again with the same inputs leaves the graph unchanged.
func (g *Graph) Recompute(from string, included []string) []Join {
	if from != g.from {
		g.from = from
		g.joins = nil
	}

	keep := make(map[string]bool, len(included))
	for _, t := range included {
		if t != from {
			keep[t] = true
		}
	}

	g.joins = slices.DeleteFunc(g.joins, func(j Join) bool {
		return !keep[j.Target]
	})

	for _, t := range included {
		if !keep[t] || g.index(t) >= 0 {
			continue
		}

		g.joins = append(g.joins, Join{Target: t})
	}

	return g.Joins()
}

// Joins returns a copy of the joins in display order
func (g *Graph) Joins() []Join {
	return slices.Clone(g.joins)
}

// Join returns the join for target
func (g *Graph) Join(target string) (Join, bool) {
	if i := g.index(target); i >= 0 {
		return g.joins[i], true
	}

	return Join{}, false
}

// Reset drops the from-table and every join
func (g *Graph) Reset() {
	g.from = ""
	g.joins = nil
}

// SetJoinType sets the join type of the join for target
func (g *Graph) SetJoinType(target string, joinType JoinType) error {
	i, err := g.lookup(target)
	if err != nil {
		return err
	}

	if joinType != Unset && !slices.Contains(JoinTypes, joinType) {
		return errors.Newf(errors.ErrTypeValidation, "unknown join type %q", joinType)
	}

	g.joins[i].Type = joinType

	return nil
}

// SetMatch sets the ON condition of the join for target. The right field must belong to
// target and the left field to the from-table.
func (g *Graph) SetMatch(target string, left catalog.FieldRef, op Operator, right catalog.FieldRef) error {
	i, err := g.lookup(target)
	if err != nil {
		return err
	}

	if !slices.Contains(Operators, op) {
		return errors.Newf(errors.ErrTypeValidation, "unknown operator %q", op)
	}

	if right.Table != target {
		return errors.Newf(errors.ErrTypeValidation,
			"right field %s of the join to %s must belong to %s", right, target, target)
	}

	if left.Table != g.from {
		return errors.Newf(errors.ErrTypeValidation,
			"left field %s of the join to %s must belong to the from-table %s", left, target, g.from)
	}

	g.joins[i].Left = left
	g.joins[i].Operator = op
	g.joins[i].Right = right

	return nil
}

func (g *Graph) lookup(target string) (int, error) {
	i := g.index(target)
	if i < 0 {
		return -1, errors.Newf(errors.ErrTypeNotFound, "no join for table %s", target).
			WithSuggestion("Select the table and reopen the join view")
	}

	return i, nil
}

func (g *Graph) index(target string) int {
	return slices.IndexFunc(g.joins, func(j Join) bool { return j.Target == target })
}
