package joins

import (
	"strings"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
)

// JoinType is the kind of SQL join. The zero value means the user has not picked one.
type JoinType string

const (
	Unset     JoinType = ""
	Inner     JoinType = "INNER"
	Left      JoinType = "LEFT"
	Right     JoinType = "RIGHT"
	FullOuter JoinType = "FULL OUTER"
)

// JoinTypes lists the selectable join types in menu order
var JoinTypes = []JoinType{Inner, Left, Right, FullOuter}

// ParseJoinType parses a join type name case-insensitively. "full", "full_outer" and
// "full outer" all name FullOuter.
func ParseJoinType(s string) (JoinType, error) {
	switch strings.Join(strings.Fields(strings.ToUpper(strings.ReplaceAll(s, "_", " "))), " ") {
	case "INNER":
		return Inner, nil
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	case "FULL", "FULL OUTER":
		return FullOuter, nil
	default:
		return Unset, errors.Newf(errors.ErrTypeValidation, "unknown join type %q (expected INNER, LEFT, RIGHT or FULL OUTER)", s)
	}
}

// Operator compares the left and right fields of a join condition
type Operator string

const (
	NoOperator Operator = ""
	Less       Operator = "<"
	Greater    Operator = ">"
	Equal      Operator = "="
)

// Operators lists the selectable operators
var Operators = []Operator{Less, Greater, Equal}

// ParseOperator parses one of <, > or =
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.TrimSpace(s)); op {
	case Less, Greater, Equal:
		return op, nil
	default:
		return NoOperator, errors.Newf(errors.ErrTypeValidation, "unknown operator %q (expected <, > or =)", s)
	}
}

// Join connects the from-table to Target with ON Left Operator Right
type Join struct {
	Target   string           `json:"target"`
	Type     JoinType         `json:"type"`
	Left     catalog.FieldRef `json:"left"`
	Operator Operator         `json:"operator"`
	Right    catalog.FieldRef `json:"right"`
}

// Missing names the first part of the join the user has not set yet, or "" when the
// join is complete
func (j Join) Missing() string {
	switch {
	case j.Type == Unset:
		return "join type"
	case j.Left.IsZero():
		return "left field"
	case j.Operator == NoOperator:
		return "operator"
	case j.Right.IsZero():
		return "right field"
	default:
		return ""
	}
}

// Complete reports whether every part of the join is set
func (j Join) Complete() bool {
	return j.Missing() == ""
}

// Condition renders "left op right", or "" for an incomplete join
func (j Join) Condition() string {
	if j.Left.IsZero() || j.Operator == NoOperator || j.Right.IsZero() {
		return ""
	}

	return j.Left.String() + " " + string(j.Operator) + " " + j.Right.String()
}
