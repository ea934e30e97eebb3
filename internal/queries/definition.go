// Package queries persists query-builder state as named YAML definitions so a query
// can be rebuilt and rerun later.
package queries

import (
	"regexp"
	"slices"
	"time"

	"github.com/kyleking/sqlitegui/internal/catalog"
	"github.com/kyleking/sqlitegui/internal/errors"
	"github.com/kyleking/sqlitegui/internal/joins"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Definition is a saved query: the selected tables and fields, the from-table and
// every join edit
type Definition struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	From        string           `yaml:"from"`
	Tables      []TableSelection `yaml:"tables"`
	Joins       []JoinDefinition `yaml:"joins,omitempty"`
	SavedAt     time.Time        `yaml:"saved_at,omitempty"`
}

// TableSelection is one selected table and its fields in selection order
type TableSelection struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

// JoinDefinition is a join in its textual form. Left and Right are "table.field".
// Unset parts are empty so half-edited joins survive a round trip.
type JoinDefinition struct {
	Target   string         `yaml:"target"`
	Type     joins.JoinType `yaml:"type,omitempty"`
	Left     string         `yaml:"left,omitempty"`
	Operator joins.Operator `yaml:"operator,omitempty"`
	Right    string         `yaml:"right,omitempty"`
}

// ValidateName checks that name can be used as a saved query name and file name
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return errors.Newf(errors.ErrTypeValidation, "invalid query name %q", name).
			WithSuggestion("Use up to 64 letters, digits, '-' or '_', starting with a letter or digit")
	}

	return nil
}

// Validate checks the definition's structure. Identifiers are checked against the
// schema only when the definition is applied to a session.
func (d *Definition) Validate() error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}

	if len(d.Tables) == 0 {
		return errors.Newf(errors.ErrTypeValidation, "query %s selects no tables", d.Name)
	}

	names := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		if t.Name == "" {
			return errors.Newf(errors.ErrTypeValidation, "query %s has a table without a name", d.Name)
		}

		if slices.Contains(names, t.Name) {
			return errors.Newf(errors.ErrTypeValidation, "query %s lists table %s twice", d.Name, t.Name)
		}

		names = append(names, t.Name)
	}

	if d.From != "" && !slices.Contains(names, d.From) {
		return errors.Newf(errors.ErrTypeValidation, "from-table %s of query %s is not among its tables", d.From, d.Name)
	}

	for _, j := range d.Joins {
		if _, err := j.Join(); err != nil {
			return errors.Wrapf(err, errors.ErrTypeValidation, "query %s has an invalid join to %s", d.Name, j.Target)
		}
	}

	return nil
}

// Join converts the textual join into a joins.Join
func (jd JoinDefinition) Join() (joins.Join, error) {
	j := joins.Join{Target: jd.Target}

	if jd.Target == "" {
		return j, errors.New(errors.ErrTypeValidation, "join has no target table")
	}

	if jd.Type != joins.Unset {
		jt, err := joins.ParseJoinType(string(jd.Type))
		if err != nil {
			return j, err
		}

		j.Type = jt
	}

	if jd.Operator != joins.NoOperator {
		op, err := joins.ParseOperator(string(jd.Operator))
		if err != nil {
			return j, err
		}

		j.Operator = op
	}

	var err error

	if jd.Left != "" {
		if j.Left, err = catalog.ParseFieldRef(jd.Left); err != nil {
			return j, err
		}
	}

	if jd.Right != "" {
		if j.Right, err = catalog.ParseFieldRef(jd.Right); err != nil {
			return j, err
		}
	}

	return j, nil
}

// FromJoin converts a join into its textual form
func FromJoin(j joins.Join) JoinDefinition {
	jd := JoinDefinition{Target: j.Target, Type: j.Type, Operator: j.Operator}

	if !j.Left.IsZero() {
		jd.Left = j.Left.String()
	}

	if !j.Right.IsZero() {
		jd.Right = j.Right.String()
	}

	return jd
}
