package query

import (
	"strings"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// JoinType represents the type of SQL join used to reach a source
type JoinType int

const (
	// LeftOuterJoin keeps rows with no related record
	LeftOuterJoin JoinType = iota
	// InnerJoin drops rows with no related record
	InnerJoin
)

// String returns the SQL keyword for the join type
func (j JoinType) String() string {
	switch j {
	case InnerJoin:
		return "JOIN"
	default:
		return "LEFT JOIN"
	}
}

// JoinField is one equality predicate of a join's ON clause
type JoinField struct {
	FromField QueryField
	ToField   QueryField
}

// Join links a source to one of its related sources
type Join struct {
	FromSource *Source
	ToSource   *Source
	JoinFields []JoinField
	Type       JoinType
}

// NewJoin creates a join with no join fields
func NewJoin(from, to *Source) *Join {
	return &Join{
		FromSource: from,
		ToSource:   to,
		JoinFields: make([]JoinField, 0),
		Type:       LeftOuterJoin,
	}
}

// AddJoinField adds an ON clause predicate
func (j *Join) AddJoinField(from, to QueryField) *Join {
	j.JoinFields = append(j.JoinFields, JoinField{FromField: from, ToField: to})
	return j
}

// Source is a named data origin, usually a table, with joins to related
// sources. Only the first join is followed when a source is read as a path;
// further joins are siblings added by merging several paths.
type Source struct {
	Name       string
	EntityName string
	Joins      []*Join
}

// NewSource creates a source whose entity name equals its name
func NewSource(name string) *Source {
	return NewSourceWithEntity(name, name)
}

// NewSourceWithEntity creates a source with an explicit entity (table) name
func NewSourceWithEntity(name, entityName string) *Source {
	if entityName == "" {
		entityName = name
	}
	return &Source{
		Name:       name,
		EntityName: entityName,
		Joins:      make([]*Join, 0),
	}
}

// SourceFromString parses a dotted relationship path such as
// "Manager.Department" into a chain of sources linked by empty joins.
// It returns nil for an empty path.
func SourceFromString(path string) *Source {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	parts := strings.Split(path, ".")
	root := NewSource(strings.TrimSpace(parts[0]))
	current := root
	for _, part := range parts[1:] {
		child := NewSource(strings.TrimSpace(part))
		current.Joins = append(current.Joins, NewJoin(current, child))
		current = child
	}
	return root
}

// ChildSource returns the target of the first join, or nil for a leaf
func (s *Source) ChildSource() *Source {
	if s == nil || len(s.Joins) == 0 {
		return nil
	}
	return s.Joins[0].ToSource
}

// ChildSourceLeaf follows the first-join chain to its last source
func (s *Source) ChildSourceLeaf() *Source {
	current := s
	for current.ChildSource() != nil {
		current = current.ChildSource()
	}
	return current
}

// Equals compares sources by name only. Two paths that start at the same
// named source can therefore be merged whatever their entities or joins.
func (s *Source) Equals(other *Source) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Name == other.Name
}

// Key returns the map key for the source, consistent with Equals
func (s *Source) Key() string {
	return s.Name
}

// JoinToSource joins this source to toSource unless a join to a source of the
// same name already exists. It returns the join that targets toSource.
func (s *Source) JoinToSource(toSource *Source) *Join {
	if existing := s.findJoin(toSource); existing != nil {
		return existing
	}
	join := NewJoin(s, toSource)
	s.Joins = append(s.Joins, join)
	return join
}

func (s *Source) findJoin(toSource *Source) *Join {
	for _, join := range s.Joins {
		if join.ToSource.Equals(toSource) {
			return join
		}
	}
	return nil
}

// MergeWith unions the join chains of other into this source. Both sources
// must have the same name. Joins that already exist are reused, so merging
// two paths that share a prefix produces a single tree.
func (s *Source) MergeWith(other *Source) error {
	if other == nil {
		return nil
	}
	if !s.Equals(other) {
		return ormerrors.NewDeveloper(
			"an error occurred while building the query",
			"cannot merge source '"+other.Name+"' into source '"+s.Name+"': sources must share the same root",
		)
	}

	for _, otherJoin := range other.Joins {
		target := s.findJoin(otherJoin.ToSource)
		if target == nil {
			to := otherJoin.ToSource
			target = NewJoin(s, NewSourceWithEntity(to.Name, to.EntityName))
			target.Type = otherJoin.Type
			target.JoinFields = append(target.JoinFields, otherJoin.JoinFields...)
			s.Joins = append(s.Joins, target)
		}
		if err := target.ToSource.MergeWith(otherJoin.ToSource); err != nil {
			return err
		}
	}
	return nil
}

// String renders the first-join path in the form accepted by SourceFromString
func (s *Source) String() string {
	if s == nil {
		return ""
	}
	if child := s.ChildSource(); child != nil {
		return s.Name + "." + child.String()
	}
	return s.Name
}
