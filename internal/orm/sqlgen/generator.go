package sqlgen

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/query"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// Generator builds statements for one dialect
type Generator struct {
	dialect Dialect
	builder squirrel.StatementBuilderType
}

// New creates a generator for the dialect
func New(dialect Dialect) *Generator {
	return &Generator{
		dialect: dialect,
		builder: squirrel.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
	}
}

// Dialect returns the generator's dialect
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// SourceForPath builds the join tree from the class's root source along a
// relationship path such as "Manager.Department". Every node is named after
// its relationship and backed by the related class's table; join fields come
// from the relationship properties. A leading segment naming the class
// itself is skipped.
func SourceForPath(cd *schema.ClassDef, path *query.Source) (*query.Source, error) {
	root := cd.Source()
	node := path
	if node != nil && !cd.Relationships.Contains(node.Name) &&
		strings.EqualFold(node.Name, cd.ClassNameExcludingNamespace()) {
		node = node.ChildSource()
	}

	from, fromDef := root, cd
	for node != nil {
		rel, err := fromDef.GetRelationship(node.Name)
		if err != nil {
			return nil, err
		}
		if rel.Type != schema.RelationshipSingle {
			return nil, ormerrors.NewDeveloper(
				"the path '"+path.String()+"' cannot be used in a query",
				"the relationship '"+rel.Name+"' on '"+fromDef.ClassName+"' is a multiple relationship and cannot be joined",
			)
		}
		related, err := rel.RelatedClassDef()
		if err != nil {
			return nil, err
		}

		to := query.NewSourceWithEntity(rel.Name, related.TableName)
		join := from.JoinToSource(to)
		for _, rp := range rel.RelProps {
			ownerDef, err := fromDef.GetPropDef(rp.OwnerPropertyName)
			if err != nil {
				return nil, err
			}
			relatedDef, err := related.GetPropDef(rp.RelatedPropertyName)
			if err != nil {
				return nil, err
			}
			join.AddJoinField(
				query.NewQueryField(ownerDef.Name, ownerDef.FieldName(), from.Name),
				query.NewQueryField(relatedDef.Name, relatedDef.FieldName(), to.Name),
			)
		}

		from, fromDef = to, related
		node = node.ChildSource()
	}
	return root, nil
}

// aliasFor returns the table alias of the node reached by path: the root
// source name for the root, otherwise the relationship names joined by "_"
func aliasFor(cd *schema.ClassDef, path *query.Source) string {
	var segments []string
	node := path
	if node != nil && !cd.Relationships.Contains(node.Name) &&
		strings.EqualFold(node.Name, cd.ClassNameExcludingNamespace()) {
		node = node.ChildSource()
	}
	for ; node != nil; node = node.ChildSource() {
		segments = append(segments, node.Name)
	}
	if len(segments) == 0 {
		return cd.Source().Name
	}
	return strings.Join(segments, "_")
}

// Select builds a SELECT of every property of the class. Relationship paths
// in criteria are joined once each, however many fields share them. where
// may be nil.
func (g *Generator) Select(cd *schema.ClassDef, criteria *query.OrderCriteria, where squirrel.Sqlizer) (squirrel.SelectBuilder, error) {
	root := cd.Source()
	if err := validateIdentifiers(cd.TableName); err != nil {
		return squirrel.SelectBuilder{}, err
	}

	var orderBy []string
	if criteria != nil {
		for _, field := range criteria.Fields() {
			tree, err := SourceForPath(cd, field.Source())
			if err != nil {
				return squirrel.SelectBuilder{}, err
			}
			if err := root.MergeWith(tree); err != nil {
				return squirrel.SelectBuilder{}, err
			}
			def, err := cd.ResolvePropDef(field.FullName())
			if err != nil {
				return squirrel.SelectBuilder{}, err
			}
			column := aliasFor(cd, field.Source()) + "." + def.FieldName()
			if err := validateIdentifiers(column); err != nil {
				return squirrel.SelectBuilder{}, err
			}
			orderBy = append(orderBy, column+" "+field.SortDirection().String())
		}
	}

	columns := make([]string, 0, cd.PropDefs.Count())
	for _, def := range cd.PropDefs.PropDefs() {
		if err := validateIdentifiers(def.FieldName()); err != nil {
			return squirrel.SelectBuilder{}, err
		}
		columns = append(columns, root.Name+"."+def.FieldName())
	}

	sb := g.builder.Select(columns...).From(root.EntityName + " AS " + root.Name)

	joins, err := joinClauses(root, root.Name, true)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	for _, j := range joins {
		if j.inner {
			sb = sb.Join(j.clause)
		} else {
			sb = sb.LeftJoin(j.clause)
		}
	}

	if where != nil {
		sb = sb.Where(where)
	}
	if len(orderBy) > 0 {
		sb = sb.OrderBy(orderBy...)
	}
	return sb, nil
}

type joinClause struct {
	clause string
	inner  bool
}

// joinClauses renders the joins of the tree below source depth first. Joined
// tables are aliased by their path from the root, so a table joined twice
// gets two aliases.
func joinClauses(source *query.Source, alias string, isRoot bool) ([]joinClause, error) {
	var clauses []joinClause
	for _, join := range source.Joins {
		to := join.ToSource
		toAlias := to.Name
		if !isRoot {
			toAlias = alias + "_" + to.Name
		}
		if err := validateIdentifiers(to.EntityName, toAlias); err != nil {
			return nil, err
		}

		conditions := make([]string, 0, len(join.JoinFields))
		for _, jf := range join.JoinFields {
			from := alias + "." + jf.FromField.FieldName()
			target := toAlias + "." + jf.ToField.FieldName()
			if err := validateIdentifiers(from, target); err != nil {
				return nil, err
			}
			conditions = append(conditions, from+" = "+target)
		}
		if len(conditions) == 0 {
			return nil, ormerrors.NewDeveloper(
				"an error occurred while building the query",
				fmt.Sprintf("the join from '%s' to '%s' has no join fields", source.Name, to.Name),
			)
		}

		clauses = append(clauses, joinClause{
			clause: fmt.Sprintf("%s AS %s ON %s", to.EntityName, toAlias, strings.Join(conditions, " AND ")),
			inner:  join.Type == query.InnerJoin,
		})

		nested, err := joinClauses(to, toAlias, false)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, nested...)
	}
	return clauses, nil
}
