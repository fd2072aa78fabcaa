// Package persist loads business objects from a database/sql database and
// saves changes to them in a single transaction.
package persist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/habanero-go/habanero/internal/orm/bo"
	"github.com/habanero-go/habanero/internal/orm/query"
	"github.com/habanero-go/habanero/internal/orm/schema"
	"github.com/habanero-go/habanero/internal/orm/sqlgen"
)

// Store reads and writes business objects through one database handle
type Store struct {
	db     *sql.DB
	gen    *sqlgen.Generator
	tx     *TxManager
	logger *zap.Logger
}

type options struct {
	logger *zap.Logger
	level  IsolationLevel
	retry  RetryConfig
}

// Option configures a Store
type Option func(*options)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithIsolationLevel sets the isolation level of commits
func WithIsolationLevel(level IsolationLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithRetryConfig sets how deadlocked commits are retried
func WithRetryConfig(retry RetryConfig) Option {
	return func(o *options) {
		o.retry = retry
	}
}

// NewStore creates a store for db using the dialect's SQL
func NewStore(db *sql.DB, dialect sqlgen.Dialect, opts ...Option) *Store {
	o := options{
		logger: zap.NewNop(),
		level:  ReadCommitted,
		retry:  DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		db:     db,
		gen:    sqlgen.New(dialect),
		tx:     NewTxManager(db, o.level, o.retry),
		logger: o.logger,
	}
}

// Open opens a database with a registered database/sql driver and creates a
// store with the matching dialect
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	dialect, err := sqlgen.DialectForDriver(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewStore(db, dialect, opts...), nil
}

// DB returns the database handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Generator returns the statement generator
func (s *Store) Generator() *sqlgen.Generator {
	return s.gen
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Load loads the one object of the class whose properties equal criteria
func (s *Store) Load(ctx context.Context, cd *schema.ClassDef, criteria map[string]interface{}) (*bo.BusinessObject, error) {
	objs, err := s.LoadCollection(ctx, cd, criteria, "")
	if err != nil {
		return nil, err
	}
	switch len(objs) {
	case 0:
		return nil, fmt.Errorf("%w: %s where %v", ErrNotFound, cd.ClassName, criteria)
	case 1:
		return objs[0], nil
	default:
		return nil, fmt.Errorf("%w: %d %s objects where %v", ErrNotUnique, len(objs), cd.ClassName, criteria)
	}
}

// LoadCollection loads the objects of the class whose properties equal
// criteria, ordered by orderBy. Either may be empty. orderBy may name
// properties of related classes, such as "Manager.Surname DESC".
func (s *Store) LoadCollection(ctx context.Context, cd *schema.ClassDef, criteria map[string]interface{}, orderBy string) ([]*bo.BusinessObject, error) {
	var where squirrel.Sqlizer
	if len(criteria) > 0 {
		eq, err := sqlgen.WhereProps(cd, criteria)
		if err != nil {
			return nil, err
		}
		where = eq
	}

	var oc *query.OrderCriteria
	if orderBy != "" {
		var err error
		if oc, err = query.OrderCriteriaFromString(orderBy); err != nil {
			return nil, err
		}
	}

	sb, err := s.gen.Select(cd, oc, where)
	if err != nil {
		return nil, err
	}
	stmt, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loading business objects",
		zap.String("class", cd.ClassName),
		zap.String("sql", stmt))

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", cd.ClassName, ConvertDBError(err))
	}
	defer rows.Close()

	return scanObjects(rows, cd)
}

// LoadRelated loads the related objects of a relationship and sets them on
// obj. A single relationship whose owner properties are empty is left unset.
func (s *Store) LoadRelated(ctx context.Context, obj *bo.BusinessObject, relationshipName string) error {
	rel, err := obj.ClassDef().GetRelationship(relationshipName)
	if err != nil {
		return err
	}
	related, err := rel.RelatedClassDef()
	if err != nil {
		return err
	}

	criteria := make(map[string]interface{}, len(rel.RelProps))
	for _, rp := range rel.RelProps {
		value, err := obj.GetPropertyValue(rp.OwnerPropertyName)
		if err != nil {
			return err
		}
		if value == nil {
			if rel.Type == schema.RelationshipMultiple {
				return obj.SetRelatedObjects(rel.Name, nil)
			}
			return nil
		}
		criteria[rp.RelatedPropertyName] = value
	}

	if rel.Type == schema.RelationshipMultiple {
		objs, err := s.LoadCollection(ctx, related, criteria, rel.OrderBy)
		if err != nil {
			return err
		}
		return obj.SetRelatedObjects(rel.Name, objs)
	}

	relatedObj, err := s.Load(ctx, related, criteria)
	if err != nil {
		return err
	}
	return obj.SetRelatedObject(rel.Name, relatedObj)
}

// NewCommitter creates a committer that saves through this store
func (s *Store) NewCommitter() *Committer {
	return &Committer{store: s}
}

// scanObjects scans rows selected by sqlgen.Generator.Select, whose columns
// follow the order of the class's property definitions
func scanObjects(rows *sql.Rows, cd *schema.ClassDef) ([]*bo.BusinessObject, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	defs := cd.PropDefs.PropDefs()
	if len(columns) != len(defs) {
		return nil, fmt.Errorf("expected %d columns for %s, got %d", len(defs), cd.ClassName, len(columns))
	}

	var results []*bo.BusinessObject
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(defs))
		for i, def := range defs {
			record[def.Name] = values[i]
		}

		obj, err := bo.New(cd)
		if err != nil {
			return nil, err
		}
		if err := obj.InitialiseFromLoad(record); err != nil {
			return nil, err
		}
		results = append(results, obj)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
