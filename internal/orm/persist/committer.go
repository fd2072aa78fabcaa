package persist

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/habanero-go/habanero/internal/orm/bo"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

type operation int

const (
	opInsert operation = iota
	opUpdate
	opDelete
)

func (o operation) String() string {
	switch o {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	default:
		return "delete"
	}
}

type pendingObject struct {
	obj  *bo.BusinessObject
	op   operation
	rank int
}

// Committer saves a set of business objects in one transaction. Either all
// of them are saved or none is.
type Committer struct {
	store   *Store
	objects []*bo.BusinessObject
}

// Add queues objects for the next commit. An object queued twice is saved
// once.
func (c *Committer) Add(objs ...*bo.BusinessObject) {
	for _, obj := range objs {
		if obj == nil || c.contains(obj) {
			continue
		}
		c.objects = append(c.objects, obj)
	}
}

func (c *Committer) contains(obj *bo.BusinessObject) bool {
	for _, existing := range c.objects {
		if existing == obj {
			return true
		}
	}
	return false
}

// Count returns the number of queued objects
func (c *Committer) Count() int {
	return len(c.objects)
}

// Commit validates the queued objects and saves them. New objects are
// inserted, loaded objects with dirty properties are updated and objects
// marked for delete are deleted. Inserts and updates run in relationship
// dependency order, after deletes in the reverse order.
//
// The objects are only marked saved once the transaction has committed; on
// failure they keep their edits and stay queued.
func (c *Committer) Commit(ctx context.Context) error {
	pending := c.pending()
	if len(pending) == 0 {
		c.objects = nil
		return nil
	}

	if err := validate(pending); err != nil {
		return err
	}

	generated := make(map[*bo.BusinessObject]int64)
	err := c.store.tx.WithRetry(ctx, func(tx *sql.Tx) error {
		clear(generated)
		for _, p := range pending {
			if err := c.execute(ctx, tx, p, generated); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.store.logger.Warn("commit failed", zap.Int("objects", len(pending)), zap.Error(err))
		return err
	}

	counts := make(map[operation]int)
	for _, p := range pending {
		if id, ok := generated[p.obj]; ok {
			p.obj.Props().AutoIncrementingProp().InitialiseProp(id)
		}
		p.obj.AfterSave()
		counts[p.op]++
	}
	c.objects = nil

	c.store.logger.Info("business objects committed",
		zap.Int("inserted", counts[opInsert]),
		zap.Int("updated", counts[opUpdate]),
		zap.Int("deleted", counts[opDelete]))
	return nil
}

// pending returns the queued objects that need saving, in execution order
func (c *Committer) pending() []pendingObject {
	ranks := dependencyRanks(c.objects)

	var deletes, saves []pendingObject
	for _, obj := range c.objects {
		rank := ranks[obj.ClassDef().TypeID(true)]
		switch {
		case obj.IsDeleted() && !obj.IsNew():
			deletes = append(deletes, pendingObject{obj: obj, op: opDelete, rank: rank})
		case obj.IsDeleted():
			// never saved, nothing to delete
		case obj.IsNew():
			saves = append(saves, pendingObject{obj: obj, op: opInsert, rank: rank})
		case obj.Props().IsDirty():
			saves = append(saves, pendingObject{obj: obj, op: opUpdate, rank: rank})
		}
	}

	sort.SliceStable(deletes, func(i, j int) bool { return deletes[i].rank > deletes[j].rank })
	sort.SliceStable(saves, func(i, j int) bool { return saves[i].rank < saves[j].rank })
	return append(deletes, saves...)
}

// dependencyRanks ranks the classes of objs so that a class comes after the
// classes it holds foreign keys to. Without a registry, or when the classes
// depend on each other in a cycle, every class gets rank 0 and the queue
// order is kept.
func dependencyRanks(objs []*bo.BusinessObject) map[string]int {
	ranks := make(map[string]int)
	var col *schema.ClassDefCol
	for _, obj := range objs {
		if col = obj.ClassDef().ClassDefCol(); col != nil {
			break
		}
	}
	if col == nil {
		return ranks
	}

	sorted, err := schema.NewRelationshipGraph(col).TopologicalSort()
	if err != nil {
		return ranks
	}
	for i, cd := range sorted {
		ranks[cd.TypeID(true)] = i
	}
	return ranks
}

func validate(pending []pendingObject) error {
	var invalid []ObjectError
	for _, p := range pending {
		if p.op == opDelete {
			continue
		}
		if ok, reason := p.obj.IsValid(); !ok {
			invalid = append(invalid, ObjectError{
				Class:  p.obj.ClassDef().ClassName,
				ID:     p.obj.ID(),
				Reason: reason,
			})
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Errors: invalid}
	}
	return nil
}

func (c *Committer) execute(ctx context.Context, tx *sql.Tx, p pendingObject, generated map[*bo.BusinessObject]int64) error {
	obj := p.obj
	class := obj.ClassDef().ClassName

	var (
		stmt string
		args []interface{}
		err  error
	)
	switch p.op {
	case opInsert:
		ib, buildErr := c.store.gen.Insert(obj)
		if buildErr != nil {
			return buildErr
		}
		stmt, args, err = ib.ToSql()
	case opUpdate:
		ub, buildErr := c.store.gen.Update(obj)
		if buildErr != nil {
			return buildErr
		}
		stmt, args, err = ub.ToSql()
	default:
		db, buildErr := c.store.gen.Delete(obj)
		if buildErr != nil {
			return buildErr
		}
		stmt, args, err = db.ToSql()
	}
	if err != nil {
		return err
	}

	c.store.logger.Debug("executing statement",
		zap.String("op", p.op.String()),
		zap.String("class", class),
		zap.String("sql", stmt))

	auto := obj.Props().AutoIncrementingProp()
	needsID := p.op == opInsert && auto != nil && auto.Value() == nil

	if needsID && c.store.gen.Dialect().Returning {
		var id int64
		if err := tx.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
			return fmt.Errorf("failed to %s %s: %w", p.op, class, ConvertDBError(err))
		}
		generated[obj] = id
		return nil
	}

	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", p.op, class, ConvertDBError(err))
	}

	if needsID {
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read generated id of %s: %w", class, err)
		}
		generated[obj] = id
		return nil
	}

	if p.op != opInsert {
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to %s %s: %w", p.op, class, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s %s", ErrConcurrencyConflict, class, obj.ID())
		}
	}
	return nil
}
