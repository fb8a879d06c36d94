package mysql

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"cryptoboost/internal/domain/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidQuery = errors.New("invalid query")

	reColumn = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// Collection is a generic record store over one gorm model.
// Every record type it serves is keyed by a string "id" column.
type Collection[T any] struct{ db *gorm.DB }

func NewCollection[T any](db *gorm.DB) *Collection[T] { return &Collection[T]{db: db} }

func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.Find(ctx, store.Query{})
}

func (c *Collection[T]) ByID(ctx context.Context, id string) (*T, error) {
	var out T
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (c *Collection[T]) Find(ctx context.Context, q store.Query) ([]T, error) {
	tx, err := applyQuery(c.db.WithContext(ctx).Model(new(T)), q)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := tx.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Insert relies on gorm's autoCreateTime/autoUpdateTime tags for created_at/updated_at.
func (c *Collection[T]) Insert(ctx context.Context, rec *T) error {
	return translate(c.db.WithContext(ctx).Create(rec).Error)
}

// Update merges partial into the record; updated_at is stamped by gorm.
func (c *Collection[T]) Update(ctx context.Context, id string, partial map[string]any) error {
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(partial)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return c.mustExist(ctx, id)
	}
	return nil
}

// UpdateIf is a compare-and-set: one UPDATE ... WHERE id = ? AND <guard>.
// It reports false when the guard no longer holds (or the id is gone).
func (c *Collection[T]) UpdateIf(ctx context.Context, id string, guard []store.Filter, partial map[string]any) (bool, error) {
	tx, err := applyFilters(c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id), guard)
	if err != nil {
		return false, err
	}
	res := tx.Updates(partial)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) mustExist(ctx context.Context, id string) error {
	var n int64
	if err := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// applyQuery evaluates a query specification against a gorm statement.
func applyQuery(db *gorm.DB, q store.Query) (*gorm.DB, error) {
	db, err := applyFilters(db, q.Filters)
	if err != nil {
		return nil, err
	}
	for _, s := range q.Sort {
		if !reColumn.MatchString(s.Field) {
			return nil, fmt.Errorf("%w: sort field %q", ErrInvalidQuery, s.Field)
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db, nil
}

func applyFilters(db *gorm.DB, filters []store.Filter) (*gorm.DB, error) {
	for _, f := range filters {
		expr, err := filterExpr(f)
		if err != nil {
			return nil, err
		}
		db = db.Where(expr)
	}
	return db, nil
}

func filterExpr(f store.Filter) (clause.Expression, error) {
	if !reColumn.MatchString(f.Field) {
		return nil, fmt.Errorf("%w: field %q", ErrInvalidQuery, f.Field)
	}
	col := clause.Column{Name: f.Field}
	switch f.Op {
	case store.OpEq:
		return clause.Eq{Column: col, Value: f.Value}, nil
	case store.OpNeq:
		return clause.Neq{Column: col, Value: f.Value}, nil
	case store.OpGt:
		return clause.Gt{Column: col, Value: f.Value}, nil
	case store.OpGte:
		return clause.Gte{Column: col, Value: f.Value}, nil
	case store.OpLt:
		return clause.Lt{Column: col, Value: f.Value}, nil
	case store.OpLte:
		return clause.Lte{Column: col, Value: f.Value}, nil
	case store.OpIn:
		vals, ok := f.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q needs a list", ErrInvalidQuery, f.Field)
		}
		return clause.IN{Column: col, Values: vals}, nil
	case store.OpNull:
		return clause.Eq{Column: col, Value: nil}, nil
	case store.OpNotNull:
		return clause.Neq{Column: col, Value: nil}, nil
	}
	return nil, fmt.Errorf("%w: op %q", ErrInvalidQuery, f.Op)
}

// translate maps driver errors onto store errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueConstraintError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// isUniqueConstraintError covers drivers that do not translate errors.
func isUniqueConstraintError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "unique constraint")
}

// remap swaps store.ErrNotFound / store.ErrDuplicate for entity-specific errors.
func remap(err, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, store.ErrNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, store.ErrDuplicate):
		return duplicate
	}
	return err
}
