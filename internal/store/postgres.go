package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/google/uuid"
)

// PostgresCollection stores documents in a Postgres table with the layout
// (id TEXT PRIMARY KEY, doc JSONB, created_at TIMESTAMPTZ). Filters and
// patches are compiled to JSONB expressions, so every operation is a single
// statement and atomic at the document level.
type PostgresCollection struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

func NewPostgresCollection(db *sqlx.DB, table string, logger *zap.Logger) *PostgresCollection {
	return &PostgresCollection{db: db, table: table, logger: logger}
}

func (c *PostgresCollection) Insert(ctx context.Context, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.NewString()
	query := fmt.Sprintf(
		`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb || jsonb_build_object('id', $1::text))`,
		c.table,
	)

	if _, err := c.db.ExecContext(ctx, query, id, string(raw)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrDuplicateKey
		}
		return "", err
	}
	return id, nil
}

func (c *PostgresCollection) FindOne(ctx context.Context, f Filter) (json.RawMessage, error) {
	where, args := whereClause(f, 0)
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE %s LIMIT 1`, c.table, where)

	var raw []byte
	if err := c.db.GetContext(ctx, &raw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoDocuments
		}
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func (c *PostgresCollection) FindMany(ctx context.Context, f Filter) ([]json.RawMessage, error) {
	where, args := whereClause(f, 0)
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE %s ORDER BY created_at, id`, c.table, where)

	rows, err := c.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, json.RawMessage(raw))
	}
	return docs, rows.Err()
}

func (c *PostgresCollection) UpdateConditional(ctx context.Context, f Filter, p Patch) (int64, error) {
	expr, patchArgs, err := patchExpr(p)
	if err != nil {
		return 0, err
	}
	where, whereArgs := whereClause(f, len(patchArgs))
	query := fmt.Sprintf(`UPDATE %s SET doc = %s WHERE %s`, c.table, expr, where)

	res, err := c.db.ExecContext(ctx, query, append(patchArgs, whereArgs...)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *PostgresCollection) DeleteConditional(ctx context.Context, f Filter) (int64, error) {
	where, args := whereClause(f, 0)
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s`, c.table, where)

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// whereClause compiles a Filter into a SQL condition. Field names come from
// call sites inside this module, never from request input, so they are
// interpolated directly; values always go through placeholders. Placeholder
// numbering starts after argOffset.
func whereClause(f Filter, argOffset int) (string, []any) {
	var conds []string
	var args []any

	next := func(v any) int {
		args = append(args, v)
		return argOffset + len(args)
	}

	if f.ID != "" {
		conds = append(conds, fmt.Sprintf("id = $%d", next(f.ID)))
	}

	keys := make([]string, 0, len(f.Eq))
	for k := range f.Eq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		conds = append(conds, fmt.Sprintf("doc->>'%s' = $%d", k, next(f.Eq[k])))
	}

	if f.Elem != nil {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(doc->'%s') elem WHERE elem->>'%s' = $%d)",
			f.Elem.Field, f.Elem.Key, next(f.Elem.Value),
		))
	}

	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}

// patchExpr compiles a Patch into a JSONB expression producing the new
// document value.
func patchExpr(p Patch) (string, []any, error) {
	expr := "doc"
	var args []any

	if p.Set != nil {
		raw, err := json.Marshal(p.Set)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode patch: %w", err)
		}
		args = append(args, string(raw))
		expr = fmt.Sprintf("(%s || $%d::jsonb)", expr, len(args))
	}

	if p.Push != nil {
		raw, err := json.Marshal(p.Push.Value)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode pushed element: %w", err)
		}
		args = append(args, string(raw))
		expr = fmt.Sprintf(
			"jsonb_set(%s, '{%s}', COALESCE(%s->'%s', '[]'::jsonb) || $%d::jsonb)",
			expr, p.Push.Field, expr, p.Push.Field, len(args),
		)
	}

	if p.Pull != nil {
		args = append(args, p.Pull.Value)
		expr = fmt.Sprintf(
			"jsonb_set(%s, '{%s}', COALESCE((SELECT jsonb_agg(elem) FROM jsonb_array_elements(%s->'%s') elem WHERE elem->>'%s' <> $%d), '[]'::jsonb))",
			expr, p.Pull.Field, expr, p.Pull.Field, p.Pull.Key, len(args),
		)
	}

	if expr == "doc" {
		return "", nil, errors.New("store: empty patch")
	}
	return expr, args, nil
}
