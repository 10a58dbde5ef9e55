package surrealstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// query executes a raw SurrealQL query with parameters and returns multiple
// results unmarshaled into type T.
func query[T any](ctx context.Context, db *surrealdb.DB, q string, params map[string]any) ([]T, error) {
	queryResults, err := surrealdb.Query[[]T](ctx, db, q, params)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if len(*queryResults) == 0 {
		return nil, nil
	}
	return (*queryResults)[0].Result, nil
}

// queryOne executes a query and returns a single result. If no results are
// found, it returns nil, nil.
func queryOne[T any](ctx context.Context, db *surrealdb.DB, q string, params map[string]any) (*T, error) {
	// CREATE/UPDATE/DELETE statements don't support LIMIT.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(q)), "SELECT") && !hasLimitClause(q) {
		q += " LIMIT 1"
	}

	results, err := query[T](ctx, db, q, params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// exec runs a statement whose results are discarded, such as schema
// definitions.
func exec(ctx context.Context, db *surrealdb.DB, q string) error {
	if _, err := surrealdb.Query[any](ctx, db, q, nil); err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	return nil
}

// hasLimitClause checks if the query already has a LIMIT clause.
func hasLimitClause(q string) bool {
	q = " " + strings.ToUpper(q) + " "
	return strings.Contains(q, " LIMIT ")
}
