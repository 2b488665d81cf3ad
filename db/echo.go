package db

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/teranos/porydex/logger"
)

// echoQuerier logs every statement before running it.
type echoQuerier struct {
	q      Querier
	logger *zap.SugaredLogger
}

// Echo wraps q so every statement and its arguments are logged at debug
// level. It backs the --sql flag.
func Echo(q Querier, l *zap.SugaredLogger) Querier {
	return &echoQuerier{q: q, logger: logger.OrNop(l).Named("sql")}
}

func (e *echoQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	e.logger.Debugw(query, logger.FieldArgs, args)
	return e.q.ExecContext(ctx, query, args...)
}

func (e *echoQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	e.logger.Debugw(query, logger.FieldArgs, args)
	return e.q.QueryContext(ctx, query, args...)
}

func (e *echoQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	e.logger.Debugw(query, logger.FieldArgs, args)
	return e.q.QueryRowContext(ctx, query, args...)
}
