package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrSessionClosed é retornado ao usar uma sessão já liberada
var ErrSessionClosed = errors.New("database: session already released")

// Row é satisfeito por *sql.Row
type Row interface {
	Scan(dest ...interface{}) error
	Err() error
}

type Queryer interface {
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
}

// Session é um handle ligado a uma única conexão do pool
type Session interface {
	Queryer
	RunInTransaction(ctx context.Context, fn func(Queryer) error) error
	Close() error
}

// SessionProvider abre sessões com liberação garantida
type SessionProvider interface {
	WithSession(ctx context.Context, fn func(Session) error) error
	Dialect() Dialect
}

type session struct {
	conn      *sql.Conn
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	onClose   func()
}

func (s *session) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	return s.conn.ExecContext(ctx, query, args...)
}

func (s *session) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *session) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	if s.closed.Load() {
		return errRow{err: ErrSessionClosed}
	}
	return s.conn.QueryRowContext(ctx, query, args...)
}

// errRow adia o erro para Scan, como *sql.Row faz
type errRow struct {
	err error
}

func (r errRow) Scan(...interface{}) error { return r.err }
func (r errRow) Err() error                { return r.err }

// RunInTransaction executa fn dentro de uma transação: commit se fn retornar nil, rollback caso contrário
func (s *session) RunInTransaction(ctx context.Context, fn func(Queryer) error) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_ = tx.Rollback()
			panic(err)
		}
	}()

	if err := fn(txQueryer{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Close devolve a conexão ao pool; chamadas repetidas retornam o mesmo resultado
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.conn.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return s.closeErr
}

type txQueryer struct {
	tx *sql.Tx
}

func (q txQueryer) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return q.tx.ExecContext(ctx, query, args...)
}

func (q txQueryer) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return q.tx.QueryContext(ctx, query, args...)
}

func (q txQueryer) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return q.tx.QueryRowContext(ctx, query, args...)
}
