package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-analytics-api/internal/config"
	_ "modernc.org/sqlite"
)

// Pragmas aplicados a cada conexão sqlite: WAL para leituras não bloquearem uploads e espera em lock
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

var _ SessionProvider = (*Store)(nil)

// Store é a fábrica de sessões do banco de vendas
type Store struct {
	db           *sql.DB
	dialect      Dialect
	openSessions atomic.Int64
}

// Open abre o banco descrito pela configuração e valida a conexão
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dialect.Name == config.DriverSQLite && !strings.Contains(dsn, "?") {
		dsn = dsn + "?" + sqlitePragmas
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: erro ao abrir conexão %s: %w", dialect.Name, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: erro ao testar conexão %s: %w", dialect.Name, err)
	}

	return New(db, dialect), nil
}

// New cria um Store sobre um *sql.DB já aberto
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize garante, de forma idempotente, a tabela de vendas e seus índices
func (s *Store) Initialize(ctx context.Context) error {
	return s.WithSession(ctx, func(sess Session) error {
		return sess.RunInTransaction(ctx, func(q Queryer) error {
			for _, statement := range s.dialect.SchemaStatements() {
				if _, err := q.Exec(ctx, statement); err != nil {
					return fmt.Errorf("database: erro ao executar DDL %q: %w", firstLine(statement), err)
				}
			}
			return nil
		})
	})
}

// OpenSession reserva uma conexão do pool; o chamador deve chamar Close em todos os caminhos
func (s *Store) OpenSession(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("database: erro ao obter conexão: %w", err)
	}

	s.openSessions.Add(1)
	return &session{
		conn:    conn,
		onClose: func() { s.openSessions.Add(-1) },
	}, nil
}

// WithSession abre uma sessão, executa fn e libera a sessão mesmo em erro ou panic
func (s *Store) WithSession(ctx context.Context, fn func(Session) error) error {
	sess, err := s.OpenSession(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := sess.Close(); err != nil {
			logrus.WithError(err).Warn("database: erro ao liberar sessão")
		}
	}()

	return fn(sess)
}

// OpenSessions retorna quantas sessões estão reservadas no momento
func (s *Store) OpenSessions() int64 {
	return s.openSessions.Load()
}

func firstLine(statement string) string {
	statement = strings.TrimSpace(statement)
	if i := strings.IndexByte(statement, '\n'); i >= 0 {
		return statement[:i]
	}
	return statement
}
