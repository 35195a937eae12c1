package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS bans (
	identity  TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	reason    TEXT NOT NULL,
	banned_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	identity TEXT NOT NULL,
	name     TEXT NOT NULL,
	text     TEXT NOT NULL,
	system   BOOLEAN NOT NULL DEFAULT 0,
	sent_at  DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS banned_words (
	pos  INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS identities (
	identity   TEXT PRIMARY KEY,
	first_seen DATETIME NOT NULL
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and applies the
// schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== BanStore implementation ====

func (s *SQLiteStore) ListBans(ctx context.Context) ([]store.Ban, error) {
	query := `
		SELECT identity, name, reason, banned_at
		FROM bans
		ORDER BY banned_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query bans: %w", err)
	}
	defer rows.Close()

	var bans []store.Ban
	for rows.Next() {
		var ban store.Ban
		if err := rows.Scan(&ban.Identity, &ban.Name, &ban.Reason, &ban.BannedAt); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		bans = append(bans, ban)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bans: %w", err)
	}
	return bans, nil
}

func (s *SQLiteStore) PutBan(ctx context.Context, ban store.Ban) error {
	query := `
		INSERT OR REPLACE INTO bans (identity, name, reason, banned_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, ban.Identity, ban.Name, ban.Reason, ban.BannedAt); err != nil {
		return fmt.Errorf("insert ban: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteBan(ctx context.Context, identity string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE identity = ?`, identity); err != nil {
		return fmt.Errorf("delete ban: %w", err)
	}
	return nil
}

// ==== HistoryStore implementation ====

func (s *SQLiteStore) ListMessages(ctx context.Context, limit int) ([]store.Message, error) {
	query := `
		SELECT identity, name, text, system, sent_at
		FROM (
			SELECT id, identity, name, text, system, sent_at
			FROM history
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var msgs []store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.Identity, &msg.Name, &msg.Text, &msg.System, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return msgs, nil
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, msg store.Message, keep int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO history (identity, name, text, system, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insert, msg.Identity, msg.Name, msg.Text, msg.System, msg.SentAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	trim := `
		DELETE FROM history
		WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)
	`
	if _, err := tx.ExecContext(ctx, trim, keep); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteMessagesBy(ctx context.Context, identity string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE identity = ?`, identity); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteAllMessages(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("purge history: %w", err)
	}
	return nil
}

// ==== WordStore implementation ====

func (s *SQLiteStore) ListWords(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM banned_words ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}
	return words, nil
}

func (s *SQLiteStore) ReplaceWords(ctx context.Context, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace words: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM banned_words`); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}
	for _, word := range words {
		if _, err := tx.ExecContext(ctx, `INSERT INTO banned_words (word) VALUES (?)`, word); err != nil {
			return fmt.Errorf("insert word: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace words: %w", err)
	}
	return nil
}

// ==== IdentityStore implementation ====

func (s *SQLiteStore) RecordIdentity(ctx context.Context, identity string, firstSeen time.Time) error {
	query := `
		INSERT OR IGNORE INTO identities (identity, first_seen)
		VALUES (?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, identity, firstSeen); err != nil {
		return fmt.Errorf("record identity: %w", err)
	}
	return nil
}
