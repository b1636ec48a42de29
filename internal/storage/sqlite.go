package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"remnd/internal/remind"
	"remnd/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// ErrNotFound is returned by Get when no reminder has the given id.
var ErrNotFound = errors.New("reminder not found")

type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// Store is the SQLite-backed reminder store. It implements
// remind.Store plus the CRUD surface the CLI commands need.
type Store struct {
	db  *sql.DB
	log logx.Logger
}

func Open(cfg Config, log logx.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &Store{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const reminderCols = "id, text, note, due_at, created_at, repeat_step, last_notified_at, completed_at"

// Add inserts a new reminder and returns its assigned id.
func (s *Store) Add(ctx context.Context, r remind.Reminder) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders(text, note, due_at, created_at, repeat_step, last_notified_at, completed_at)
		 VALUES(?,?,?,?,?,?,?)`,
		r.Text, nullStr(r.Note), r.DueAt.Unix(), r.CreatedAt.Unix(),
		nullStr(r.Repeat.String()), nullEpoch(r.LastNotifiedAt), nullEpoch(r.CompletedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Get fetches one reminder by id.
func (s *Store) Get(ctx context.Context, id int64) (remind.Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reminderCols+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return remind.Reminder{}, fmt.Errorf("%w: #%d", ErrNotFound, id)
	}
	return r, err
}

// List returns reminders for display: active ones ascending by due
// time; with includeDone, completed ones follow.
func (s *Store) List(ctx context.Context, includeDone bool) ([]remind.Reminder, error) {
	q := `SELECT ` + reminderCols + ` FROM reminders
	      WHERE completed_at IS NULL
	      ORDER BY due_at ASC, id ASC`
	if includeDone {
		q = `SELECT ` + reminderCols + ` FROM reminders
		     ORDER BY CASE WHEN completed_at IS NULL THEN 0 ELSE 1 END,
		              due_at ASC, id ASC`
	}
	return s.queryReminders(ctx, q)
}

// LoadActive implements remind.Store: every reminder that can still
// fire, due or not. Due-ness is the evaluator's call, not a query.
func (s *Store) LoadActive(ctx context.Context, _ time.Time) ([]remind.Reminder, error) {
	return s.queryReminders(ctx,
		`SELECT `+reminderCols+` FROM reminders
		 WHERE completed_at IS NULL
		 ORDER BY due_at ASC, id ASC`)
}

// Persist implements remind.Store: writes the whole mutated batch
// under one transaction.
func (s *Store) Persist(ctx context.Context, reminders []remind.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, r := range reminders {
		if _, err := tx.ExecContext(ctx,
			`UPDATE reminders
			 SET due_at = ?, last_notified_at = ?, completed_at = ?
			 WHERE id = ?`,
			r.DueAt.Unix(), nullEpoch(r.LastNotifiedAt), nullEpoch(r.CompletedAt), r.ID,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Update rewrites one reminder's mutable fields (completion flow).
func (s *Store) Update(ctx context.Context, r remind.Reminder) error {
	return s.Persist(ctx, []remind.Reminder{r})
}

// Delete removes a reminder; ok reports whether anything matched.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) queryReminders(ctx context.Context, q string, args ...any) ([]remind.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []remind.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			// One corrupt row must not block the rest.
			s.log.Warn("skipping unreadable reminder row", logx.Err(err))
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (remind.Reminder, error) {
	var (
		r        remind.Reminder
		note     sql.NullString
		repeat   sql.NullString
		due      int64
		created  int64
		notified sql.NullInt64
		done     sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.Text, &note, &due, &created, &repeat, &notified, &done); err != nil {
		return remind.Reminder{}, err
	}
	r.Note = note.String
	r.DueAt = time.Unix(due, 0)
	r.CreatedAt = time.Unix(created, 0)
	if notified.Valid {
		r.LastNotifiedAt = time.Unix(notified.Int64, 0)
	}
	if done.Valid {
		r.CompletedAt = time.Unix(done.Int64, 0)
	}
	if repeat.Valid && strings.TrimSpace(repeat.String) != "" {
		step, err := remind.ParseStep(repeat.String)
		if err != nil {
			return remind.Reminder{}, fmt.Errorf("reminder #%d: bad repeat_step %q: %w", r.ID, repeat.String, err)
		}
		r.Repeat = step
	}
	return r, nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullEpoch(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}
