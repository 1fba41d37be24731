package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidSession is returned when a session fails validation before insert.
var ErrInvalidSession = errors.New("invalid session")

// Session is the stored result of one finished game.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Player    string    `db:"player" json:"player"`
	Score     int       `db:"score" json:"score"`
	Level     int       `db:"level" json:"level"`
	Missed    int       `db:"missed" json:"missed"`
	Sorted    int       `db:"sorted" json:"sorted"`
	Misplaced int       `db:"misplaced" json:"misplaced"`
	Credited  int       `db:"credited" json:"credited"`
	StartedAt time.Time `db:"started_at" json:"started_at"`
	EndedAt   time.Time `db:"ended_at" json:"ended_at"`
}

// Duration returns how long the session lasted.
func (s Session) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// SessionRepository provides access to finished sessions.
type SessionRepository struct {
	store *Store
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{store: s}
}

const sessionColumns = `id, player, score, level, missed, sorted, misplaced, credited, started_at, ended_at`

// Create inserts a finished session.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSession)
	}
	if sess.Score < 0 || sess.Level < 1 {
		return fmt.Errorf("%w: score %d level %d", ErrInvalidSession, sess.Score, sess.Level)
	}
	if sess.EndedAt.Before(sess.StartedAt) {
		return fmt.Errorf("%w: ends before it starts", ErrInvalidSession)
	}

	sess.StartedAt = sess.StartedAt.UTC()
	sess.EndedAt = sess.EndedAt.UTC()

	_, err := r.store.db.NamedExec(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (:id, :player, :score, :level, :missed, :sorted, :misplaced, :credited, :started_at, :ended_at)`,
		sess,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	err := r.store.db.Get(sess, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions, newest first.
func (r *SessionRepository) List(limit, offset int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []*Session
	err := r.store.db.Select(&sessions,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY ended_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Top returns the highest scoring sessions. Equal scores rank the earlier
// finish first.
func (r *SessionRepository) Top(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 10
	}
	var sessions []*Session
	err := r.store.db.Select(&sessions,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY score DESC, ended_at ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Best returns the best score recorded, or 0 when there are no sessions.
// An empty player matches every player.
func (r *SessionRepository) Best(player string) (int, error) {
	var best sql.NullInt64
	var err error
	if player == "" {
		err = r.store.db.Get(&best, `SELECT MAX(score) FROM sessions`)
	} else {
		err = r.store.db.Get(&best, `SELECT MAX(score) FROM sessions WHERE player = ?`, player)
	}
	if err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

// Count returns the number of stored sessions.
func (r *SessionRepository) Count() (int, error) {
	var n int
	err := r.store.db.Get(&n, `SELECT COUNT(*) FROM sessions`)
	return n, err
}

// MarkCredited records the points an external ledger accepted for a session.
func (r *SessionRepository) MarkCredited(id string, points int) error {
	result, err := r.store.db.Exec(`UPDATE sessions SET credited = ? WHERE id = ?`, points, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session by its ID.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.store.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
