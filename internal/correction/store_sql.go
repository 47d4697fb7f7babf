package correction

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/corector/internal/grading"
	syncx "github.com/mind-engage/corector/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, events: syncx.NewEventRepo(db, "")}
}

// PutSession upserts the snapshot and appends a CorrectionCompleted event
// in the same transaction.
func (s *SQLStore) PutSession(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO sessions (id,owner_id,student_name,class_name,mode,outcome,data,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET owner_id=EXCLUDED.owner_id, student_name=EXCLUDED.student_name,
		class_name=EXCLUDED.class_name, mode=EXCLUDED.mode, outcome=EXCLUDED.outcome, data=EXCLUDED.data`,
		sess.ID, sess.OwnerID, sess.StudentName, sess.ClassName, string(sess.Mode), string(sess.Outcome), string(data), sess.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	score, hasScore := sess.Score()
	payload := map[string]any{
		"owner_id": sess.OwnerID,
		"student":  sess.StudentName,
		"class":    sess.ClassName,
		"mode":     sess.Mode,
		"outcome":  sess.Outcome,
	}
	if hasScore {
		payload["score"] = score
	}
	ev, err := syncx.NewEvent(syncx.TypeCorrectionCompleted, sess.ID, payload)
	if err != nil {
		return err
	}
	if err := s.events.AppendTx(ctx, tx, ev); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id=$1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return sess, nil
}

func (s *SQLStore) ListSessions(ctx context.Context, opts ListOpts) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM sessions WHERE ($1 = '' OR owner_id = $1) ORDER BY created_at DESC, id DESC`,
		opts.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Session{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var sess Session
		if err := json.Unmarshal([]byte(data), &sess); err != nil {
			continue
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return filterSessions(out, opts), nil
}

func (s *SQLStore) DeleteSession(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1 AND ($2 = '' OR owner_id=$2)`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) PutRubric(ctx context.Context, rb grading.Rubric) (grading.Rubric, error) {
	if err := rb.Validate(); err != nil {
		return grading.Rubric{}, err
	}
	if rb.ID == "" {
		rb.ID = uuid.NewString()
	}
	rb.Stamp(rb.OwnerID, time.Now())
	items, err := json.Marshal(rb.Items)
	if err != nil {
		return grading.Rubric{}, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO rubrics (id,owner_id,name,items_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, items_json=EXCLUDED.items_json
		WHERE rubrics.owner_id = EXCLUDED.owner_id`,
		rb.ID, rb.OwnerID, rb.Name, string(items), rb.CreatedAt)
	if err != nil {
		return grading.Rubric{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return grading.Rubric{}, ErrNotFound
	}
	return rb, nil
}

func (s *SQLStore) GetRubric(ctx context.Context, ownerID, id string) (grading.Rubric, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,owner_id,name,items_json,created_at FROM rubrics WHERE id=$1 AND owner_id=$2`, id, ownerID)
	rb, err := scanRubric(row)
	if errors.Is(err, sql.ErrNoRows) {
		return grading.Rubric{}, ErrNotFound
	}
	return rb, err
}

func (s *SQLStore) ListRubrics(ctx context.Context, ownerID string) ([]grading.Rubric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,owner_id,name,items_json,created_at FROM rubrics WHERE owner_id=$1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []grading.Rubric{}
	for rows.Next() {
		rb, err := scanRubric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteRubric(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rubrics WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRubric(sc scanner) (grading.Rubric, error) {
	var rb grading.Rubric
	var items string
	if err := sc.Scan(&rb.ID, &rb.OwnerID, &rb.Name, &items, &rb.CreatedAt); err != nil {
		return grading.Rubric{}, err
	}
	if err := json.Unmarshal([]byte(items), &rb.Items); err != nil {
		return grading.Rubric{}, fmt.Errorf("decode rubric %s: %w", rb.ID, err)
	}
	return rb, nil
}
