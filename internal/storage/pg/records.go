package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/itchan-dev/askanon/shared/domain"
	internal_errors "github.com/itchan-dev/askanon/shared/errors"
)

const foreignKeyViolation = "23503"

// server clock in epoch millis, fixed for the whole transaction
const serverMillis = "(extract(epoch from now()) * 1000)::bigint"

// Append inserts one row; the database assigns the id. A reply to an unknown
// question fails the foreign key and is reported as not found.
func (s *Storage) Append(ctx context.Context, path domain.CollectionPath, rec domain.Record) (domain.RecordRef, error) {
	ref := domain.RecordRef{Path: path}

	var err error
	if !path.IsReplies() {
		err = s.db.QueryRowContext(ctx, `
		INSERT INTO questions(text, created_ms)
		VALUES($1, CASE WHEN $2::boolean THEN `+serverMillis+` ELSE $3::bigint END)
		RETURNING id`,
			rec.Text, rec.Timestamp.Server, rec.Timestamp.Millis).Scan(&ref.Key)
		if err != nil {
			return domain.RecordRef{}, fmt.Errorf("insert question: %w", err)
		}
		return ref, nil
	}

	err = s.db.QueryRowContext(ctx, `
	INSERT INTO replies(question_id, text, created_ms)
	VALUES($1, $2, CASE WHEN $3::boolean THEN `+serverMillis+` ELSE $4::bigint END)
	RETURNING id`,
		path.QuestionId(), rec.Text, rec.Timestamp.Server, rec.Timestamp.Millis).Scan(&ref.Key)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return domain.RecordRef{}, internal_errors.NotFound("Question not found")
		}
		return domain.RecordRef{}, fmt.Errorf("insert reply: %w", err)
	}
	return ref, nil
}

// snapshot reads every question with its replies in one repeatable-read transaction.
func (s *Storage) snapshot(ctx context.Context) (domain.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // read only, nothing to commit

	snap := domain.Snapshot{}

	rows, err := tx.QueryContext(ctx, `SELECT id, text, created_ms FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	for rows.Next() {
		q := domain.Question{Replies: map[domain.ReplyId]domain.Reply{}}
		if err := rows.Scan(&q.Id, &q.Text, &q.Timestamp); err != nil {
			rows.Close()
			return nil, err
		}
		snap[q.Id] = q
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, `SELECT id, question_id, text, created_ms FROM replies`)
	if err != nil {
		return nil, fmt.Errorf("select replies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r domain.Reply
		var questionId domain.QuestionId
		if err := rows.Scan(&r.Id, &questionId, &r.Text, &r.Timestamp); err != nil {
			return nil, err
		}
		if q, ok := snap[questionId]; ok {
			q.Replies[r.Id] = r
		}
	}
	return snap, rows.Err()
}
