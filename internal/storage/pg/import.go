package pg

import (
	"context"
	"fmt"

	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/logger"
)

// Import copies a snapshot in one transaction, oldest question first. Text and
// timestamps are kept, ids are reassigned by the database.
func (s *Storage) Import(ctx context.Context, snap domain.Snapshot) (questions, replies int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	sorted := domain.SortQuestions(snap)
	for i := len(sorted) - 1; i >= 0; i-- {
		q := sorted[i]

		var newId string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO questions(text, created_ms) VALUES($1, $2) RETURNING id`,
			q.Text, q.Timestamp).Scan(&newId)
		if err != nil {
			return 0, 0, fmt.Errorf("import question %s: %w", q.Id, err)
		}
		questions++

		for _, r := range q.SortedReplies() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO replies(question_id, text, created_ms) VALUES($1, $2, $3)`,
				newId, r.Text, r.Timestamp); err != nil {
				return 0, 0, fmt.Errorf("import reply %s: %w", r.Id, err)
			}
			replies++
		}
		logger.Log.Debug("imported question", "component", "remote_store", "local_id", q.Id, "remote_id", newId)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return questions, replies, nil
}
