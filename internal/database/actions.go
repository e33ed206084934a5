package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/uno/internal/cache"
)

// InsertActions writes a historian batch in a single transaction, creating the
// games row on first sight. Duplicate (game_id, action_index) pairs are ignored
// so a redelivered batch is harmless.
func InsertActions(ctx context.Context, db TxBeginner, batch []cache.ActionRecord) error {
	if len(batch) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batch {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertActionTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert %d actions: %w", len(batch), err)
	}
	return nil
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec cache.ActionRecord) error {
	upsertGameQ := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', $2)
		ON CONFLICT (id) DO NOTHING
	`
	at := time.UnixMilli(rec.Timestamp)
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID, at); err != nil {
		return err
	}

	var payload []byte
	if rec.ActionPayload != nil {
		var err error
		if payload, err = json.Marshal(rec.ActionPayload); err != nil {
			return err
		}
	}
	actionInsertQ := `
		INSERT INTO game_actions (
			game_id, action_index, actor_id, action_type, action_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err := tx.Exec(ctx, actionInsertQ, rec.GameID, rec.ActionIndex, rec.ActorID, rec.ActionType, payload, at)
	return err
}

// MarkAbandoned flags games still in progress whose newest action is older than cutoff.
func MarkAbandoned(ctx context.Context, db Execer, cutoff time.Time) (int64, error) {
	q := `
		UPDATE games g
		SET status = 'abandoned', end_time = NOW()
		WHERE g.status = 'in_progress'
		AND NOT EXISTS (
			SELECT 1 FROM game_actions a
			WHERE a.game_id = g.id AND a.created_at > $1
		)
	`
	tag, err := db.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	return tag.RowsAffected(), nil
}
