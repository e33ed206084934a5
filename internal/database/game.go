// internal/database/game.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PlayerResult is one seat of a finished game.
type PlayerResult struct {
	ID        uuid.UUID
	Name      string
	CardsLeft int
}

// GameResult is the final outcome of one deal.
type GameResult struct {
	GameID     uuid.UUID
	WinnerID   uuid.UUID
	WinnerName string
	Players    []PlayerResult
	EndedAt    time.Time
}

// ResultStore persists finished games.
type ResultStore struct {
	db TxBeginner
}

func NewResultStore(db TxBeginner) *ResultStore {
	return &ResultStore{db: db}
}

// RecordGameResult marks the game completed and writes one game_results row per seat.
func (s *ResultStore) RecordGameResult(ctx context.Context, res GameResult) error {
	if res.EndedAt.IsZero() {
		res.EndedAt = time.Now()
	}
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, end_time, winner_id, winner_name)
			VALUES ($1, 'completed', $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET status = 'completed', end_time = $2, winner_id = $3, winner_name = $4
		`
		if _, err := tx.Exec(ctx, upsertGame, res.GameID, res.EndedAt, res.WinnerID, res.WinnerName); err != nil {
			return err
		}

		for seat, pl := range res.Players {
			q := `
				INSERT INTO game_results (game_id, player_id, player_name, seat, cards_left, did_win)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET player_name = $3, seat = $4, cards_left = $5, did_win = $6
			`
			if _, err := tx.Exec(ctx, q, res.GameID, pl.ID, pl.Name, seat, pl.CardsLeft, pl.ID == res.WinnerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}
