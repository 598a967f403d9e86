// apps/go-server/internal/results/store.go
//
// Finished-match history.
// Responsibilities:
//   - Persist one row per finished match (both seats, scores, winner, reason).
//   - Serve the most recent matches and a wins leaderboard.
//
// Live game state is never stored here; rooms live in memory only.

package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Reasons a match can end.
const (
	ReasonGoal       = "goal"
	ReasonDisconnect = "disconnect"
)

// NoWinnerSeat marks a match that ended without a winner.
const NoWinnerSeat = -1

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Seat is one side of a finished match. UserID is set for signed-in
// players and drives their profile stats.
type Seat struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	UserID   string `json:"-"`
}

// Result is a finished match. WinnerSeat indexes Seats and is what wins are
// credited by; Winner is the display name only, since nicknames can repeat.
type Result struct {
	ID         int64     `json:"id"`
	RoomID     string    `json:"roomId"`
	Seats      [2]Seat   `json:"seats"`
	Winner     string    `json:"winner"`
	WinnerSeat int       `json:"winnerSeat"`
	Reason     string    `json:"reason"`
	DurationMs int64     `json:"durationMs"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Store persists finished matches in sqlite.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts r and bumps the stats of signed-in seats in one
// transaction. FinishedAt defaults to now.
func (s *Store) Record(ctx context.Context, r Result) error {
	if r.WinnerSeat < NoWinnerSeat || r.WinnerSeat >= len(r.Seats) {
		return fmt.Errorf("results: winner seat %d out of range", r.WinnerSeat)
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO match_results
		    (room_id, player1, score1, player2, score2, winner, winner_seat, reason, duration_ms, finished_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.RoomID, r.Seats[0].Nickname, r.Seats[0].Score, r.Seats[1].Nickname, r.Seats[1].Score,
		r.Winner, r.WinnerSeat, r.Reason, r.DurationMs, r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	for i, seat := range r.Seats {
		if seat.UserID == "" {
			continue
		}
		if err := bumpStats(ctx, tx, seat.UserID, i == r.WinnerSeat); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// bumpStats increments games played and updates wins and streak.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	row := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}

// Recent returns the latest matches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, player1, score1, player2, score2, winner, winner_seat, reason, duration_ms, finished_at
		 FROM match_results
		 ORDER BY finished_at DESC, id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var finished string
		if err := rows.Scan(&r.ID, &r.RoomID,
			&r.Seats[0].Nickname, &r.Seats[0].Score, &r.Seats[1].Nickname, &r.Seats[1].Score,
			&r.Winner, &r.WinnerSeat, &r.Reason, &r.DurationMs, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LBRow is one leaderboard line.
type LBRow struct {
	Nickname   string `json:"nickname"`
	Wins       int    `json:"wins"`
	Played     int    `json:"played"`
	TotalScore int    `json:"totalScore"`
}

// Leaderboard ranks nicknames by wins, then by total score. A win is
// credited to the winning seat only.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT nickname,
		        SUM(CASE WHEN seat = winner_seat THEN 1 ELSE 0 END) AS wins,
		        COUNT(1)   AS played,
		        SUM(score) AS total
		 FROM (
		     SELECT player1 AS nickname, score1 AS score, 0 AS seat, winner_seat FROM match_results
		     UNION ALL
		     SELECT player2 AS nickname, score2 AS score, 1 AS seat, winner_seat FROM match_results WHERE player2 <> ''
		 )
		 GROUP BY nickname
		 ORDER BY wins DESC, total DESC, nickname ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Nickname, &r.Wins, &r.Played, &r.TotalScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
