package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/pkg/metrics"
)

// schemaSQL is embedded so the service can bootstrap its own database schema.
//
//go:embed schema.sql
var schemaSQL string

const (
	connectTimeout  = 10 * time.Second
	uniqueViolation = "23505"
)

// PostgresStore is the durable Store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if the database is unreachable.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by the health endpoint to validate connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// observe records the latency of one repository operation.
func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// mapErr turns driver errors into repository sentinels.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func (p *PostgresStore) CreatePlayer(ctx context.Context, pl model.Player) error {
	defer observe("create_player", time.Now())
	_, err := p.pool.Exec(ctx,
		`INSERT INTO players (id, user_id, name) VALUES ($1, $2, $3)`,
		pl.ID, pl.UserID, pl.Name)
	return mapErr(err)
}

func (p *PostgresStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	defer observe("get_player", time.Now())
	var pl model.Player
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, name FROM players WHERE id = $1`, id,
	).Scan(&pl.ID, &pl.UserID, &pl.Name)
	return pl, mapErr(err)
}

func (p *PostgresStore) ListPlayers(ctx context.Context, userID string, ids []string) ([]model.Player, error) {
	defer observe("list_players", time.Now())
	var (
		rows pgx.Rows
		err  error
	)
	if len(ids) > 0 {
		rows, err = p.pool.Query(ctx,
			`SELECT id, user_id, name FROM players
			 WHERE user_id = $1 AND id = ANY($2)
			 ORDER BY array_position($2, id)`, userID, ids)
	} else {
		rows, err = p.pool.Query(ctx,
			`SELECT id, user_id, name FROM players WHERE user_id = $1 ORDER BY name`, userID)
	}
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Player, error) {
		var pl model.Player
		err := row.Scan(&pl.ID, &pl.UserID, &pl.Name)
		return pl, err
	})
	if out == nil {
		out = []model.Player{}
	}
	return out, err
}

func (p *PostgresStore) PlayerIDs(ctx context.Context) ([]string, error) {
	defer observe("player_ids", time.Now())
	rows, err := p.pool.Query(ctx, `SELECT id FROM players ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *PostgresStore) CreateTeam(ctx context.Context, t model.Team) error {
	defer observe("create_team", time.Now())
	_, err := p.pool.Exec(ctx,
		`INSERT INTO teams (id, user_id, name, player_ids) VALUES ($1, $2, $3, $4)`,
		t.ID, t.UserID, t.Name, nonNil(t.PlayerIDs))
	return mapErr(err)
}

func (p *PostgresStore) GetTeam(ctx context.Context, id string) (model.Team, error) {
	defer observe("get_team", time.Now())
	var t model.Team
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, name, player_ids FROM teams WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.PlayerIDs)
	return t, mapErr(err)
}

func (p *PostgresStore) UpdateTeam(ctx context.Context, t model.Team) error {
	defer observe("update_team", time.Now())
	tag, err := p.pool.Exec(ctx,
		`UPDATE teams SET name = $2, player_ids = $3 WHERE id = $1`,
		t.ID, t.Name, nonNil(t.PlayerIDs))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) ListTeams(ctx context.Context, userID string) ([]model.Team, error) {
	defer observe("list_teams", time.Now())
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, name, player_ids FROM teams WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Team, error) {
		var t model.Team
		err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.PlayerIDs)
		return t, err
	})
	if out == nil {
		out = []model.Team{}
	}
	return out, err
}

const matchColumns = `id, user_id, name, team_ids, cur_team, overs, cur_players,
	on_strike, allow_single_player, has_ended, created_at, updated_at`

func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		m       model.Match
		teamIDs []string
		players []byte
	)
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &teamIDs, &m.CurTeam, &m.Overs, &players,
		&m.OnStrike, &m.AllowSinglePlayer, &m.HasEnded, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Match{}, err
	}
	copy(m.TeamIDs[:], teamIDs)
	if err := json.Unmarshal(players, &m.CurPlayers); err != nil {
		return model.Match{}, fmt.Errorf("decode cur_players: %w", err)
	}
	return m, nil
}

func (p *PostgresStore) CreateMatch(ctx context.Context, m model.Match) error {
	defer observe("create_match", time.Now())
	players, err := json.Marshal(nonNil(m.CurPlayers))
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO matches (`+matchColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.UserID, m.Name, m.TeamIDs[:], m.CurTeam, m.Overs, players,
		m.OnStrike, m.AllowSinglePlayer, m.HasEnded, m.CreatedAt, m.UpdatedAt)
	return mapErr(err)
}

func (p *PostgresStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	defer observe("get_match", time.Now())
	m, err := scanMatch(p.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	return m, mapErr(err)
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func updateMatch(ctx context.Context, q querier, m model.Match) error {
	players, err := json.Marshal(nonNil(m.CurPlayers))
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx,
		`UPDATE matches SET name = $2, cur_team = $3, overs = $4, cur_players = $5,
		 on_strike = $6, allow_single_player = $7, has_ended = $8, updated_at = $9
		 WHERE id = $1`,
		m.ID, m.Name, m.CurTeam, m.Overs, players,
		m.OnStrike, m.AllowSinglePlayer, m.HasEnded, m.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) UpdateMatch(ctx context.Context, m model.Match) error {
	defer observe("update_match", time.Now())
	return updateMatch(ctx, p.pool, m)
}

func (p *PostgresStore) DeleteMatch(ctx context.Context, id string) error {
	defer observe("delete_match", time.Now())
	tag, err := p.pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) ListMatches(ctx context.Context, userID string) ([]model.Match, error) {
	defer observe("list_matches", time.Now())
	rows, err := p.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE user_id = $1 ORDER BY seq DESC`, userID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Match, error) {
		return scanMatch(row)
	})
	if out == nil {
		out = []model.Match{}
	}
	return out, err
}

func (p *PostgresStore) AppendEvents(ctx context.Context, m model.Match, events []model.BallEvent) error {
	defer observe("append_events", time.Now())
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range events {
			batch.Queue(
				`INSERT INTO ball_events (id, match_id, type, batsman_id, bowler_id, dismissed_id, innings, over_no, ball, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				e.ID, m.ID, e.Type, e.BatsmanID, e.BowlerID, e.DismissedID, e.Innings, e.Over, e.Ball, e.CreatedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return mapErr(err)
		}
		return updateMatch(ctx, tx, m)
	})
}

const eventColumns = `id, match_id, type, batsman_id, bowler_id, dismissed_id, innings, over_no, ball, created_at`

func scanEvent(row pgx.CollectableRow) (model.BallEvent, error) {
	var e model.BallEvent
	err := row.Scan(&e.ID, &e.MatchID, &e.Type, &e.BatsmanID, &e.BowlerID, &e.DismissedID,
		&e.Innings, &e.Over, &e.Ball, &e.CreatedAt)
	return e, err
}

func (p *PostgresStore) ListEvents(ctx context.Context, matchID string) ([]model.BallEvent, error) {
	defer observe("list_events", time.Now())
	var exists bool
	if err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, matchID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	rows, err := p.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM ball_events WHERE match_id = $1 ORDER BY seq`, matchID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanEvent)
}

func (p *PostgresStore) UndoLastEvent(ctx context.Context, m model.Match) (model.BallEvent, error) {
	defer observe("undo_event", time.Now())
	var last model.BallEvent
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`DELETE FROM ball_events
			 WHERE seq = (SELECT max(seq) FROM ball_events WHERE match_id = $1)
			 RETURNING `+eventColumns, m.ID)
		if err != nil {
			return err
		}
		last, err = pgx.CollectExactlyOneRow(rows, scanEvent)
		if err != nil {
			return mapErr(err)
		}
		return updateMatch(ctx, tx, m)
	})
	return last, err
}

func (p *PostgresStore) EventsByPlayer(ctx context.Context, playerID string) ([]model.BallEvent, error) {
	defer observe("events_by_player", time.Now())
	rows, err := p.pool.Query(ctx,
		`SELECT e.id, e.match_id, e.type, e.batsman_id, e.bowler_id, e.dismissed_id, e.innings, e.over_no, e.ball, e.created_at
		 FROM ball_events e JOIN matches m ON m.id = e.match_id
		 WHERE e.batsman_id = $1 OR e.bowler_id = $1 OR e.dismissed_id = $1
		 ORDER BY m.seq, e.seq`, playerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanEvent)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
