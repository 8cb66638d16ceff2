package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
)

type voteTable struct {
	votes  string // vote rows
	column string // owner key column
	owner  string // table the key references
}

var voteTables = map[domain.VoteTarget]voteTable{
	domain.PostVotes:   {votes: "post_votes", column: "post_id", owner: "posts"},
	domain.ThreadVotes: {votes: "thread_votes", column: "thread_id", owner: "threads"},
}

// CastVote applies the flip rule inside one upsert. Selecting the owner row
// in the same statement makes a missing target produce no row instead of a
// new vote.
func (s *Storage) CastVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error) {
	t := voteTables[target]
	var value domain.VoteValue
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO `+t.votes+` (`+t.column+`, user_id, value)
        SELECT id, $2, $3 FROM `+t.owner+` WHERE id = $1
        ON CONFLICT (`+t.column+`, user_id) DO UPDATE
        SET value = CASE WHEN `+t.votes+`.value + EXCLUDED.value = 0 THEN 0 ELSE EXCLUDED.value END
        RETURNING value
    `, id, userId, dir).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound(target.String())
		}
		return 0, storageErr("cast vote", target.String(), err)
	}
	return value, nil
}

func (s *Storage) GetVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId) (domain.VoteValue, bool, error) {
	t := voteTables[target]
	var value sql.NullInt16
	var exists bool
	err := s.db.QueryRowContext(ctx, `
        SELECT TRUE, (SELECT v.value FROM `+t.votes+` v WHERE v.`+t.column+` = o.id AND v.user_id = $2)
        FROM `+t.owner+` o WHERE o.id = $1
    `, id, userId).Scan(&exists, &value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, internal_errors.NotFound(target.String())
		}
		return 0, false, internal_errors.Storage("get vote", err)
	}
	if !value.Valid {
		return 0, false, nil
	}
	return domain.VoteValue(value.Int16), true, nil
}

func (s *Storage) Tally(ctx context.Context, target domain.VoteTarget, id string) (int, error) {
	t := voteTables[target]
	var tally int
	err := s.db.QueryRowContext(ctx, `
        SELECT COALESCE((SELECT SUM(v.value) FROM `+t.votes+` v WHERE v.`+t.column+` = o.id), 0)
        FROM `+t.owner+` o WHERE o.id = $1
    `, id).Scan(&tally)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound(target.String())
		}
		return 0, internal_errors.Storage("tally votes", err)
	}
	return tally, nil
}
