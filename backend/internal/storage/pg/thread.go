package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
	sharedpg "github.com/itchan-dev/agora/shared/storage/pg"
)

const threadVotesExpr = `COALESCE((SELECT json_object_agg(v.user_id, v.value) FROM thread_votes v WHERE v.thread_id = t.id), '{}')`

func (s *Storage) CreateThread(ctx context.Context, metadata domain.ThreadMetadata) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO threads (id, owner, title, body, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, metadata.Id, metadata.Owner, metadata.Title, metadata.Body, metadata.CreatedAt)
	return storageErr("create thread", "thread", err)
}

// GetThread reads the metadata and the posts from one snapshot, so a
// concurrent delete or reply never shows up half applied.
func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var thread domain.Thread
	err := sharedpg.WithTxOptions(ctx, s.db, sharedpg.ReadSnapshot, func(tx *sql.Tx) error {
		var rawVotes []byte
		err := tx.QueryRowContext(ctx, `
            SELECT t.id, t.owner, t.title, t.body, t.created_at,
                (SELECT COUNT(*) FROM posts p WHERE p.thread_id = t.id),
                `+threadVotesExpr+`
            FROM threads t
            WHERE t.id = $1
        `, id).Scan(
			&thread.Id, &thread.Owner, &thread.Title, &thread.Body, &thread.CreatedAt,
			&thread.NumPosts, &rawVotes,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return internal_errors.NotFound("thread")
			}
			return internal_errors.Storage("get thread", err)
		}
		if thread.Votes, err = decodeVotes(rawVotes); err != nil {
			return internal_errors.Storage("decode thread votes", err)
		}

		thread.Posts, err = listPosts(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Thread{}, err
	}
	return thread, nil
}

func (s *Storage) ListThreadSummaries(ctx context.Context) ([]domain.ThreadMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT t.id, t.owner, t.title, t.body, t.created_at,
            (SELECT COUNT(*) FROM posts p WHERE p.thread_id = t.id),
            `+threadVotesExpr+`
        FROM threads t
        ORDER BY t.created_at DESC, t.id DESC
    `)
	if err != nil {
		return nil, internal_errors.Storage("list threads", err)
	}
	defer rows.Close()

	summaries := []domain.ThreadMetadata{}
	for rows.Next() {
		var m domain.ThreadMetadata
		var rawVotes []byte
		if err := rows.Scan(&m.Id, &m.Owner, &m.Title, &m.Body, &m.CreatedAt, &m.NumPosts, &rawVotes); err != nil {
			return nil, internal_errors.Storage("scan thread", err)
		}
		if m.Votes, err = decodeVotes(rawVotes); err != nil {
			return nil, internal_errors.Storage("decode thread votes", err)
		}
		summaries = append(summaries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, internal_errors.Storage("list threads", err)
	}
	return summaries, nil
}

// DeleteThread removes the thread. Posts and votes go with it by cascade.
func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		return internal_errors.Storage("delete thread", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return internal_errors.Storage("delete thread", err)
	}
	if affected == 0 {
		return internal_errors.NotFound("thread")
	}
	return nil
}
