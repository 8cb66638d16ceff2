package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
	sharedpg "github.com/itchan-dev/agora/shared/storage/pg"
	"github.com/lib/pq"
)

const postColumns = `
    p.id, p.thread_id, p.owner, p.content, p.image_ref, p.created_at,
    p.parent_id, p.child_ids, p.deleted,
    COALESCE((SELECT json_object_agg(v.user_id, v.value) FROM post_votes v WHERE v.post_id = p.id), '{}')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	var rawVotes []byte
	childIds := pq.StringArray{}
	if err := row.Scan(
		&p.Id, &p.ThreadId, &p.Owner, &p.Content, &p.ImageRef, &p.CreatedAt,
		&p.ParentId, &childIds, &p.Deleted, &rawVotes,
	); err != nil {
		return domain.Post{}, err
	}
	p.ChildIds = domain.ChildIds(childIds)
	if p.ChildIds == nil {
		p.ChildIds = domain.ChildIds{}
	}
	votes, err := decodeVotes(rawVotes)
	if err != nil {
		return domain.Post{}, err
	}
	p.Votes = votes
	return p, nil
}

// CreatePost inserts the post and appends it to the parent's child ids in
// one transaction. The parent row is locked so concurrent replies to the
// same post serialize on it.
func (s *Storage) CreatePost(ctx context.Context, post domain.Post) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var threadId domain.ThreadId
		err := tx.QueryRowContext(ctx, `SELECT id FROM threads WHERE id = $1 FOR SHARE`, post.ThreadId).Scan(&threadId)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return internal_errors.NotFound("thread")
			}
			return internal_errors.Storage("lock thread", err)
		}

		if post.ParentId != nil {
			var one int
			err := tx.QueryRowContext(ctx, `
                SELECT 1 FROM posts WHERE thread_id = $1 AND id = $2 FOR UPDATE
            `, post.ThreadId, *post.ParentId).Scan(&one)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return internal_errors.InvalidReference("parent post does not exist in thread")
				}
				return internal_errors.Storage("lock parent post", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO posts (id, thread_id, owner, content, image_ref, created_at, parent_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, post.Id, post.ThreadId, post.Owner, post.Content, post.ImageRef, post.CreatedAt, post.ParentId)
		if err != nil {
			return storageErr("insert post", "post", err)
		}

		if post.ParentId == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
            UPDATE posts SET child_ids = array_append(child_ids, $3)
            WHERE thread_id = $1 AND id = $2 AND NOT ($3 = ANY(child_ids))
        `, post.ThreadId, *post.ParentId, post.Id)
		if err != nil {
			return internal_errors.Storage("link child", err)
		}
		return nil
	})
}

func (s *Storage) GetPost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.thread_id = $1 AND p.id = $2`, threadId, postId)
	return s.onePost(row, "get post")
}

func (s *Storage) FindPost(ctx context.Context, postId domain.PostId) (domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, postId)
	return s.onePost(row, "find post")
}

func (s *Storage) onePost(row *sql.Row, op string) (domain.Post, error) {
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, internal_errors.NotFound("post")
		}
		return domain.Post{}, internal_errors.Storage(op, err)
	}
	return post, nil
}

func (s *Storage) GetChildren(ctx context.Context, postId domain.PostId) ([]domain.PostId, error) {
	childIds := pq.StringArray{}
	err := s.db.QueryRowContext(ctx, `SELECT child_ids FROM posts WHERE id = $1`, postId).Scan(&childIds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("post")
		}
		return nil, internal_errors.Storage("get children", err)
	}
	if childIds == nil {
		return []domain.PostId{}, nil
	}
	return childIds, nil
}

func (s *Storage) ListPosts(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
	var posts []domain.Post
	err := sharedpg.WithTxOptions(ctx, s.db, sharedpg.ReadSnapshot, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM threads WHERE id = $1)`, threadId).Scan(&exists)
		if err != nil {
			return internal_errors.Storage("check thread", err)
		}
		if !exists {
			return internal_errors.NotFound("thread")
		}
		posts, err = listPosts(ctx, tx, threadId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listPosts(ctx context.Context, q queryer, threadId domain.ThreadId) ([]domain.Post, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.thread_id = $1 ORDER BY p.seq`, threadId)
	if err != nil {
		return nil, internal_errors.Storage("list posts", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, internal_errors.Storage("scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, internal_errors.Storage("list posts", err)
	}
	return posts, nil
}

// SoftDeletePost clears content and image in a single statement. It reports
// false without error when the post was already deleted.
func (s *Storage) SoftDeletePost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
        UPDATE posts SET content = NULL, image_ref = NULL, deleted = TRUE
        WHERE thread_id = $1 AND id = $2 AND NOT deleted
    `, threadId, postId)
	if err != nil {
		return false, internal_errors.Storage("soft delete post", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, internal_errors.Storage("soft delete post", err)
	}
	if affected > 0 {
		return true, nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM posts WHERE thread_id = $1 AND id = $2)
    `, threadId, postId).Scan(&exists)
	if err != nil {
		return false, internal_errors.Storage("check post", err)
	}
	if !exists {
		return false, internal_errors.NotFound("post")
	}
	return false, nil
}
