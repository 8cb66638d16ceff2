package pg

import (
	"context"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
)

// FindUnlinkedPosts lists posts whose parent does not carry them in child_ids.
func (s *Storage) FindUnlinkedPosts(ctx context.Context) ([]domain.PostLink, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT c.thread_id, p.id, c.id
        FROM posts c
        JOIN posts p ON p.thread_id = c.thread_id AND p.id = c.parent_id
        WHERE NOT (c.id = ANY(p.child_ids))
        ORDER BY c.seq
    `)
	if err != nil {
		return nil, internal_errors.Storage("find unlinked posts", err)
	}
	defer rows.Close()

	var links []domain.PostLink
	for rows.Next() {
		var link domain.PostLink
		if err := rows.Scan(&link.ThreadId, &link.ParentId, &link.ChildId); err != nil {
			return nil, internal_errors.Storage("scan post link", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, internal_errors.Storage("find unlinked posts", err)
	}
	return links, nil
}

// LinkChild appends the child id unless already present.
func (s *Storage) LinkChild(ctx context.Context, link domain.PostLink) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE posts SET child_ids = CASE
            WHEN $3 = ANY(child_ids) THEN child_ids
            ELSE array_append(child_ids, $3)
        END
        WHERE thread_id = $1 AND id = $2
    `, link.ThreadId, link.ParentId, link.ChildId)
	if err != nil {
		return internal_errors.Storage("link child", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return internal_errors.Storage("link child", err)
	}
	if affected == 0 {
		return internal_errors.NotFound("post")
	}
	return nil
}

// PruneDanglingChildren rewrites child_ids to only the ids of posts that
// name the row as their parent, keeping order. Returns the number of ids
// removed.
func (s *Storage) PruneDanglingChildren(ctx context.Context) (int64, error) {
	var pruned int64
	err := s.db.QueryRowContext(ctx, `
        WITH pruned AS (
            SELECT p.id,
                cardinality(p.child_ids) AS before,
                ARRAY(
                    SELECT ids.child FROM unnest(p.child_ids) WITH ORDINALITY AS ids(child, ord)
                    WHERE EXISTS (
                        SELECT 1 FROM posts c
                        WHERE c.id = ids.child AND c.thread_id = p.thread_id AND c.parent_id = p.id
                    )
                    ORDER BY ids.ord
                ) AS kept
            FROM posts p
            WHERE cardinality(p.child_ids) > 0
        ), updated AS (
            UPDATE posts SET child_ids = pruned.kept
            FROM pruned
            WHERE posts.id = pruned.id AND cardinality(pruned.kept) <> pruned.before
            RETURNING pruned.before - cardinality(pruned.kept) AS removed
        )
        SELECT COALESCE(SUM(removed), 0) FROM updated
    `).Scan(&pruned)
	if err != nil {
		return 0, internal_errors.Storage("prune dangling children", err)
	}
	return pruned, nil
}
