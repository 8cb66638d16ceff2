package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedThread(t *testing.T, s *Storage, id domain.ThreadId) {
	t.Helper()
	require.NoError(t, s.CreateThread(context.Background(), domain.ThreadMetadata{
		Id: id, Owner: "owner", Title: "title", CreatedAt: time.Now().UTC(),
	}))
}

func seedPost(t *testing.T, s *Storage, threadId domain.ThreadId, id domain.PostId, parent *domain.PostId) {
	t.Helper()
	content := "text of " + id
	require.NoError(t, s.CreatePost(context.Background(), domain.Post{
		Id: id, ThreadId: threadId, Owner: "owner", Content: &content, ParentId: parent, CreatedAt: time.Now().UTC(),
	}))
}

func ptr[T any](v T) *T { return &v }

func TestThreadLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedThread(t, s, "t1")

	t.Run("duplicate id", func(t *testing.T) {
		err := s.CreateThread(ctx, domain.ThreadMetadata{Id: "t1"})
		assert.ErrorIs(t, err, internal_errors.ErrConflictingWrite)
	})

	t.Run("get empty thread", func(t *testing.T) {
		thread, err := s.GetThread(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "title", thread.Title)
		assert.Empty(t, thread.Posts)
		assert.NotNil(t, thread.Votes)
	})

	t.Run("summaries count posts", func(t *testing.T) {
		seedPost(t, s, "t1", "p1", nil)
		seedPost(t, s, "t1", "p2", ptr(domain.PostId("p1")))
		summaries, err := s.ListThreadSummaries(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, 2, summaries[0].NumPosts)
	})

	t.Run("delete removes posts and votes", func(t *testing.T) {
		_, err := s.CastVote(ctx, domain.PostVotes, "p1", "a", domain.Upvote)
		require.NoError(t, err)
		require.NoError(t, s.DeleteThread(ctx, "t1"))

		_, err = s.GetThread(ctx, "t1")
		assert.ErrorIs(t, err, internal_errors.ErrNotFound)
		_, err = s.FindPost(ctx, "p1")
		assert.ErrorIs(t, err, internal_errors.ErrNotFound)
		_, err = s.Tally(ctx, domain.PostVotes, "p1")
		assert.ErrorIs(t, err, internal_errors.ErrNotFound)
		assert.ErrorIs(t, s.DeleteThread(ctx, "t1"), internal_errors.ErrNotFound)
	})
}

func TestListThreadSummariesOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateThread(ctx, domain.ThreadMetadata{Id: "old", CreatedAt: base}))
	require.NoError(t, s.CreateThread(ctx, domain.ThreadMetadata{Id: "new", CreatedAt: base.Add(time.Hour)}))

	summaries, err := s.ListThreadSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, domain.ThreadId("new"), summaries[0].Id)
	assert.Equal(t, domain.ThreadId("old"), summaries[1].Id)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedThread(t, s, "t1")
	seedThread(t, s, "t2")
	seedPost(t, s, "t1", "p1", nil)
	seedPost(t, s, "t2", "other", nil)

	t.Run("unknown thread", func(t *testing.T) {
		err := s.CreatePost(ctx, domain.Post{Id: "x", ThreadId: "missing"})
		assert.ErrorIs(t, err, internal_errors.ErrNotFound)
	})

	t.Run("parent in another thread", func(t *testing.T) {
		err := s.CreatePost(ctx, domain.Post{Id: "x", ThreadId: "t1", ParentId: ptr(domain.PostId("other"))})
		assert.ErrorIs(t, err, internal_errors.ErrInvalidReference)
		_, err = s.FindPost(ctx, "x")
		assert.ErrorIs(t, err, internal_errors.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := s.CreatePost(ctx, domain.Post{Id: "p1", ThreadId: "t1"})
		assert.ErrorIs(t, err, internal_errors.ErrConflictingWrite)
	})

	t.Run("children keep creation order", func(t *testing.T) {
		seedPost(t, s, "t1", "c1", ptr(domain.PostId("p1")))
		seedPost(t, s, "t1", "c2", ptr(domain.PostId("p1")))
		children, err := s.GetChildren(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []domain.PostId{"c1", "c2"}, children)

		posts, err := s.ListPosts(ctx, "t1")
		require.NoError(t, err)
		ids := make([]domain.PostId, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.Id)
		}
		assert.Equal(t, []domain.PostId{"p1", "c1", "c2"}, ids)
	})

	t.Run("returned posts are copies", func(t *testing.T) {
		p, err := s.GetPost(ctx, "t1", "p1")
		require.NoError(t, err)
		p.ChildIds[0] = "mutated"
		*p.Content = "mutated"

		again, err := s.GetPost(ctx, "t1", "p1")
		require.NoError(t, err)
		assert.Equal(t, domain.PostId("c1"), again.ChildIds[0])
		assert.Equal(t, "text of p1", again.ContentText())
	})

	t.Run("get post checks thread", func(t *testing.T) {
		_, err := s.GetPost(ctx, "t2", "p1")
		assert.ErrorIs(t, err, internal_errors.ErrNotFound)
	})
}

func TestSoftDeletePost(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedThread(t, s, "t1")
	seedPost(t, s, "t1", "p1", nil)
	seedPost(t, s, "t1", "p2", ptr(domain.PostId("p1")))
	_, err := s.CastVote(ctx, domain.PostVotes, "p1", "a", domain.Upvote)
	require.NoError(t, err)

	changed, err := s.SoftDeletePost(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.True(t, changed)

	p, err := s.GetPost(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.True(t, p.Deleted)
	assert.Nil(t, p.Content)
	assert.Nil(t, p.ImageRef)
	assert.Equal(t, domain.ChildIds{"p2"}, p.ChildIds)
	assert.Equal(t, domain.VoteMap{"a": domain.Upvote}, p.Votes)

	changed, err = s.SoftDeletePost(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.SoftDeletePost(ctx, "t1", "missing")
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)
}

func TestVotes(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedThread(t, s, "t1")
	seedPost(t, s, "t1", "p1", nil)

	cases := []struct {
		name   string
		user   domain.UserId
		dir    domain.VoteValue
		stored domain.VoteValue
		tally  int
	}{
		{"first upvote", "a", domain.Upvote, domain.Upvote, 1},
		{"repeat upvote", "a", domain.Upvote, domain.Upvote, 1},
		{"other user downvotes", "b", domain.Downvote, domain.Downvote, 0},
		{"opposite vote cancels", "a", domain.Downvote, domain.Neutral, -1},
		{"vote again after cancel", "a", domain.Downvote, domain.Downvote, -2},
	}
	for _, tc := range cases {
		value, err := s.CastVote(ctx, domain.PostVotes, "p1", tc.user, tc.dir)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.stored, value, tc.name)
		tally, err := s.Tally(ctx, domain.PostVotes, "p1")
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.tally, tally, tc.name)
	}

	_, ok, err := s.GetVote(ctx, domain.PostVotes, "p1", "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.CastVote(ctx, domain.PostVotes, "missing", "a", domain.Upvote)
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)

	t.Run("thread votes are separate", func(t *testing.T) {
		value, err := s.CastVote(ctx, domain.ThreadVotes, "t1", "a", domain.Upvote)
		require.NoError(t, err)
		assert.Equal(t, domain.Upvote, value)
		tally, err := s.Tally(ctx, domain.ThreadVotes, "t1")
		require.NoError(t, err)
		assert.Equal(t, 1, tally)

		v, ok, err := s.GetVote(ctx, domain.PostVotes, "p1", "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.Downvote, v)
	})
}

func TestConcurrentVotesAndReplies(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedThread(t, s, "t1")
	seedPost(t, s, "t1", "root", nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		user := domain.UserId("u" + string(rune('A'+i%26)) + string(rune('a'+i/26)))
		go func() {
			defer wg.Done()
			_, err := s.CastVote(ctx, domain.PostVotes, "root", user, domain.Upvote)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			content := "reply"
			err := s.CreatePost(ctx, domain.Post{Id: "reply-" + user, ThreadId: "t1", Content: &content, ParentId: ptr(domain.PostId("root"))})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tally, err := s.Tally(ctx, domain.PostVotes, "root")
	require.NoError(t, err)
	assert.Equal(t, n, tally)

	children, err := s.GetChildren(ctx, "root")
	require.NoError(t, err)
	assert.Len(t, children, n)
}

func TestConcurrentVotesFromOneUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedThread(t, s, "t1")
	seedPost(t, s, "t1", "mixed", nil)
	seedPost(t, s, "t1", "same", nil)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		dir := domain.Upvote
		if i%2 == 1 {
			dir = domain.Downvote
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.CastVote(ctx, domain.PostVotes, "mixed", "a", dir)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.CastVote(ctx, domain.PostVotes, "same", "a", domain.Upvote)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	value, ok, err := s.GetVote(ctx, domain.PostVotes, "mixed", "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, []domain.VoteValue{domain.Downvote, domain.Neutral, domain.Upvote}, value)
	post, err := s.GetPost(ctx, "t1", "mixed")
	require.NoError(t, err)
	assert.Equal(t, domain.VoteMap{"a": value}, post.Votes)
	tally, err := s.Tally(ctx, domain.PostVotes, "mixed")
	require.NoError(t, err)
	assert.Equal(t, int(value), tally)

	value, _, err = s.GetVote(ctx, domain.PostVotes, "same", "a")
	require.NoError(t, err)
	assert.Equal(t, domain.Upvote, value)
	tally, err = s.Tally(ctx, domain.PostVotes, "same")
	require.NoError(t, err)
	assert.Equal(t, 1, tally)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedThread(t, s, "t1")
	seedPost(t, s, "t1", "p1", nil)
	seedPost(t, s, "t1", "p2", ptr(domain.PostId("p1")))

	links, err := s.FindUnlinkedPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)

	// simulate a crash between insert and link, plus a stale child id
	s.mu.Lock()
	s.threads["t1"].post("p1").ChildIds = domain.ChildIds{"ghost"}
	s.mu.Unlock()

	links, err = s.FindUnlinkedPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.PostLink{{ThreadId: "t1", ParentId: "p1", ChildId: "p2"}}, links)

	require.NoError(t, s.LinkChild(ctx, links[0]))
	require.NoError(t, s.LinkChild(ctx, links[0]))

	pruned, err := s.PruneDanglingChildren(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	children, err := s.GetChildren(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []domain.PostId{"p2"}, children)

	assert.ErrorIs(t, s.LinkChild(ctx, domain.PostLink{ThreadId: "nope"}), internal_errors.ErrNotFound)
}
