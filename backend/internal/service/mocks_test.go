package service

import (
	"context"
	"errors"
	"sync"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
)

// --- Mocks ---

var errDown = internal_errors.Storage("test", errors.New("connection refused"))

type MockVoteStorage struct {
	castVoteFunc func(target domain.VoteTarget, id string, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error)
	getVoteFunc  func(target domain.VoteTarget, id string, userId domain.UserId) (domain.VoteValue, bool, error)
	tallyFunc    func(target domain.VoteTarget, id string) (int, error)

	mu         sync.Mutex
	castCalls  int
	getCalls   int
	tallyCalls int
}

func (m *MockVoteStorage) CastVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error) {
	m.mu.Lock()
	m.castCalls++
	m.mu.Unlock()
	if m.castVoteFunc != nil {
		return m.castVoteFunc(target, id, userId, dir)
	}
	return dir, nil
}

func (m *MockVoteStorage) GetVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId) (domain.VoteValue, bool, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()
	if m.getVoteFunc != nil {
		return m.getVoteFunc(target, id, userId)
	}
	return 0, false, nil
}

func (m *MockVoteStorage) Tally(ctx context.Context, target domain.VoteTarget, id string) (int, error) {
	m.mu.Lock()
	m.tallyCalls++
	m.mu.Unlock()
	if m.tallyFunc != nil {
		return m.tallyFunc(target, id)
	}
	return 0, nil
}

type MockPostStorage struct {
	createPostFunc     func(post domain.Post) error
	getPostFunc        func(threadId domain.ThreadId, postId domain.PostId) (domain.Post, error)
	findPostFunc       func(postId domain.PostId) (domain.Post, error)
	getChildrenFunc    func(postId domain.PostId) ([]domain.PostId, error)
	listPostsFunc      func(threadId domain.ThreadId) ([]domain.Post, error)
	softDeletePostFunc func(threadId domain.ThreadId, postId domain.PostId) (bool, error)

	mu              sync.Mutex
	createCalls     int
	getChildCalls   int
	softDeleteCalls int
}

func (m *MockPostStorage) CreatePost(ctx context.Context, post domain.Post) error {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createPostFunc != nil {
		return m.createPostFunc(post)
	}
	return nil
}

func (m *MockPostStorage) GetPost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (domain.Post, error) {
	if m.getPostFunc != nil {
		return m.getPostFunc(threadId, postId)
	}
	return domain.Post{Id: postId, ThreadId: threadId}, nil
}

func (m *MockPostStorage) FindPost(ctx context.Context, postId domain.PostId) (domain.Post, error) {
	if m.findPostFunc != nil {
		return m.findPostFunc(postId)
	}
	return domain.Post{Id: postId}, nil
}

func (m *MockPostStorage) GetChildren(ctx context.Context, postId domain.PostId) ([]domain.PostId, error) {
	m.mu.Lock()
	m.getChildCalls++
	m.mu.Unlock()
	if m.getChildrenFunc != nil {
		return m.getChildrenFunc(postId)
	}
	return []domain.PostId{}, nil
}

func (m *MockPostStorage) ListPosts(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
	if m.listPostsFunc != nil {
		return m.listPostsFunc(threadId)
	}
	return []domain.Post{}, nil
}

func (m *MockPostStorage) SoftDeletePost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (bool, error) {
	m.mu.Lock()
	m.softDeleteCalls++
	m.mu.Unlock()
	if m.softDeletePostFunc != nil {
		return m.softDeletePostFunc(threadId, postId)
	}
	return true, nil
}

type MockThreadStorage struct {
	createThreadFunc func(metadata domain.ThreadMetadata) error
	getThreadFunc    func(id domain.ThreadId) (domain.Thread, error)
	listFunc         func() ([]domain.ThreadMetadata, error)
	deleteThreadFunc func(id domain.ThreadId) error

	mu          sync.Mutex
	getCalls    int
	deleteCalls int
}

func (m *MockThreadStorage) CreateThread(ctx context.Context, metadata domain.ThreadMetadata) error {
	if m.createThreadFunc != nil {
		return m.createThreadFunc(metadata)
	}
	return nil
}

func (m *MockThreadStorage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()
	if m.getThreadFunc != nil {
		return m.getThreadFunc(id)
	}
	return domain.Thread{ThreadMetadata: domain.ThreadMetadata{Id: id}}, nil
}

func (m *MockThreadStorage) ListThreadSummaries(ctx context.Context) ([]domain.ThreadMetadata, error) {
	if m.listFunc != nil {
		return m.listFunc()
	}
	return []domain.ThreadMetadata{}, nil
}

func (m *MockThreadStorage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	m.mu.Lock()
	m.deleteCalls++
	m.mu.Unlock()
	if m.deleteThreadFunc != nil {
		return m.deleteThreadFunc(id)
	}
	return nil
}

// MockPublisher records published events.
type MockPublisher struct {
	publishFunc func(evt domain.Event) error

	mu     sync.Mutex
	events []domain.Event
}

func (m *MockPublisher) Publish(ctx context.Context, evt domain.Event) error {
	m.mu.Lock()
	m.events = append(m.events, evt)
	m.mu.Unlock()
	if m.publishFunc != nil {
		return m.publishFunc(evt)
	}
	return nil
}

func (m *MockPublisher) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Event(nil), m.events...)
}

type MockValidator struct {
	contentFunc  func(text string) error
	imageRefFunc func(ref string) error
	titleFunc    func(title string) error
	bodyFunc     func(body string) error
}

func (m *MockValidator) Content(text domain.PostText) error {
	if m.contentFunc != nil {
		return m.contentFunc(text)
	}
	return nil
}

func (m *MockValidator) ImageRef(ref domain.ImageRef) error {
	if m.imageRefFunc != nil {
		return m.imageRefFunc(ref)
	}
	return nil
}

func (m *MockValidator) Title(title domain.ThreadTitle) error {
	if m.titleFunc != nil {
		return m.titleFunc(title)
	}
	return nil
}

func (m *MockValidator) Body(body string) error {
	if m.bodyFunc != nil {
		return m.bodyFunc(body)
	}
	return nil
}

// MockSanitizer returns the input unchanged unless sanitizeFunc is set.
type MockSanitizer struct {
	sanitizeFunc func(text string) string
}

func (m *MockSanitizer) Sanitize(text string) string {
	if m.sanitizeFunc != nil {
		return m.sanitizeFunc(text)
	}
	return text
}
