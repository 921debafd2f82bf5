package service

import (
	"context"
	"sync"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/domain"
)

// MockBackend mocks storage.Backend.
type MockBackend struct {
	mode          storage.Mode
	appendFunc    func(ctx context.Context, path domain.CollectionPath, rec domain.Record) (domain.RecordRef, error)
	readAllFunc   func(ctx context.Context) (domain.Snapshot, error)
	subscribeFunc func(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error)
	now           domain.TimeValue
}

func (m *MockBackend) Mode() storage.Mode { return m.mode }

func (m *MockBackend) Append(ctx context.Context, path domain.CollectionPath, rec domain.Record) (domain.RecordRef, error) {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, path, rec)
	}
	return domain.RecordRef{Path: path, Key: "key"}, nil
}

func (m *MockBackend) ReadAll(ctx context.Context) (domain.Snapshot, error) {
	if m.readAllFunc != nil {
		return m.readAllFunc(ctx)
	}
	return domain.Snapshot{}, nil
}

func (m *MockBackend) Subscribe(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
	if m.subscribeFunc != nil {
		return m.subscribeFunc(ctx, fn)
	}
	return func() {}, nil
}

func (m *MockBackend) Now() domain.TimeValue { return m.now }

func (m *MockBackend) Close() error { return nil }

// MockTextValidator mocks TextValidator.
type MockTextValidator struct {
	questionFunc func(text string) error
	replyFunc    func(text string) error
}

func (m *MockTextValidator) Question(text string) error {
	if m.questionFunc != nil {
		return m.questionFunc(text)
	}
	return nil
}

func (m *MockTextValidator) Reply(text string) error {
	if m.replyFunc != nil {
		return m.replyFunc(text)
	}
	return nil
}

// pushBackend is a push-only backend whose snapshots are fed by the test.
type pushBackend struct {
	MockBackend

	mu       sync.Mutex
	fn       storage.SnapshotFunc
	disposed bool
}

func newPushBackend() *pushBackend {
	b := &pushBackend{}
	b.mode = storage.ModeRemote
	b.readAllFunc = func(context.Context) (domain.Snapshot, error) { return nil, storage.ErrPushOnly }
	b.subscribeFunc = func(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
		b.mu.Lock()
		b.fn = fn
		b.mu.Unlock()
		return func() {
			b.mu.Lock()
			b.disposed = true
			b.mu.Unlock()
		}, nil
	}
	return b
}

func (b *pushBackend) push(snap domain.Snapshot) {
	b.mu.Lock()
	fn := b.fn
	b.mu.Unlock()
	fn(snap)
}

func (b *pushBackend) isDisposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}
