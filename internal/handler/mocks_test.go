package handler

import (
	"context"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/domain"
)

// MockQuestionService mocks service.QuestionService.
type MockQuestionService struct {
	CreateQuestionFunc func(ctx context.Context, text string) (domain.RecordRef, error)
	CreateReplyFunc    func(ctx context.Context, questionId domain.QuestionId, text string) (domain.RecordRef, error)
	QuestionsFunc      func(ctx context.Context) (domain.Snapshot, error)
	SubscribeFunc      func(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error)
	mode               storage.Mode
}

func (m *MockQuestionService) CreateQuestion(ctx context.Context, text string) (domain.RecordRef, error) {
	if m.CreateQuestionFunc != nil {
		return m.CreateQuestionFunc(ctx, text)
	}
	return domain.RecordRef{Path: domain.QuestionsPath(), Key: "q_1"}, nil
}

func (m *MockQuestionService) CreateReply(ctx context.Context, questionId domain.QuestionId, text string) (domain.RecordRef, error) {
	if m.CreateReplyFunc != nil {
		return m.CreateReplyFunc(ctx, questionId, text)
	}
	return domain.RecordRef{Path: domain.RepliesPath(questionId), Key: "r_1"}, nil
}

func (m *MockQuestionService) Questions(ctx context.Context) (domain.Snapshot, error) {
	if m.QuestionsFunc != nil {
		return m.QuestionsFunc(ctx)
	}
	return domain.Snapshot{}, nil
}

func (m *MockQuestionService) Subscribe(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, fn)
	}
	return func() {}, nil
}

func (m *MockQuestionService) Mode() storage.Mode {
	return m.mode
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
