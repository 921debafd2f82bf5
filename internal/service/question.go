package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/errors"
)

// to mock service in tests
type QuestionService interface {
	CreateQuestion(ctx context.Context, text string) (domain.RecordRef, error)
	CreateReply(ctx context.Context, questionId domain.QuestionId, text string) (domain.RecordRef, error)
	Questions(ctx context.Context) (domain.Snapshot, error)
	Subscribe(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error)
	Mode() storage.Mode
}

type TextValidator interface {
	Question(text string) error
	Reply(text string) error
}

type Question struct {
	store     storage.Backend
	validator TextValidator
	feed      *Feed
}

// NewQuestion builds the service. feed may be nil, in which case reads and
// subscriptions go straight to the backend.
func NewQuestion(store storage.Backend, validator TextValidator, feed *Feed) QuestionService {
	return &Question{store: store, validator: validator, feed: feed}
}

func (s *Question) CreateQuestion(ctx context.Context, text string) (domain.RecordRef, error) {
	text = strings.TrimSpace(text)
	if err := s.validator.Question(text); err != nil {
		return domain.RecordRef{}, err
	}

	ref, err := s.store.Append(ctx, domain.QuestionsPath(), domain.NewQuestionRecord(text, s.store.Now()))
	if err != nil {
		return domain.RecordRef{}, fmt.Errorf("create question: %w", err)
	}
	return ref, nil
}

// CreateReply appends a reply to questionId. With the local backend a missing
// question is not an error: the returned ref is simply not Written.
func (s *Question) CreateReply(ctx context.Context, questionId domain.QuestionId, text string) (domain.RecordRef, error) {
	if questionId == "" || strings.Contains(questionId, "/") {
		return domain.RecordRef{}, errors.BadRequest("Invalid question id")
	}
	text = strings.TrimSpace(text)
	if err := s.validator.Reply(text); err != nil {
		return domain.RecordRef{}, err
	}

	ref, err := s.store.Append(ctx, domain.RepliesPath(questionId), domain.NewReplyRecord(text, s.store.Now()))
	if err != nil {
		return domain.RecordRef{}, fmt.Errorf("create reply: %w", err)
	}
	return ref, nil
}

// Questions returns the current snapshot, from the feed when the backend
// cannot answer a one-shot read.
func (s *Question) Questions(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.store.ReadAll(ctx)
	if storage.IsPushOnly(err) {
		if s.feed == nil {
			return nil, fmt.Errorf("read questions: %w", err)
		}
		return s.feed.Snapshot(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return snap, nil
}

func (s *Question) Subscribe(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
	if s.feed != nil {
		return s.feed.Subscribe(ctx, fn), nil
	}
	return s.store.Subscribe(ctx, fn)
}

func (s *Question) Mode() storage.Mode {
	return s.store.Mode()
}
