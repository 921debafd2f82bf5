package handler

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/domain"
)

// pushService hands the test the subscriber callback.
type pushService struct {
	MockQuestionService

	mu       sync.Mutex
	fn       storage.SnapshotFunc
	disposed chan struct{}
}

func newPushService() *pushService {
	s := &pushService{disposed: make(chan struct{})}
	s.SubscribeFunc = func(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
		s.mu.Lock()
		s.fn = fn
		s.mu.Unlock()
		fn(domain.Snapshot{})
		var once sync.Once
		return func() { once.Do(func() { close(s.disposed) }) }, nil
	}
	return s
}

func (s *pushService) push(snap domain.Snapshot) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	fn(snap)
}

// readEvent returns the data line of the next "snapshot" event.
func readEvent(t *testing.T, sc *bufio.Scanner) string {
	t.Helper()
	var event, data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			assert.Equal(t, "snapshot", event)
			return data
		}
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return ""
}

func TestStreamQuestions(t *testing.T) {
	svc := newPushService()
	h := New(svc, testConfig(), nil)
	srv := httptest.NewServer(http.HandlerFunc(h.StreamQuestions))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	assert.JSONEq(t, `{"questions":[]}`, readEvent(t, sc))

	svc.push(domain.Snapshot{"q_1": {Id: "q_1", Text: "Hello", Timestamp: 5, Replies: map[domain.ReplyId]domain.Reply{}}})
	assert.JSONEq(t, `{"questions":[{"id":"q_1","text":"Hello","timestamp":5,"replies":[]}]}`, readEvent(t, sc))

	cancel()
	select {
	case <-svc.disposed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not disposed after the client left")
	}
}

func TestStreamQuestions_SubscribeError(t *testing.T) {
	svc := &MockQuestionService{SubscribeFunc: func(ctx context.Context, fn storage.SnapshotFunc) (storage.Disposer, error) {
		return nil, errors.New("listener failed")
	}}
	rr := httptest.NewRecorder()
	New(svc, testConfig(), nil).StreamQuestions(rr, httptest.NewRequest(http.MethodGet, "/v1/questions/stream", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStreamQuestions_CloseStreams(t *testing.T) {
	svc := newPushService()
	h := New(svc, testConfig(), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.StreamQuestions(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/questions/stream", nil))
	}()

	h.CloseStreams()
	h.CloseStreams()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end on CloseStreams")
	}
	<-svc.disposed
}
