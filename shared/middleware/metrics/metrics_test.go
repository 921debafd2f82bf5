package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Post("/v1/questions/{questionId}/replies", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	counter := httpRequestsTotal.WithLabelValues(http.MethodPost, "/v1/questions/{questionId}/replies", "201")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"q_1", "q_2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/questions/"+id+"/replies", nil))
		assert.Equal(t, http.StatusCreated, rr.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestResponseWriter_Flush(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := newResponseWriter(rr)

	var w http.ResponseWriter = rw
	f, ok := w.(http.Flusher)
	assert.True(t, ok)
	f.Flush()
	assert.True(t, rr.Flushed)
}
