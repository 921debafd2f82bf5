package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/askanon/shared/middleware/ratelimiter"
)

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
		wantErr    bool
	}{
		{name: "ipv4 with port", remoteAddr: "192.168.1.100:54321", want: "192.168.1.100"},
		{name: "ipv6 with port", remoteAddr: "[2001:db8::1]:8080", want: "2001:db8::1"},
		{name: "no port", remoteAddr: "127.0.0.1", want: "127.0.0.1"},
		{name: "garbage", remoteAddr: "not-an-ip", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/questions", nil)
			req.RemoteAddr = tt.remoteAddr
			ip, err := GetIP(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ip)
		})
	}
}

func TestGetIP_IgnoresSpoofedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/questions", nil)
	req.RemoteAddr = "203.0.113.50:12345"
	req.Header.Set("X-Real-IP", "10.0.0.1")
	req.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.3")

	ip, err := GetIP(req)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.50", ip)
}

func TestRateLimit(t *testing.T) {
	rl := ratelimiter.New(0.001, 2, time.Hour)
	defer rl.Stop()

	handler := RateLimit(rl, GetIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/questions", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1:1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.1:2"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:3"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.2:1"), "other clients are unaffected")
	assert.Equal(t, http.StatusInternalServerError, send("bogus"))
}

func TestGlobalRateLimit(t *testing.T) {
	rl := ratelimiter.New(0.001, 1, time.Hour)
	defer rl.Stop()

	handler := GlobalRateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1"
		if i == 1 {
			req.RemoteAddr = "10.0.0.9:1"
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code)
	}
}
