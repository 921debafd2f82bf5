package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/askanon/shared/errors"
)

func TestTextValidator_Question(t *testing.T) {
	v := New(1000, 500)

	tests := []struct {
		name    string
		text    string
		wantMsg string
	}{
		{name: "valid", text: "Hello"},
		{name: "exactly at limit", text: strings.Repeat("a", 1000)},
		{name: "multibyte at limit", text: strings.Repeat("я", 1000)},
		{name: "empty", text: "", wantMsg: "Please enter a question or confession."},
		{name: "too long", text: strings.Repeat("a", 1001), wantMsg: "Question is too long. Maximum 1000 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Question(tt.text)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var e *errors.ErrorWithStatusCode
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 400, e.StatusCode)
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}

func TestTextValidator_Reply(t *testing.T) {
	v := New(1000, 500)

	assert.NoError(t, v.Reply("World"))
	assert.NoError(t, v.Reply(strings.Repeat("b", 500)))
	assert.EqualError(t, v.Reply(""), "Please enter a reply.")
	assert.EqualError(t, v.Reply(strings.Repeat("b", 501)), "Reply is too long. Maximum 500 characters.")
}
