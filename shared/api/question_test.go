package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/askanon/shared/domain"
)

func TestNewQuestionsResponse(t *testing.T) {
	snap := domain.Snapshot{
		"q_old": {Text: "old", Timestamp: 100, Replies: map[domain.ReplyId]domain.Reply{
			"r_2": {Id: "r_2", Text: "second", Timestamp: 300},
			"r_1": {Id: "r_1", Text: "first", Timestamp: 200},
		}},
		"q_new": {Id: "q_new", Text: "new", Timestamp: 500, Replies: map[domain.ReplyId]domain.Reply{}},
	}

	resp := NewQuestionsResponse(snap)

	require.Len(t, resp.Questions, 2)
	assert.Equal(t, "q_new", resp.Questions[0].Id)
	assert.Equal(t, "q_old", resp.Questions[1].Id, "id is filled from the map key")
	require.Len(t, resp.Questions[1].Replies, 2)
	assert.Equal(t, "first", resp.Questions[1].Replies[0].Text)
	assert.Equal(t, "second", resp.Questions[1].Replies[1].Text)
	assert.NotNil(t, resp.Questions[0].Replies)
}

func TestNewQuestionsResponse_EmptyEncodesAsArray(t *testing.T) {
	data, err := json.Marshal(NewQuestionsResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":[]}`, string(data))
}

func TestCreateResponse_OmitsEmptyId(t *testing.T) {
	data, err := json.Marshal(CreateResponse{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
