package domain

import (
	"fmt"
	"sort"
)

// SortQuestions returns the snapshot as a slice, newest first. Questions with
// equal timestamps are ordered by id so the output is stable.
func SortQuestions(snap Snapshot) []Question {
	questions := make([]Question, 0, len(snap))
	for id, q := range snap {
		if q.Id == "" {
			q.Id = id
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Timestamp != questions[j].Timestamp {
			return questions[i].Timestamp > questions[j].Timestamp
		}
		return questions[i].Id > questions[j].Id
	})
	return questions
}

// SortedReplies returns the replies oldest first.
func (q Question) SortedReplies() []Reply {
	replies := make([]Reply, 0, len(q.Replies))
	for id, r := range q.Replies {
		if r.Id == "" {
			r.Id = id
		}
		replies = append(replies, r)
	}
	sort.Slice(replies, func(i, j int) bool {
		if replies[i].Timestamp != replies[j].Timestamp {
			return replies[i].Timestamp < replies[j].Timestamp
		}
		return replies[i].Id < replies[j].Id
	})
	return replies
}

// Normalize fills in missing ids from map keys and replaces nil reply maps with
// empty ones, so decoded documents compare equal to the ones that were written.
func (s Snapshot) Normalize() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	for id, q := range s {
		if q.Id == "" {
			q.Id = id
		}
		if q.Replies == nil {
			q.Replies = map[ReplyId]Reply{}
		}
		for rid, r := range q.Replies {
			if r.Id == "" {
				r.Id = rid
				q.Replies[rid] = r
			}
		}
		s[id] = q
	}
	return s
}

// for debug
func (q Question) String() string {
	return fmt.Sprintf("[id:%s, text:%q, timestamp:%d, replies:%d]", q.Id, q.Text, q.Timestamp, len(q.Replies))
}
