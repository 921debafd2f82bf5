package domain

import (
	"fmt"
	"strings"
)

const questionsCollection = "questions"
const repliesCollection = "replies"

// CollectionPath addresses either the top-level question collection or the
// reply collection of one question.
type CollectionPath struct {
	questionId QuestionId
}

func QuestionsPath() CollectionPath {
	return CollectionPath{}
}

func RepliesPath(questionId QuestionId) CollectionPath {
	return CollectionPath{questionId: questionId}
}

// IsReplies reports whether the path targets a question's reply collection.
func (p CollectionPath) IsReplies() bool {
	return p.questionId != ""
}

func (p CollectionPath) QuestionId() QuestionId {
	return p.questionId
}

// String renders the path the way the remote collection is addressed:
// "questions" or "questions/{questionId}/replies".
func (p CollectionPath) String() string {
	if !p.IsReplies() {
		return questionsCollection
	}
	return questionsCollection + "/" + p.questionId + "/" + repliesCollection
}

func ParseCollectionPath(s string) (CollectionPath, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == questionsCollection:
		return QuestionsPath(), nil
	case len(parts) == 3 && parts[0] == questionsCollection && parts[1] != "" && parts[2] == repliesCollection:
		return RepliesPath(parts[1]), nil
	}
	return CollectionPath{}, fmt.Errorf("invalid collection path %q", s)
}
