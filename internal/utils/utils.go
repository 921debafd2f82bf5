package utils

import (
	"fmt"
	"unicode/utf8"

	"github.com/itchan-dev/askanon/shared/errors"
)

// TextValidator checks already trimmed user input against the configured limits.
type TextValidator struct {
	QuestionMaxLen int
	ReplyMaxLen    int
}

func New(questionMaxLen, replyMaxLen int) *TextValidator {
	return &TextValidator{QuestionMaxLen: questionMaxLen, ReplyMaxLen: replyMaxLen}
}

func (v *TextValidator) Question(text string) error {
	if text == "" {
		return errors.BadRequest("Please enter a question or confession.")
	}
	if utf8.RuneCountInString(text) > v.QuestionMaxLen {
		return errors.BadRequest(fmt.Sprintf("Question is too long. Maximum %d characters.", v.QuestionMaxLen))
	}
	return nil
}

func (v *TextValidator) Reply(text string) error {
	if text == "" {
		return errors.BadRequest("Please enter a reply.")
	}
	if utf8.RuneCountInString(text) > v.ReplyMaxLen {
		return errors.BadRequest(fmt.Sprintf("Reply is too long. Maximum %d characters.", v.ReplyMaxLen))
	}
	return nil
}
