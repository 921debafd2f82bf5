package domain

type (
	QuestionId = string
	ReplyId    = string
	Text       = string

	// Millis is a point in time as epoch milliseconds. Zero means no time is known.
	Millis = int64
)

// Snapshot is the full current mapping of questions (with nested replies).
type Snapshot map[QuestionId]Question
