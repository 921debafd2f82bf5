package domain

type Question struct {
	Id        QuestionId        `json:"id"`
	Text      Text              `json:"text"`
	Timestamp Millis            `json:"timestamp"`
	Replies   map[ReplyId]Reply `json:"replies"`
}

// Reply belongs to exactly one Question and lives inside its Replies map.
type Reply struct {
	Id        ReplyId `json:"id"`
	Text      Text    `json:"text"`
	Timestamp Millis  `json:"timestamp"`
}

// Record is a question or reply payload as written to a backend, before an id
// is assigned. Replies is only meaningful for questions.
type Record struct {
	Text      Text
	Timestamp TimeValue
	Replies   map[ReplyId]Reply
}

// NewQuestionRecord builds the payload for a new question with an empty replies map.
func NewQuestionRecord(text Text, ts TimeValue) Record {
	return Record{Text: text, Timestamp: ts, Replies: map[ReplyId]Reply{}}
}

func NewReplyRecord(text Text, ts TimeValue) Record {
	return Record{Text: text, Timestamp: ts}
}

// RecordRef points at a freshly appended record. An empty Key means nothing was written.
type RecordRef struct {
	Path CollectionPath
	Key  string
}

func (r RecordRef) Written() bool {
	return r.Key != ""
}
