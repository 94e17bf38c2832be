package dto

import "time"

// SendChatRequest is the body of POST /api/chat. All fields are optional: a
// turn may carry only files, only text, or nothing (which short-circuits).
type SendChatRequest struct {
	Message   string  `json:"message"`
	ThreadId  *string `json:"threadId"`
	SessionId string  `json:"sessionId"`
	FileIds   []int64 `json:"fileIds"`
}

type SendChatResponse struct {
	Reply    string `json:"reply"`
	ThreadId string `json:"threadId"`
}

type NewThreadResponse struct {
	ThreadId string `json:"threadId"`
	Success  bool   `json:"success"`
}

// MessageFileDTO describes a file attached to a rendered message.
type MessageFileDTO struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	FileType    string `json:"fileType"`
	DownloadUrl string `json:"downloadUrl"`
}

type MessageDTO struct {
	MessageId string           `json:"messageId"`
	Role      string           `json:"role"`
	Text      string           `json:"text"`
	Timestamp time.Time        `json:"timestamp"`
	Files     []MessageFileDTO `json:"files"`
}

type MessagesResponse struct {
	Messages []MessageDTO `json:"messages"`
}

type ThreadDTO struct {
	ThreadId  string    `json:"threadId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	MsgCount  int64     `json:"msgCount"`
}

type ListThreadsResponse struct {
	Threads []ThreadDTO `json:"threads"`
}

type DeleteThreadResponse struct {
	Success bool `json:"success"`
}

type SummarizeRequest struct {
	ThreadId string `json:"threadId" validate:"required"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// AnalyzeCostsRequest is the body of POST /api/tools/analyzeCosts, the
// direct one-shot analysis endpoint that bypasses threading.
type AnalyzeCostsRequest struct {
	Plan    string `json:"plan"`
	Metrics string `json:"metrics"`
	Comment string `json:"comment"`
}

type AnalyzeCostsResponse struct {
	Suggestion string `json:"suggestion"`
}
