package dto

import "time"

// UploadedFileDTO is the wire shape of one stored file.
type UploadedFileDTO struct {
	Id           int64     `json:"id"`
	OriginalName string    `json:"originalName"`
	FileType     string    `json:"fileType"`
	Status       string    `json:"status"`
	ThreadId     *string   `json:"threadId"`
	DownloadUrl  string    `json:"downloadUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UploadFileResponse struct {
	File UploadedFileDTO `json:"file"`
}

type DeleteFileResponse struct {
	Success bool `json:"success"`
}

// UploadProgressDTO mirrors the tracker state for one in-flight upload.
type UploadProgressDTO struct {
	FileType     string `json:"fileType"`
	OriginalName string `json:"originalName"`
	Progress     int    `json:"progress"`
	Status       string `json:"status"`
	FileId       int64  `json:"fileId,omitempty"`
}

type UploadProgressResponse struct {
	Files []UploadProgressDTO `json:"files"`
}
