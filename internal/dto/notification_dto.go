package dto

import "time"

// NotificationDTO is the real-time payload pushed over the websocket.
type NotificationDTO struct {
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"createdAt"`
}
