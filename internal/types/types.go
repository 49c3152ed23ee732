package types

import (
	"time"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

type QueueStatus string

const (
	QueueStatusWaiting    QueueStatus = "WAITING"
	QueueStatusInProgress QueueStatus = "IN_PROGRESS"
	QueueStatusCompleted  QueueStatus = "COMPLETED"
	QueueStatusCancelled  QueueStatus = "CANCELLED"
)

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "ACTIVE"
	SessionStatusEnded  SessionStatus = "ENDED"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Tutor struct {
	Id        int       `json:"id"`
	UserId    int       `json:"user_id"`
	Online    bool      `json:"online"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type QueueEntry struct {
	Id            int         `json:"id"`
	StudentId     int         `json:"student_id"`
	Subject       string      `json:"subject"`
	Urgency       Urgency     `json:"urgency"`
	Description   string      `json:"description"`
	EstimatedTime int         `json:"estimated_time"`
	Status        QueueStatus `json:"status"`
	Position      int         `json:"position"`
	CreatedAt     time.Time   `json:"created_at,omitempty"`
}

type Session struct {
	Id            int           `json:"id"`
	Name          string        `json:"name"`
	StudentId     int           `json:"student_id"`
	TutorId       int           `json:"tutor_id"`
	Subject       string        `json:"subject"`
	Urgency       Urgency       `json:"urgency"`
	Description   string        `json:"description"`
	EstimatedTime int           `json:"estimated_time"`
	Status        SessionStatus `json:"status"`
	ChatRoomId    int           `json:"chat_room_id"`
	ChatRoomExtId string        `json:"chat_room_external_id"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
}

type ChatRoom struct {
	Id         int       `json:"id"`
	ExternalId string    `json:"external_id"`
	Name       string    `json:"name"`
	IsPrivate  bool      `json:"is_private"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
