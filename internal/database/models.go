package database

import (
	"time"

	"github.com/studyhall/tutormatch/internal/types"
)

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Tutor struct {
	Id        int
	UserId    int
	Online    bool
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type QueueEntry struct {
	Id            int
	StudentId     int
	Subject       string
	Urgency       types.Urgency
	Description   string
	EstimatedTime int
	Status        types.QueueStatus
	Position      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ChatRoom struct {
	Id         int
	ExternalId string
	Name       string
	IsPrivate  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Session struct {
	Id            int
	Name          string
	StudentId     int
	TutorId       int
	Subject       string
	Urgency       types.Urgency
	Description   string
	EstimatedTime int
	Status        types.SessionStatus
	ChatRoomId    int
	ChatRoomExtId string
	StartTime     time.Time
	EndTime       *time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type CreateQueueEntryParams struct {
	StudentId     int
	Subject       string
	Urgency       types.Urgency
	Description   string
	EstimatedTime int
	Position      int
}

type CreateChatRoomParams struct {
	ExternalId string
	Name       string
	IsPrivate  bool
}

type CreateSessionParams struct {
	Name          string
	StudentId     int
	TutorId       int
	Subject       string
	Urgency       types.Urgency
	Description   string
	EstimatedTime int
	ChatRoomId    int
}
