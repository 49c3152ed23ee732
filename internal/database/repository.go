package database

import (
	"time"

	"github.com/studyhall/tutormatch/internal/types"
)

type TutorMatchRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)

	CreateTutor(userId int) (Tutor, error)
	GetTutorById(tutorId int) (Tutor, error)
	GetTutorByUserId(userId int) (Tutor, error)
	UpdateTutorStatus(tutorId int, online, available bool) (Tutor, error)

	CreateQueueEntry(params CreateQueueEntryParams) (QueueEntry, error)
	GetQueueEntryById(entryId int) (QueueEntry, error)
	GetActiveQueueEntryForStudent(studentId int) (QueueEntry, error)
	GetInProgressQueueEntryForStudent(studentId int) (QueueEntry, error)
	ListWaitingQueueEntries() ([]QueueEntry, error)
	CountWaitingQueueEntries() (int, error)
	UpdateQueueEntryStatus(entryId int, status types.QueueStatus) error
	CancelWaitingQueueEntries(studentId int) error
	RecomputeWaitingPositions() error
	ListQueueEntriesForStudent(studentId int) ([]QueueEntry, error)

	CreateChatRoom(params CreateChatRoomParams) (ChatRoom, error)
	GetChatRoomByExternalId(externalId string) (ChatRoom, error)
	DeleteChatRoom(roomId int) error

	CreateSession(params CreateSessionParams) (Session, error)
	GetActiveSessionForStudent(studentId int) (Session, error)
	GetActiveSessionForTutor(tutorId int) (Session, error)
	GetActiveSessionByChatRoom(chatRoomId int) (Session, error)
	EndSession(sessionId int, endTime time.Time) (Session, error)
	DeleteSession(sessionId int) error
}
