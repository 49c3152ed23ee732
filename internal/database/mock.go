package database

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/studyhall/tutormatch/internal/types"
)

type MockTutorMatchRepository struct {
	mock.Mock
}

func (m *MockTutorMatchRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockTutorMatchRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTutorMatchRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTutorMatchRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTutorMatchRepository) CreateTutor(userId int) (Tutor, error) {
	args := m.Called(userId)
	return args.Get(0).(Tutor), args.Error(1)
}
func (m *MockTutorMatchRepository) GetTutorById(tutorId int) (Tutor, error) {
	args := m.Called(tutorId)
	return args.Get(0).(Tutor), args.Error(1)
}
func (m *MockTutorMatchRepository) GetTutorByUserId(userId int) (Tutor, error) {
	args := m.Called(userId)
	return args.Get(0).(Tutor), args.Error(1)
}
func (m *MockTutorMatchRepository) UpdateTutorStatus(tutorId int, online, available bool) (Tutor, error) {
	args := m.Called(tutorId, online, available)
	return args.Get(0).(Tutor), args.Error(1)
}
func (m *MockTutorMatchRepository) CreateQueueEntry(params CreateQueueEntryParams) (QueueEntry, error) {
	args := m.Called(params)
	return args.Get(0).(QueueEntry), args.Error(1)
}
func (m *MockTutorMatchRepository) GetQueueEntryById(entryId int) (QueueEntry, error) {
	args := m.Called(entryId)
	return args.Get(0).(QueueEntry), args.Error(1)
}
func (m *MockTutorMatchRepository) GetActiveQueueEntryForStudent(studentId int) (QueueEntry, error) {
	args := m.Called(studentId)
	return args.Get(0).(QueueEntry), args.Error(1)
}
func (m *MockTutorMatchRepository) GetInProgressQueueEntryForStudent(studentId int) (QueueEntry, error) {
	args := m.Called(studentId)
	return args.Get(0).(QueueEntry), args.Error(1)
}
func (m *MockTutorMatchRepository) ListWaitingQueueEntries() ([]QueueEntry, error) {
	args := m.Called()
	return args.Get(0).([]QueueEntry), args.Error(1)
}
func (m *MockTutorMatchRepository) CountWaitingQueueEntries() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}
func (m *MockTutorMatchRepository) UpdateQueueEntryStatus(entryId int, status types.QueueStatus) error {
	args := m.Called(entryId, status)
	return args.Error(0)
}
func (m *MockTutorMatchRepository) CancelWaitingQueueEntries(studentId int) error {
	args := m.Called(studentId)
	return args.Error(0)
}
func (m *MockTutorMatchRepository) RecomputeWaitingPositions() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockTutorMatchRepository) ListQueueEntriesForStudent(studentId int) ([]QueueEntry, error) {
	args := m.Called(studentId)
	return args.Get(0).([]QueueEntry), args.Error(1)
}
func (m *MockTutorMatchRepository) CreateChatRoom(params CreateChatRoomParams) (ChatRoom, error) {
	args := m.Called(params)
	return args.Get(0).(ChatRoom), args.Error(1)
}
func (m *MockTutorMatchRepository) GetChatRoomByExternalId(externalId string) (ChatRoom, error) {
	args := m.Called(externalId)
	return args.Get(0).(ChatRoom), args.Error(1)
}
func (m *MockTutorMatchRepository) DeleteChatRoom(roomId int) error {
	args := m.Called(roomId)
	return args.Error(0)
}
func (m *MockTutorMatchRepository) CreateSession(params CreateSessionParams) (Session, error) {
	args := m.Called(params)
	return args.Get(0).(Session), args.Error(1)
}
func (m *MockTutorMatchRepository) GetActiveSessionForStudent(studentId int) (Session, error) {
	args := m.Called(studentId)
	return args.Get(0).(Session), args.Error(1)
}
func (m *MockTutorMatchRepository) GetActiveSessionForTutor(tutorId int) (Session, error) {
	args := m.Called(tutorId)
	return args.Get(0).(Session), args.Error(1)
}
func (m *MockTutorMatchRepository) GetActiveSessionByChatRoom(chatRoomId int) (Session, error) {
	args := m.Called(chatRoomId)
	return args.Get(0).(Session), args.Error(1)
}
func (m *MockTutorMatchRepository) EndSession(sessionId int, endTime time.Time) (Session, error) {
	args := m.Called(sessionId, endTime)
	return args.Get(0).(Session), args.Error(1)
}
func (m *MockTutorMatchRepository) DeleteSession(sessionId int) error {
	args := m.Called(sessionId)
	return args.Error(0)
}
