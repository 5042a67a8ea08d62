package service_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/broker"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/repository"
	"github.com/roomcast/roomcast/internal/service"
	"github.com/roomcast/roomcast/internal/testutil"
	"github.com/roomcast/roomcast/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PresenceServiceTestSuite struct {
	suite.Suite
	testDB     *testutil.TestDatabase
	fakeBroker *testutil.FakeBroker
	presence   *service.PresenceService
	users      *service.UserService

	room  *models.Room
	alice *models.User
}

func (s *PresenceServiceTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
}

func (s *PresenceServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *PresenceServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.fakeBroker = testutil.NewFakeBroker()

	userRepo := repository.NewUserRepository(s.testDB.DB)
	roomRepo := repository.NewRoomRepository(s.testDB.DB)
	s.presence = service.NewPresenceService(userRepo, s.fakeBroker)
	s.users = service.NewUserService(userRepo, roomRepo, s.fakeBroker, s.presence)

	s.room = testutil.CreateTestRoom(s.T(), s.testDB.DB, "AB12CD", "Test")
	s.alice = testutil.CreateTestUser(s.T(), s.testDB.DB, s.room, "alice", models.RoleUser, models.StatusApproved)
}

func (s *PresenceServiceTestSuite) reload(id uuid.UUID) *models.User {
	var user models.User
	assert.NoError(s.T(), s.testDB.DB.First(&user, "id = ?", id).Error)
	return &user
}

func (s *PresenceServiceTestSuite) TestMarkOnlineReplacesHandle() {
	s.presence.MarkOnline(s.alice.ID, "socket-1")

	user := s.reload(s.alice.ID)
	assert.True(s.T(), user.IsOnline)
	assert.Equal(s.T(), "socket-1", *user.SocketID)

	// Reconnect: the new handle simply replaces the old one.
	s.presence.MarkOnline(s.alice.ID, "socket-2")
	user = s.reload(s.alice.ID)
	assert.Equal(s.T(), "socket-2", *user.SocketID)
}

func (s *PresenceServiceTestSuite) TestMarkOfflineClearsHolder() {
	s.presence.MarkOnline(s.alice.ID, "socket-1")

	affected := s.presence.MarkOffline("socket-1")
	if assert.NotNil(s.T(), affected) {
		assert.Equal(s.T(), s.alice.ID, affected.ID)
	}

	user := s.reload(s.alice.ID)
	assert.False(s.T(), user.IsOnline)
	assert.Nil(s.T(), user.SocketID)
}

func (s *PresenceServiceTestSuite) TestMarkOfflineUnknownHandle() {
	assert.Nil(s.T(), s.presence.MarkOffline("never-registered"))
}

func (s *PresenceServiceTestSuite) TestOnlineApprovedUsers() {
	bob := testutil.CreateTestUser(s.T(), s.testDB.DB, s.room, "bob", models.RoleUser, models.StatusPending)
	carol := testutil.CreateTestUser(s.T(), s.testDB.DB, s.room, "carol", models.RoleUser, models.StatusApproved)

	s.presence.MarkOnline(s.alice.ID, "socket-1")
	s.presence.MarkOnline(bob.ID, "socket-2")   // pending: not listed
	s.presence.MarkOnline(carol.ID, "socket-3") // approved + online: listed
	_ = s.presence.MarkOffline("socket-3")

	online, err := s.presence.OnlineApprovedUsers(s.room.ID)
	assert.NoError(s.T(), err)
	if assert.Len(s.T(), online, 1) {
		assert.Equal(s.T(), "alice", online[0].Username)
	}
}

func (s *PresenceServiceTestSuite) TestBroadcastRoster() {
	s.presence.MarkOnline(s.alice.ID, "socket-1")
	s.presence.BroadcastRoster(s.room.ID, s.room.RoomCode)

	events := s.fakeBroker.EventsOfType(broker.EventRosterChanged)
	if assert.Len(s.T(), events, 1) {
		assert.Equal(s.T(), "AB12CD", events[0].RoomCode)

		var roster []models.RosterEntry
		assert.NoError(s.T(), json.Unmarshal(events[0].Payload, &roster))
		if assert.Len(s.T(), roster, 1) {
			assert.Equal(s.T(), "alice", roster[0].Username)
			assert.True(s.T(), roster[0].IsOnline)
		}
	}
}

func (s *PresenceServiceTestSuite) TestApproveUserPublishesToSocketAndRoom() {
	bob := testutil.CreateTestUser(s.T(), s.testDB.DB, s.room, "bob", models.RoleUser, models.StatusPending)
	s.presence.MarkOnline(bob.ID, "socket-bob")

	approved, err := s.users.ApproveUser(bob.ID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusApproved, approved.Status)

	events := s.fakeBroker.EventsOfType(broker.EventUserApproved)
	if assert.Len(s.T(), events, 1) {
		assert.Equal(s.T(), "socket-bob", events[0].SocketID)
		assert.Equal(s.T(), "AB12CD", events[0].RoomCode)

		var userID string
		assert.NoError(s.T(), json.Unmarshal(events[0].Payload, &userID))
		assert.Equal(s.T(), bob.ID.String(), userID)
	}

	// Membership changed materially: a roster push follows.
	assert.NotEmpty(s.T(), s.fakeBroker.EventsOfType(broker.EventRosterChanged))
}

func (s *PresenceServiceTestSuite) TestApproveUnknownUser() {
	_, err := s.users.ApproveUser(uuid.New())
	assert.ErrorIs(s.T(), err, service.ErrUserNotFound)
}

func (s *PresenceServiceTestSuite) TestKickClearsPresenceButKeepsRecord() {
	s.presence.MarkOnline(s.alice.ID, "socket-1")

	assert.NoError(s.T(), s.users.KickUser(s.alice.ID))

	kicked := s.fakeBroker.EventsOfType(broker.EventUserKicked)
	if assert.Len(s.T(), kicked, 1) {
		assert.Equal(s.T(), "socket-1", kicked[0].SocketID)

		var payload map[string]string
		assert.NoError(s.T(), json.Unmarshal(kicked[0].Payload, &payload))
		assert.Equal(s.T(), "You were removed by Super Admin", payload["message"])
	}

	// The record survives: approved, offline, handle cleared.
	user := s.reload(s.alice.ID)
	assert.Equal(s.T(), models.StatusApproved, user.Status)
	assert.False(s.T(), user.IsOnline)
	assert.Nil(s.T(), user.SocketID)

	// The roster push after the kick no longer lists them.
	rosters := s.fakeBroker.EventsOfType(broker.EventRosterChanged)
	if assert.NotEmpty(s.T(), rosters) {
		var roster []models.RosterEntry
		assert.NoError(s.T(), json.Unmarshal(rosters[len(rosters)-1].Payload, &roster))
		assert.Empty(s.T(), roster)
	}
}

func (s *PresenceServiceTestSuite) TestJoinRequestCreatesPendingUser() {
	user, err := s.users.JoinRequest("dave", " ab12cd ")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusPending, user.Status)
	assert.Equal(s.T(), models.RoleUser, user.Role)
	assert.Equal(s.T(), s.room.ID, user.RoomID)
}

func (s *PresenceServiceTestSuite) TestJoinRequestUnknownRoom() {
	_, err := s.users.JoinRequest("dave", "NOPE42")
	assert.ErrorIs(s.T(), err, service.ErrRoomNotFound)
}

func TestPresenceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PresenceServiceTestSuite))
}
