package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/zeus-03/pennytrail/internal/database"
	"github.com/zeus-03/pennytrail/internal/models"
)

func TestAuditLogRepository(t *testing.T) {
	suite.Run(t, new(AuditLogRepositorySuite))
}

type AuditLogRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo AuditLogRepositoryInterface
}

func (s *AuditLogRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewAuditLogRepository(s.db.DB)
}

func (s *AuditLogRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_Create() {
	userID := uuid.New()

	log := &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionLogin,
		Resource:   "user",
		ResourceID: userID.String(),
		IPAddress:  "192.168.1.1",
		UserAgent:  "Mozilla/5.0",
	}

	err := s.repo.Create(log)
	s.NoError(err)
	s.NotEqual(uuid.Nil, log.ID)
	s.NotZero(log.CreatedAt)
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_CreateWithoutUserID() {
	log := &models.AuditLog{
		UserID:     nil, // Anonymous action
		Action:     models.AuditActionFailedLogin,
		Resource:   "auth",
		ResourceID: "",
		IPAddress:  "192.168.1.1",
		UserAgent:  "Mozilla/5.0",
	}

	err := s.repo.Create(log)
	s.NoError(err)
	s.NotEqual(uuid.Nil, log.ID)
	s.Nil(log.UserID)
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_GetByUserID() {
	userID := uuid.New()

	actions := []string{models.AuditActionLogin, models.AuditActionTransactionCreated, models.AuditActionLogout}
	for _, action := range actions {
		log := &models.AuditLog{
			UserID:     &userID,
			Action:     action,
			Resource:   "user",
			ResourceID: userID.String(),
			IPAddress:  "192.168.1.1",
			UserAgent:  "Mozilla/5.0",
		}
		s.NoError(s.repo.Create(log))
	}

	otherUserID := uuid.New()
	otherLog := &models.AuditLog{
		UserID:     &otherUserID,
		Action:     models.AuditActionLogin,
		Resource:   "user",
		ResourceID: otherUserID.String(),
		IPAddress:  "192.168.1.2",
		UserAgent:  "Chrome",
	}
	s.NoError(s.repo.Create(otherLog))

	logs, total, err := s.repo.GetByUserID(userID, 0, 10)
	s.NoError(err)
	s.Len(logs, 3)
	s.Equal(int64(3), total)

	for _, log := range logs {
		s.NotNil(log.UserID)
		s.Equal(userID, *log.UserID)
	}
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_GetByAction() {
	userID1 := uuid.New()
	userID2 := uuid.New()

	for _, uid := range []uuid.UUID{userID1, userID2} {
		uid := uid
		log := &models.AuditLog{
			UserID:     &uid,
			Action:     models.AuditActionEmailSyncStarted,
			Resource:   "sync",
			ResourceID: uid.String(),
			IPAddress:  "192.168.1.1",
			UserAgent:  "Mozilla/5.0",
		}
		s.NoError(s.repo.Create(log))
	}

	createdLog := &models.AuditLog{
		UserID:     &userID1,
		Action:     models.AuditActionTransactionCreated,
		Resource:   "transaction",
		ResourceID: uuid.New().String(),
		IPAddress:  "192.168.1.1",
		UserAgent:  "Mozilla/5.0",
	}
	s.NoError(s.repo.Create(createdLog))

	logs, total, err := s.repo.GetByAction(models.AuditActionEmailSyncStarted, 0, 10)
	s.NoError(err)
	s.Len(logs, 2)
	s.Equal(int64(2), total)

	for _, log := range logs {
		s.Equal(models.AuditActionEmailSyncStarted, log.Action)
	}

	logs, total, err = s.repo.GetByAction(models.AuditActionTransactionCreated, 0, 10)
	s.NoError(err)
	s.Len(logs, 1)
	s.Equal(int64(1), total)
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_GetFailedLoginAttempts() {
	since := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		log := &models.AuditLog{
			Action:    models.AuditActionFailedLogin,
			Resource:  "auth",
			IPAddress: "192.168.1.1",
			Metadata:  models.JSONBMap{"email": "victim@example.com"},
		}
		s.NoError(s.repo.Create(log))
	}

	otherLog := &models.AuditLog{
		Action:    models.AuditActionFailedLogin,
		Resource:  "auth",
		IPAddress: "192.168.1.1",
		Metadata:  models.JSONBMap{"email": "someone-else@example.com"},
	}
	s.NoError(s.repo.Create(otherLog))

	count, err := s.repo.GetFailedLoginAttempts("victim@example.com", since)
	s.NoError(err)
	s.Equal(int64(3), count)

	count, err = s.repo.GetFailedLoginAttempts("victim@example.com", time.Now().Add(time.Hour))
	s.NoError(err)
	s.Equal(int64(0), count)
}

func (s *AuditLogRepositorySuite) TestAuditLogRepository_DeleteOlderThan() {
	userID := uuid.New()

	log := &models.AuditLog{
		UserID:    &userID,
		Action:    models.AuditActionLogin,
		Resource:  "user",
		IPAddress: "192.168.1.1",
	}
	s.NoError(s.repo.Create(log))

	// Nothing is old enough to delete yet.
	deleted, err := s.repo.DeleteOlderThan(24 * time.Hour)
	s.NoError(err)
	s.Equal(int64(0), deleted)

	// With a zero retention everything goes.
	deleted, err = s.repo.DeleteOlderThan(-time.Minute)
	s.NoError(err)
	s.Equal(int64(1), deleted)
}
