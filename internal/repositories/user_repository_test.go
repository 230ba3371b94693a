package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/zeus-03/pennytrail/internal/database"
	"github.com/zeus-03/pennytrail/internal/models"
)

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

type UserRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo UserRepositoryInterface
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewUserRepository(s.db.DB)
}

func (s *UserRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *UserRepositorySuite) newUser(email string) *models.User {
	return &models.User{
		Email:        email,
		PasswordHash: "hashed_password",
		Name:         "Test User",
		Role:         models.RoleUser,
	}
}

func (s *UserRepositorySuite) TestUserRepository_Create() {
	user := s.newUser("test@example.com")

	err := s.repo.Create(user)
	s.NoError(err)
	s.NotEqual(uuid.Nil, user.ID)
	s.NotZero(user.CreatedAt)
	s.NotZero(user.UpdatedAt)
}

func (s *UserRepositorySuite) TestUserRepository_Create_DuplicateEmail() {
	s.NoError(s.repo.Create(s.newUser("dup@example.com")))

	err := s.repo.Create(s.newUser("dup@example.com"))
	s.Equal(ErrUserAlreadyExists, err)
}

func (s *UserRepositorySuite) TestUserRepository_GetByEmail() {
	user := s.newUser("test@example.com")
	s.NoError(s.repo.Create(user))

	foundUser, err := s.repo.GetByEmail("test@example.com")
	s.NoError(err)
	s.Equal(user.ID, foundUser.ID)
	s.Equal(user.Email, foundUser.Email)

	_, err = s.repo.GetByEmail("nonexistent@example.com")
	s.Equal(ErrUserNotFound, err)
}

func (s *UserRepositorySuite) TestUserRepository_Update() {
	user := s.newUser("test@example.com")
	s.NoError(s.repo.Create(user))

	user.Name = "Updated Name"
	user.FailedLoginAttempts = 2
	s.NoError(s.repo.Update(user))

	updatedUser, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal("Updated Name", updatedUser.Name)
	s.Equal(2, updatedUser.FailedLoginAttempts)
}

func (s *UserRepositorySuite) TestUserRepository_UnlockAccount() {
	user := s.newUser("locked@example.com")
	user.FailedLoginAttempts = 3
	s.NoError(s.repo.Create(user))

	s.NoError(s.repo.UnlockAccount(user.ID))

	unlockedUser, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal(0, unlockedUser.FailedLoginAttempts)
	s.Nil(unlockedUser.LockedAt)
}

func (s *UserRepositorySuite) TestUserRepository_BeginSync() {
	user := s.newUser("sync@example.com")
	s.NoError(s.repo.Create(user))

	started, err := s.repo.BeginSync(user.ID)
	s.NoError(err)
	s.True(started)

	// Second claim while the first is still running must be rejected.
	started, err = s.repo.BeginSync(user.ID)
	s.NoError(err)
	s.False(started)
}

func (s *UserRepositorySuite) TestUserRepository_FinishSync() {
	user := s.newUser("sync@example.com")
	s.NoError(s.repo.Create(user))

	started, err := s.repo.BeginSync(user.ID)
	s.NoError(err)
	s.True(started)

	syncedAt := time.Now().UTC().Truncate(time.Second)
	s.NoError(s.repo.FinishSync(user.ID, 40, 12, syncedAt))

	updated, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.False(updated.SyncInProgress)
	s.Equal(40, updated.TotalEmails)
	s.Equal(12, updated.TransactionalEmails)
	s.NotNil(updated.LastSyncDate)

	// Counters accumulate across runs.
	started, err = s.repo.BeginSync(user.ID)
	s.NoError(err)
	s.True(started)
	s.NoError(s.repo.FinishSync(user.ID, 10, 3, time.Now()))

	updated, err = s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal(50, updated.TotalEmails)
	s.Equal(15, updated.TransactionalEmails)
}

func (s *UserRepositorySuite) TestUserRepository_Delete() {
	user := s.newUser("delete@example.com")
	s.NoError(s.repo.Create(user))

	s.NoError(s.repo.Delete(user.ID))

	_, err := s.repo.GetByID(user.ID)
	s.Equal(ErrUserNotFound, err)
}

func (s *UserRepositorySuite) TestUserRepository_GetByIDActive() {
	user := s.newUser("active@example.com")
	s.NoError(s.repo.Create(user))

	foundUser, err := s.repo.GetByIDActive(user.ID)
	s.NoError(err)
	s.Equal(user.ID, foundUser.ID)

	s.NoError(s.repo.Delete(user.ID))

	_, err = s.repo.GetByIDActive(user.ID)
	s.Equal(ErrUserNotFound, err)

	_, err = s.repo.GetByIDActive(uuid.New())
	s.Equal(ErrUserNotFound, err)
}

func (s *UserRepositorySuite) TestUserRepository_UpdateFields() {
	user := s.newUser("fields@example.com")
	s.NoError(s.repo.Create(user))

	err := s.repo.UpdateFields(user.ID, map[string]interface{}{
		"name":    "Renamed",
		"picture": "https://example.com/avatar.png",
	})
	s.NoError(err)

	updated, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal("Renamed", updated.Name)
	s.Equal("https://example.com/avatar.png", updated.Picture)

	err = s.repo.UpdateFields(uuid.New(), map[string]interface{}{"name": "Nobody"})
	s.Equal(ErrUserNotFound, err)
}
