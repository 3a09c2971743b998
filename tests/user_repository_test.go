package tests

import (
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/repository"
)

func (s *IntegrationTestSuite) TestUserCreateAndGet() {
	user := s.seedUser()

	byID, err := s.UserRepo.GetByID(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, byID.Email)
	s.False(byID.CreatedAt.IsZero())

	byEmail, err := s.UserRepo.GetByEmail(s.Ctx, user.Email)
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *IntegrationTestSuite) TestUserDuplicateEmail() {
	user := s.seedUser()

	dup := &domain.User{
		ID:           "another-id",
		Name:         "Пётр",
		Email:        user.Email,
		PasswordHash: "$2a$12$hash",
	}
	s.Require().ErrorIs(s.UserRepo.Create(s.Ctx, dup), repository.ErrUserAlreadyExists)
}

func (s *IntegrationTestSuite) TestUserNotFound() {
	_, err := s.UserRepo.GetByID(s.Ctx, "missing")
	s.Require().ErrorIs(err, repository.ErrUserNotFound)

	_, err = s.UserRepo.GetByEmail(s.Ctx, "nobody@example.com")
	s.Require().ErrorIs(err, repository.ErrUserNotFound)
}

func (s *IntegrationTestSuite) TestUpdateProfile_PartialFields() {
	user := s.seedUser()

	newName := "Мария"
	updated, err := s.UserRepo.UpdateProfile(s.Ctx, user.ID, &domain.UpdateProfileInput{Name: &newName})
	s.Require().NoError(err)

	s.Equal("Мария", updated.Name)
	// untouched fields survive a partial update
	s.Equal(user.Email, updated.Email)
}
