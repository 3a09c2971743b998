package tests

import (
	"github.com/hunter4ass/OWLD/internal/domain"
)

func (s *IntegrationTestSuite) TestCartSaveAndGet() {
	cart := &domain.Cart{Items: []domain.CartItem{
		{
			Product:  domain.Product{ID: 1, Name: "Молоко", Price: 100, InStock: true},
			Quantity: 2,
		},
	}}

	s.Require().NoError(s.CartRepo.Save(s.Ctx, "user-1", cart))

	got, err := s.CartRepo.Get(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(got.Items, 1)
	s.Equal(int64(200), got.TotalPrice())
}

func (s *IntegrationTestSuite) TestCartMissingIsEmpty() {
	got, err := s.CartRepo.Get(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(got.Items)
}

func (s *IntegrationTestSuite) TestCartClear() {
	cart := &domain.Cart{Items: []domain.CartItem{
		{Product: domain.Product{ID: 1, Price: 100}, Quantity: 1},
	}}
	s.Require().NoError(s.CartRepo.Save(s.Ctx, "user-1", cart))

	s.Require().NoError(s.CartRepo.Clear(s.Ctx, "user-1"))

	got, err := s.CartRepo.Get(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(got.Items)
}

func (s *IntegrationTestSuite) TestCartCorruptedPayloadTreatedAsEmpty() {
	s.Require().NoError(s.RedisClient.Set(s.Ctx, "cart:user-1", "{broken json", 0).Err())

	got, err := s.CartRepo.Get(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(got.Items)
}
