package tests

import (
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/repository"
)

func (s *IntegrationTestSuite) TestOrderRoundTrip() {
	user := s.seedUser()
	created := s.seedOrder(user.ID, domain.OrderStatusPending)

	got, err := s.OrderRepo.GetByID(s.Ctx, created.ID)
	s.Require().NoError(err)

	s.Equal(created.ID, got.ID)
	s.Equal(user.ID, got.UserID)
	s.Equal(int64(200), got.Total)
	s.Equal(domain.OrderStatusPending, got.Status)
	s.Equal(created.CustomerInfo, got.CustomerInfo)
	s.Require().Len(got.Items, 1)
	s.Equal("Молоко", got.Items[0].Name)
	s.Equal(int32(2), got.Items[0].Quantity)
}

func (s *IntegrationTestSuite) TestGetOrder_NotFound() {
	_, err := s.OrderRepo.GetByID(s.Ctx, "missing")
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestListByUser_NewestFirst() {
	user := s.seedUser()
	first := s.seedOrder(user.ID, domain.OrderStatusDelivered)
	second := s.seedOrder(user.ID, domain.OrderStatusPending)

	// another user's orders never leak in
	other := s.seedUser()
	s.seedOrder(other.ID, domain.OrderStatusPending)

	orders, err := s.OrderRepo.ListByUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.Equal(second.ID, orders[0].ID)
	s.Equal(first.ID, orders[1].ID)
}

func (s *IntegrationTestSuite) TestListUnfinished_ExcludesDelivered() {
	user := s.seedUser()
	active := s.seedOrder(user.ID, domain.OrderStatusCollecting)
	s.seedOrder(user.ID, domain.OrderStatusDelivered)

	orders, err := s.OrderRepo.ListUnfinished(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Equal(active.ID, orders[0].ID)
}

func (s *IntegrationTestSuite) TestUpdateStatus() {
	user := s.seedUser()
	order := s.seedOrder(user.ID, domain.OrderStatusPending)

	s.Require().NoError(s.OrderRepo.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusPreparing))

	got, err := s.OrderRepo.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPreparing, got.Status)

	s.Require().ErrorIs(
		s.OrderRepo.UpdateStatus(s.Ctx, "missing", domain.OrderStatusPreparing),
		repository.ErrOrderNotFound,
	)
}

func (s *IntegrationTestSuite) TestUpdate_PreservesStatus() {
	user := s.seedUser()
	order := s.seedOrder(user.ID, domain.OrderStatusPending)

	s.Require().NoError(s.OrderRepo.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusPreparing))

	// the snapshot still carries pending; persisting it must not rewind
	s.Require().NoError(s.OrderRepo.Update(s.Ctx, order))

	got, err := s.OrderRepo.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPreparing, got.Status)
}

func (s *IntegrationTestSuite) TestUpdate_ReplacesItems() {
	user := s.seedUser()
	order := s.seedOrder(user.ID, domain.OrderStatusPending)

	order.Items = []domain.CartItem{
		{
			Product:  domain.Product{ID: 2, Name: "Хлеб", Price: 50, Category: "snacks", InStock: true},
			Quantity: 3,
		},
	}
	order.CustomerInfo.Address = "пр. Мира, д. 100, кв. 1"
	order.CalculateTotal()

	s.Require().NoError(s.OrderRepo.Update(s.Ctx, order))

	got, err := s.OrderRepo.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(int64(150), got.Total)
	s.Equal("пр. Мира, д. 100, кв. 1", got.CustomerInfo.Address)
	s.Require().Len(got.Items, 1)
	s.Equal("Хлеб", got.Items[0].Name)
	s.Equal(int32(3), got.Items[0].Quantity)
}
