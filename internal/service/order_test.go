package service_test

import (
	"context"
	"testing"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	customer = entities.User{ID: "cust-1", Name: "Asha", Role: entities.RoleCustomer}
	keeper   = entities.User{ID: "keep-1", Name: "Ravi", Role: entities.RoleShopkeeper}
	keeper2  = entities.User{ID: "keep-2", Name: "Meena", Role: entities.RoleShopkeeper}
	admin    = entities.User{ID: "adm-1", Name: "Root", Role: entities.RoleAdmin}
)

func seedMarket(m *memStore) {
	m.shops["shop-a"] = entities.Shop{
		ID: "shop-a", OwnerID: keeper.ID, Name: "Corner Grocery",
		Status: entities.ShopApproved, DeliveryFee: 15,
	}
	m.shops["shop-b"] = entities.Shop{
		ID: "shop-b", OwnerID: keeper2.ID, Name: "Tailor House",
		Status: entities.ShopApproved, DeliveryFee: 0,
	}
	m.products["rice"] = entities.Product{
		ID: "rice", ShopID: "shop-a", Name: "Rice 1kg", Price: 60, Stock: 10,
	}
	m.products["dal"] = entities.Product{
		ID: "dal", ShopID: "shop-a", Name: "Dal 500g", Price: 45, Stock: 2,
	}
	m.products["stitching"] = entities.Product{
		ID: "stitching", ShopID: "shop-b", Name: "Stitching", Price: 200,
		Stock: entities.ServiceStock, IsService: true,
	}
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("splits the cart per shop and deducts stock", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		orders, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines: []service.CartLine{
				{ProductID: "rice", Quantity: 2},
				{ProductID: "stitching", Quantity: 1},
			},
			PaymentMethod: entities.PaymentCOD,
		})
		require.NoError(t, err)
		require.Len(t, orders, 2)

		// shop IDs are processed in sorted order
		assert.Equal(t, "shop-a", orders[0].ShopID)
		assert.Equal(t, "shop-b", orders[1].ShopID)

		assert.Equal(t, entities.OrderPending, orders[0].Status)
		assert.Equal(t, entities.OrderDirect, orders[0].Type)
		assert.Equal(t, 2*60+15, orders[0].TotalAmount)
		assert.Equal(t, 200, orders[1].TotalAmount)

		assert.Equal(t, 8, m.products["rice"].Stock)
		assert.Equal(t, entities.ServiceStock, m.products["stitching"].Stock)

		require.Len(t, m.events, 2)
		assert.Equal(t, "order.created", m.events[0].Event)
	})

	t.Run("only customers can check out", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		_, err := svc.Checkout(ctx, keeper, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "rice", Quantity: 1}},
			PaymentMethod: entities.PaymentCOD,
		})
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		_, err := svc.Checkout(ctx, customer, service.CheckoutInput{PaymentMethod: entities.PaymentCOD})
		assert.ErrorIs(t, err, entities.ErrValidation)

		_, err = svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "rice", Quantity: 0}},
			PaymentMethod: entities.PaymentCOD,
		})
		assert.ErrorIs(t, err, entities.ErrValidation)

		_, err = svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "rice", Quantity: 1}},
			PaymentMethod: "crypto",
		})
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("unapproved shop fails the whole batch", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		shop := m.shops["shop-b"]
		shop.Status = entities.ShopPending
		m.shops["shop-b"] = shop
		svc := newOrderService(m)

		_, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines: []service.CartLine{
				{ProductID: "rice", Quantity: 1},
				{ProductID: "stitching", Quantity: 1},
			},
			PaymentMethod: entities.PaymentCOD,
		})
		assert.ErrorIs(t, err, entities.ErrValidation)
		assert.Empty(t, m.orders)
		assert.Equal(t, 10, m.products["rice"].Stock)
	})

	t.Run("insufficient stock aborts the batch and restores earlier deductions", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		_, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines: []service.CartLine{
				{ProductID: "rice", Quantity: 2},
				{ProductID: "dal", Quantity: 3}, // only 2 in stock
			},
			PaymentMethod: entities.PaymentCOD,
		})
		assert.ErrorIs(t, err, entities.ErrInsufficientStock)
		assert.Empty(t, m.orders)
		assert.Equal(t, 10, m.products["rice"].Stock)
		assert.Equal(t, 2, m.products["dal"].Stock)
		assert.Empty(t, m.events)
	})

	t.Run("same idempotency key returns the original orders", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		input := service.CheckoutInput{
			Lines:          []service.CartLine{{ProductID: "rice", Quantity: 1}},
			PaymentMethod:  entities.PaymentCOD,
			IdempotencyKey: "retry-123",
		}

		first, err := svc.Checkout(ctx, customer, input)
		require.NoError(t, err)

		second, err := svc.Checkout(ctx, customer, input)
		require.NoError(t, err)

		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID, second[0].ID)
		assert.Equal(t, 9, m.products["rice"].Stock, "retry must not deduct stock twice")
		assert.Len(t, m.orders, 1)
	})

	t.Run("idempotency key works across a multi-shop cart", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		input := service.CheckoutInput{
			Lines: []service.CartLine{
				{ProductID: "rice", Quantity: 1},
				{ProductID: "stitching", Quantity: 1},
			},
			PaymentMethod:  entities.PaymentCOD,
			IdempotencyKey: "retry-multi",
		}

		first, err := svc.Checkout(ctx, customer, input)
		require.NoError(t, err)
		require.Len(t, first, 2, "one order per shop in the cart")

		second, err := svc.Checkout(ctx, customer, input)
		require.NoError(t, err)
		require.Len(t, second, 2)
		assert.ElementsMatch(t,
			[]string{first[0].ID, first[1].ID},
			[]string{second[0].ID, second[1].ID},
		)
		assert.Equal(t, 9, m.products["rice"].Stock, "retry must not deduct stock twice")
		assert.Len(t, m.orders, 2)
	})

	t.Run("idempotency keys are scoped per customer", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		other := entities.User{ID: "cust-2", Name: "Devi", Role: entities.RoleCustomer}

		input := service.CheckoutInput{
			Lines:          []service.CartLine{{ProductID: "rice", Quantity: 1}},
			PaymentMethod:  entities.PaymentCOD,
			IdempotencyKey: "shared-key",
		}

		first, err := svc.Checkout(ctx, customer, input)
		require.NoError(t, err)

		// The same key from another customer must never replay someone
		// else's orders.
		theirs, err := svc.Checkout(ctx, other, input)
		require.NoError(t, err)
		require.Len(t, theirs, 1)
		assert.NotEqual(t, first[0].ID, theirs[0].ID)
		assert.Equal(t, other.ID, theirs[0].CustomerID)
		assert.Equal(t, 8, m.products["rice"].Stock, "each customer's checkout deducts its own stock")
		assert.Len(t, m.orders, 2)
	})

	t.Run("selling the last unit notifies the owner", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		_, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "dal", Quantity: 2}},
			PaymentMethod: entities.PaymentCOD,
		})
		require.NoError(t, err)

		require.Len(t, m.notices, 1)
		assert.Equal(t, keeper.ID, m.notices[0].userID)
		assert.Equal(t, entities.NotificationStock, m.notices[0].kind)
	})

	t.Run("delivery fee includes distance when location is known", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		shop := m.shops["shop-a"]
		shop.PerKmCharge = 10
		shop.Latitude, shop.Longitude = 28.6315, 77.2167
		m.shops["shop-a"] = shop
		svc := newOrderService(m)

		loc := &entities.Location{Lat: 28.6315, Lon: 77.2167}
		orders, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "rice", Quantity: 1}},
			Location:      loc,
			PaymentMethod: entities.PaymentCOD,
		})
		require.NoError(t, err)
		// customer is at the shop, so only the base fee applies
		assert.Equal(t, 60+15, orders[0].TotalAmount)
	})
}

func TestOrderService_CustomListFlow(t *testing.T) {
	ctx := context.Background()

	newList := func(t *testing.T, svc *service.OrderService) entities.Order {
		t.Helper()
		order, err := svc.CreateCustomList(ctx, customer, "shop-a", "2kg rice, 1kg sugar")
		require.NoError(t, err)
		return order
	}

	t.Run("custom list notifies the shopkeeper", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		order := newList(t, svc)
		assert.Equal(t, entities.OrderCustomList, order.Type)
		assert.Equal(t, entities.OrderPending, order.Status)
		assert.Zero(t, order.TotalAmount)

		require.Len(t, m.notices, 1)
		assert.Equal(t, keeper.ID, m.notices[0].userID)
	})

	t.Run("empty list is rejected", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		_, err := svc.CreateCustomList(ctx, customer, "shop-a", "")
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("quote sets both amounts and notifies the customer", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := newList(t, svc)

		quoted, err := svc.SendQuote(ctx, keeper, order.ID, 350)
		require.NoError(t, err)

		assert.Equal(t, entities.OrderQuoted, quoted.Status)
		assert.Equal(t, 350, quoted.QuoteAmount)
		assert.Equal(t, 350, quoted.TotalAmount)

		stored := m.orders[order.ID]
		assert.Equal(t, entities.OrderQuoted, stored.Status)
		assert.Equal(t, 350, stored.QuoteAmount)

		last := m.notices[len(m.notices)-1]
		assert.Equal(t, customer.ID, last.userID)
		assert.Equal(t, entities.NotificationQuote, last.kind)
	})

	t.Run("only the shop owner can quote", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := newList(t, svc)

		_, err := svc.SendQuote(ctx, keeper2, order.ID, 350)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("quote amount must be positive", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := newList(t, svc)

		_, err := svc.SendQuote(ctx, keeper, order.ID, 0)
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("direct orders cannot be quoted", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)

		orders, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "rice", Quantity: 1}},
			PaymentMethod: entities.PaymentCOD,
		})
		require.NoError(t, err)

		_, err = svc.SendQuote(ctx, keeper, orders[0].ID, 100)
		assert.ErrorIs(t, err, entities.ErrInvalidTransition)
	})

	t.Run("accepting the quote pays online and notifies the owner", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := newList(t, svc)

		_, err := svc.SendQuote(ctx, keeper, order.ID, 350)
		require.NoError(t, err)

		accepted, err := svc.AcceptQuote(ctx, customer, order.ID)
		require.NoError(t, err)

		assert.Equal(t, entities.OrderAccepted, accepted.Status)
		assert.Equal(t, entities.PaymentOnline, accepted.PaymentMethod)

		last := m.notices[len(m.notices)-1]
		assert.Equal(t, keeper.ID, last.userID)
	})

	t.Run("only quoted orders can be accepted", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := newList(t, svc)

		_, err := svc.AcceptQuote(ctx, customer, order.ID)
		assert.ErrorIs(t, err, entities.ErrInvalidTransition)
	})

	t.Run("only the customer can accept", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := newList(t, svc)

		_, err := svc.SendQuote(ctx, keeper, order.ID, 350)
		require.NoError(t, err)

		_, err = svc.AcceptQuote(ctx, keeper, order.ID)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("an unaccepted list cannot be delivered, only cancelled", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := newList(t, svc)

		_, err := svc.AdvanceStatus(ctx, keeper, order.ID, entities.OrderAccepted)
		assert.ErrorIs(t, err, entities.ErrInvalidTransition)

		_, err = svc.AdvanceStatus(ctx, keeper, order.ID, entities.OrderCancelled)
		assert.NoError(t, err)
	})
}

func TestOrderService_AdvanceStatus(t *testing.T) {
	ctx := context.Background()

	placeOrder := func(t *testing.T, svc *service.OrderService) entities.Order {
		t.Helper()
		orders, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "rice", Quantity: 1}},
			PaymentMethod: entities.PaymentCOD,
		})
		require.NoError(t, err)
		return orders[0]
	}

	t.Run("walks pending to delivered", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		accepted, err := svc.AdvanceStatus(ctx, keeper, order.ID, entities.OrderAccepted)
		require.NoError(t, err)
		assert.Equal(t, entities.OrderAccepted, accepted.Status)

		delivered, err := svc.AdvanceStatus(ctx, keeper, order.ID, entities.OrderDelivered)
		require.NoError(t, err)
		assert.Equal(t, entities.OrderDelivered, delivered.Status)

		last := m.notices[len(m.notices)-1]
		assert.Equal(t, customer.ID, last.userID)
	})

	t.Run("rejects skipping accepted", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		_, err := svc.AdvanceStatus(ctx, keeper, order.ID, entities.OrderDelivered)
		assert.ErrorIs(t, err, entities.ErrInvalidTransition)
	})

	t.Run("quoted is not a target status", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		_, err := svc.AdvanceStatus(ctx, keeper, order.ID, entities.OrderQuoted)
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		_, err := svc.AdvanceStatus(ctx, keeper, order.ID, "shipped")
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("only the shop owner advances", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		_, err := svc.AdvanceStatus(ctx, keeper2, order.ID, entities.OrderAccepted)
		assert.ErrorIs(t, err, entities.ErrForbidden)

		_, err = svc.AdvanceStatus(ctx, customer, order.ID, entities.OrderAccepted)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	placeOrder := func(t *testing.T, svc *service.OrderService) entities.Order {
		t.Helper()
		orders, err := svc.Checkout(ctx, customer, service.CheckoutInput{
			Lines:         []service.CartLine{{ProductID: "rice", Quantity: 3}},
			PaymentMethod: entities.PaymentCOD,
		})
		require.NoError(t, err)
		return orders[0]
	}

	t.Run("customer cancel keeps stock deducted", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		cancelled, err := svc.Cancel(ctx, customer, order.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.OrderCancelled, cancelled.Status)
		assert.Equal(t, 7, m.products["rice"].Stock, "cancelling must not restock")

		last := m.notices[len(m.notices)-1]
		assert.Equal(t, keeper.ID, last.userID, "owner is told about the cancel")
	})

	t.Run("owner cancel notifies the customer", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		_, err := svc.Cancel(ctx, keeper, order.ID)
		require.NoError(t, err)

		last := m.notices[len(m.notices)-1]
		assert.Equal(t, customer.ID, last.userID)
	})

	t.Run("strangers cannot cancel", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		_, err := svc.Cancel(ctx, keeper2, order.ID)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("terminal orders stay terminal", func(t *testing.T) {
		m := newMemStore()
		seedMarket(m)
		svc := newOrderService(m)
		order := placeOrder(t, svc)

		_, err := svc.Cancel(ctx, customer, order.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, customer, order.ID)
		assert.ErrorIs(t, err, entities.ErrInvalidTransition)
	})
}

func TestOrderService_Reads(t *testing.T) {
	ctx := context.Background()

	m := newMemStore()
	seedMarket(m)
	svc := newOrderService(m)

	orders, err := svc.Checkout(ctx, customer, service.CheckoutInput{
		Lines:         []service.CartLine{{ProductID: "rice", Quantity: 1}},
		PaymentMethod: entities.PaymentCOD,
	})
	require.NoError(t, err)
	order := orders[0]

	t.Run("participants and admins can read", func(t *testing.T) {
		for _, u := range []entities.User{customer, keeper, admin} {
			got, err := svc.GetOrder(ctx, u, order.ID)
			require.NoError(t, err)
			assert.Equal(t, order.ID, got.ID)
		}

		_, err := svc.GetOrder(ctx, keeper2, order.ID)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("shop orders are owner or admin only", func(t *testing.T) {
		_, err := svc.ListShopOrders(ctx, keeper, "shop-a")
		assert.NoError(t, err)

		_, err = svc.ListShopOrders(ctx, admin, "shop-a")
		assert.NoError(t, err)

		_, err = svc.ListShopOrders(ctx, customer, "shop-a")
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("the full ledger is admin only", func(t *testing.T) {
		all, err := svc.ListAllOrders(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		_, err = svc.ListAllOrders(ctx, customer)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})
}
