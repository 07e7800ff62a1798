package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"orderhub/internal/domain"
)

func TestEventType_TargetRoles(t *testing.T) {
	t.Parallel()

	both := []domain.Role{domain.RoleKitchen, domain.RoleWaiter}

	tests := []struct {
		eventType domain.EventType
		want      []domain.Role
	}{
		{domain.EventOrderCreated, both},
		{domain.EventOrderStatusChanged, both},
		{domain.EventPaymentStatusChanged, both},
		{domain.EventKitchenReady, []domain.Role{domain.RoleWaiter}},
		{domain.EventDeliveryPickup, []domain.Role{domain.RoleKitchen}},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.eventType.TargetRoles(), "roles for %s", tt.eventType)
	}
}

func TestNotificationFor(t *testing.T) {
	t.Parallel()

	order := domain.Order{ID: "order-1", RestaurantID: "restaurant-1", Status: domain.StatusReady}

	t.Run("it should build an order-received notification for a created order", func(t *testing.T) {
		n := domain.NotificationFor(domain.Event{Type: domain.EventOrderCreated}, order)
		require.Equal(t, domain.ChannelOrderReceived, n.Channel)
		require.Equal(t, "NEW_ORDER", n.Type)
		require.Equal(t, "order-1", n.Order.ID)
	})

	t.Run("it should build a kitchen notification with the order id in the message", func(t *testing.T) {
		n := domain.NotificationFor(domain.Event{Type: domain.EventKitchenReady}, order)
		require.Equal(t, domain.ChannelKitchenNotification, n.Channel)
		require.Equal(t, "ORDER_READY", n.Type)
		require.Contains(t, n.Message, "order-1")
		require.Nil(t, n.Order)
	})

	t.Run("it should carry the rider id on a pickup notification", func(t *testing.T) {
		n := domain.NotificationFor(domain.Event{Type: domain.EventDeliveryPickup, RiderID: "rider-7"}, order)
		require.Equal(t, domain.ChannelDeliveryNotification, n.Channel)
		require.Equal(t, "rider-7", n.RiderID)
		require.Contains(t, n.Message, "rider-7")
	})
}
