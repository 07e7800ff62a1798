package rest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"orderhub/internal/adapters/primary/rest"
	"orderhub/internal/adapters/secondary/qr"
	"orderhub/internal/domain"
)

type fakeDispatcher struct {
	lastEvent   domain.Event
	dispatchErr error
	orders      []domain.Order
	ordersErr   error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, event domain.Event) (domain.Order, error) {
	d.lastEvent = event
	if d.dispatchErr != nil {
		return domain.Order{}, d.dispatchErr
	}

	return domain.Order{ID: "order-1", RestaurantID: event.RestaurantID, Status: domain.StatusPending}, nil
}

func (d *fakeDispatcher) OpenOrders(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	if d.ordersErr != nil {
		return nil, d.ordersErr
	}

	return d.orders, nil
}

func newServer(t *testing.T, hub *fakeDispatcher) *httptest.Server {
	t.Helper()

	handler := rest.NewHandler(hub, qr.Generator{BaseURL: "http://menu.example.test"})
	srv := httptest.NewServer(rest.NewRouter(handler, nil))
	t.Cleanup(srv.Close)

	return srv
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

const validOrderBody = `{
	"restaurantId": "restaurant-1",
	"tableId": "table-4",
	"customerName": "amara",
	"customerPhone": "0771234567",
	"orderType": "DINE_IN",
	"paymentMethod": "CASH",
	"items": [{"menuItemId": "item-1", "name": "kottu", "quantity": 2, "price": 1200}]
}`

func TestHandler_CreateOrder(t *testing.T) {
	t.Parallel()

	t.Run("it should create an order and return it", func(t *testing.T) {
		hub := &fakeDispatcher{}
		srv := newServer(t, hub)

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", validOrderBody)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			Order domain.Order `json:"order"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "order-1", body.Order.ID)

		require.Equal(t, domain.EventOrderCreated, hub.lastEvent.Type)
		require.NotNil(t, hub.lastEvent.Draft)
		require.Equal(t, "amara", hub.lastEvent.Draft.CustomerName)
	})

	t.Run("it should reject a malformed payload", func(t *testing.T) {
		srv := newServer(t, &fakeDispatcher{})

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "{not json")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("it should reject an order without items", func(t *testing.T) {
		srv := newServer(t, &fakeDispatcher{})

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", `{
			"restaurantId": "restaurant-1",
			"customerName": "amara",
			"customerPhone": "0771234567",
			"orderType": "DINE_IN",
			"paymentMethod": "CASH",
			"items": []
		}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("it should map a validation error from the hub", func(t *testing.T) {
		hub := &fakeDispatcher{dispatchErr: &domain.ValidationError{Field: "restaurantId", Reason: "must not be empty"}}
		srv := newServer(t, hub)

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", validOrderBody)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandler_UpdateOrderStatus(t *testing.T) {
	t.Parallel()

	t.Run("it should dispatch the status change", func(t *testing.T) {
		hub := &fakeDispatcher{}
		srv := newServer(t, hub)

		resp := doJSON(t, http.MethodPatch, srv.URL+"/api/orders/order-1/status", `{"restaurantId": "restaurant-1", "status": "CONFIRMED"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.Equal(t, domain.EventOrderStatusChanged, hub.lastEvent.Type)
		require.Equal(t, "order-1", hub.lastEvent.OrderID)
		require.Equal(t, domain.StatusConfirmed, hub.lastEvent.Status)
	})

	t.Run("it should return 404 for an unknown order", func(t *testing.T) {
		hub := &fakeDispatcher{dispatchErr: &domain.PersistenceError{Op: "update order status", Err: domain.ErrOrderNotFound}}
		srv := newServer(t, hub)

		resp := doJSON(t, http.MethodPatch, srv.URL+"/api/orders/order-9/status", `{"restaurantId": "restaurant-1", "status": "CONFIRMED"}`)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("it should return 409 for an invalid transition", func(t *testing.T) {
		hub := &fakeDispatcher{dispatchErr: &domain.PersistenceError{
			Op:  "update order status",
			Err: fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, domain.StatusDelivered, domain.StatusPending),
		}}
		srv := newServer(t, hub)

		resp := doJSON(t, http.MethodPatch, srv.URL+"/api/orders/order-1/status", `{"restaurantId": "restaurant-1", "status": "PENDING"}`)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestHandler_UpdateOrderPayment(t *testing.T) {
	t.Parallel()

	hub := &fakeDispatcher{}
	srv := newServer(t, hub)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/orders/order-1/payment", `{"restaurantId": "restaurant-1", "paymentStatus": "PAID"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, domain.EventPaymentStatusChanged, hub.lastEvent.Type)
	require.Equal(t, domain.PaymentPaid, hub.lastEvent.PaymentStatus)
}

func TestHandler_ListOpenOrders(t *testing.T) {
	t.Parallel()

	t.Run("it should list the open orders", func(t *testing.T) {
		hub := &fakeDispatcher{orders: []domain.Order{
			{ID: "order-1", RestaurantID: "restaurant-1", Status: domain.StatusPending},
			{ID: "order-2", RestaurantID: "restaurant-1", Status: domain.StatusPreparing},
		}}
		srv := newServer(t, hub)

		resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders?restaurantId=restaurant-1", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Orders []domain.Order `json:"orders"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Orders, 2)
	})

	t.Run("it should reject a missing restaurant id", func(t *testing.T) {
		hub := &fakeDispatcher{ordersErr: &domain.ValidationError{Field: "restaurantId", Reason: "must not be empty"}}
		srv := newServer(t, hub)

		resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders", "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandler_TableQR(t *testing.T) {
	t.Parallel()

	srv := newServer(t, &fakeDispatcher{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/restaurants/restaurant-1/tables/table-4/qr", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}
