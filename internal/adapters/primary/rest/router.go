package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/orders", h.CreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", h.ListOpenOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/status", h.UpdateOrderStatus).Methods(http.MethodPatch)
	r.HandleFunc("/api/orders/{id}/payment", h.UpdateOrderPayment).Methods(http.MethodPatch)
	r.HandleFunc("/api/restaurants/{restaurantId}/tables/{tableId}/qr", h.TableQR).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	c := cors.Default()
	if len(allowedOrigins) > 0 {
		c = cors.New(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
			AllowedHeaders: []string{"Content-Type"},
		})
	}

	return c.Handler(r)
}
