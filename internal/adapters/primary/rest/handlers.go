package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"orderhub/internal/adapters/secondary/qr"
	"orderhub/internal/domain"
)

// Dispatcher is the REST surface's view of the hub. REST writes go through
// the same dispatch path as socket intents, so every mutation is broadcast
// exactly the same way regardless of how it arrived.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) (domain.Order, error)
	OpenOrders(ctx context.Context, restaurantID string) ([]domain.Order, error)
}

type Handler struct {
	hub      Dispatcher
	qr       qr.Generator
	validate *validator.Validate
}

func NewHandler(hub Dispatcher, qrGenerator qr.Generator) *Handler {
	return &Handler{
		hub:      hub,
		qr:       qrGenerator,
		validate: validator.New(),
	}
}

type createOrderRequest struct {
	RestaurantID        string  `json:"restaurantId" validate:"required"`
	TableID             string  `json:"tableId"`
	CustomerName        string  `json:"customerName" validate:"required,min=2"`
	CustomerPhone       string  `json:"customerPhone" validate:"required,min=10"`
	OrderType           string  `json:"orderType" validate:"required,oneof=DINE_IN TAKEAWAY DELIVERY"`
	PaymentMethod       string  `json:"paymentMethod" validate:"required,oneof=CASH CARD PAYHERE LANKAQR BANK_TRANSFER"`
	SpecialInstructions string  `json:"specialInstructions"`
	DeliveryAddress     string  `json:"deliveryAddress"`
	DeliveryFee         float64 `json:"deliveryFee" validate:"min=0"`
	Items               []struct {
		MenuItemID          string  `json:"menuItemId" validate:"required"`
		Name                string  `json:"name"`
		Quantity            int     `json:"quantity" validate:"required,min=1"`
		Price               float64 `json:"price" validate:"min=0"`
		SpecialInstructions string  `json:"specialInstructions"`
	} `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft := &domain.OrderDraft{
		RestaurantID:        req.RestaurantID,
		TableID:             req.TableID,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		OrderType:           domain.OrderType(req.OrderType),
		PaymentMethod:       domain.PaymentMethod(req.PaymentMethod),
		SpecialInstructions: req.SpecialInstructions,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryFee:         req.DeliveryFee,
	}
	for _, item := range req.Items {
		draft.Items = append(draft.Items, domain.OrderItem{
			MenuItemID:          item.MenuItemID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			Price:               item.Price,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	order, err := h.hub.Dispatch(r.Context(), domain.Event{
		Type:         domain.EventOrderCreated,
		RestaurantID: req.RestaurantID,
		Draft:        draft,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

type updateStatusRequest struct {
	Status       string `json:"status" validate:"required"`
	RestaurantID string `json:"restaurantId" validate:"required"`
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.hub.Dispatch(r.Context(), domain.Event{
		Type:         domain.EventOrderStatusChanged,
		OrderID:      mux.Vars(r)["id"],
		RestaurantID: req.RestaurantID,
		Status:       domain.OrderStatus(req.Status),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
	RestaurantID  string `json:"restaurantId" validate:"required"`
}

func (h *Handler) UpdateOrderPayment(w http.ResponseWriter, r *http.Request) {
	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.hub.Dispatch(r.Context(), domain.Event{
		Type:          domain.EventPaymentStatusChanged,
		OrderID:       mux.Vars(r)["id"],
		RestaurantID:  req.RestaurantID,
		PaymentStatus: domain.PaymentStatus(req.PaymentStatus),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) ListOpenOrders(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurantId")

	orders, err := h.hub.OpenOrders(r.Context(), restaurantID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) TableQR(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	png, err := h.qr.TableLink(vars["restaurantId"], vars["tableId"])
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to generate qr code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSONError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSONError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSONError(w, http.StatusConflict, "invalid status transition")
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
