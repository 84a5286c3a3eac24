// Package httpapi exposes the cart and checkout core to the storefront
// UI. It is thin glue: decode, call the service, encode the envelope.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/cart"
	"github.com/tientrn/laptopstore/internal/checkout"
	"github.com/tientrn/laptopstore/internal/guard"
)

type Handler struct {
	cart *cart.Service
	orch *checkout.Orchestrator
}

func NewHandler(cartService *cart.Service, orch *checkout.Orchestrator) *Handler {
	return &Handler{cart: cartService, orch: orch}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addToCart)
	r.Post("/cart/items/{productID}/decrease", h.decreaseQuantity)
	r.Delete("/cart/items/{productID}", h.removeFromCart)
	r.Delete("/cart", h.clearCart)

	r.Post("/checkout/stage", h.stageForCheckout)
	r.Post("/checkout", h.startCheckout)
	r.Get("/checkout/return", h.gatewayReturn)

	return r
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":       c,
		"count":      c.Count(),
		"totalPrice": c.TotalPrice(),
	})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil || product.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}

	current, err := h.cart.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if err := guard.AllowIncrement(current.FindLine(product.ProductID), product.AvailableQuantity); err != nil {
		writeError(w, http.StatusConflict, "maximum available quantity reached")
		return
	}

	c, err := h.cart.AddToCart(r.Context(), product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c, "count": c.Count()})
}

func (h *Handler) decreaseQuantity(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart.DecreaseQuantity(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decrease quantity")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c, "count": c.Count()})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart.RemoveFromCart(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove from cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c, "count": c.Count()})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.ClearCart(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (h *Handler) stageForCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	staged, err := h.orch.StageForCheckout(r.Context(), body.ProductIDs)
	if errors.Is(err, checkout.ErrNoSelection) {
		writeError(w, http.StatusBadRequest, "select at least one item to check out")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stage checkout")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staged": staged})
}

func (h *Handler) startCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orch.Checkout(r.Context(), body.RedirectURL)
	switch {
	case errors.Is(err, checkout.ErrNoSelection):
		writeError(w, http.StatusBadRequest, "no staged checkout to pay for")
		return
	case err != nil:
		// A generic notice; the staged selection is retained so the
		// shopper can retry without re-selecting.
		log.Printf("checkout failed: %v", err)
		writeError(w, http.StatusBadGateway, "create order error, please try again")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orderId":    result.OrderID,
		"paymentId":  result.PaymentID,
		"paymentUrl": result.PaymentURL,
		"reused":     result.ReusedOrder,
	})
}

func (h *Handler) gatewayReturn(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.orch.HandleGatewayReturn(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		log.Printf("gateway return handling failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reconcile payment result")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcome": outcome})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data}); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message}); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}
