package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/internal/service"
)

// CartServiceInterface defines the interface for cart business logic.
type CartServiceInterface interface {
	GetCart(ctx context.Context, catalogueID string, identity model.Identity) (*model.Cart, error)
	AddItem(ctx context.Context, catalogueID string, identity model.Identity, productID string, quantity int) (*model.CartResult, error)
	UpdateItem(ctx context.Context, catalogueID string, identity model.Identity, productID string, quantity int) (*model.CartResult, error)
	RemoveItem(ctx context.Context, catalogueID string, identity model.Identity, productID string) (*model.CartResult, error)
	ApplyCoupon(ctx context.Context, catalogueID string, identity model.Identity, code string) (*model.CartResult, error)
	RemoveCoupon(ctx context.Context, catalogueID string, identity model.Identity) (*model.CartResult, error)
	Clear(ctx context.Context, catalogueID string, identity model.Identity) error
	Checkout(ctx context.Context, catalogueID string, identity model.Identity) (*model.Order, error)
}

// CartHandler handles HTTP requests for cart operations.
type CartHandler struct {
	service   CartServiceInterface
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given service and validator.
func NewCartHandler(svc CartServiceInterface, v *validator.Validate) *CartHandler {
	return &CartHandler{service: svc, validator: v}
}

// identityFrom extracts the caller's identity headers. X-User-ID is set by
// the auth layer after token resolution; X-Session-ID is the opaque
// anonymous id the client carries across requests.
func identityFrom(c *fiber.Ctx) model.Identity {
	return model.Identity{
		UserID:    c.Get("X-User-ID"),
		SessionID: c.Get("X-Session-ID"),
	}
}

// GetCart handles GET /api/catalogues/:catalogueID/cart.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.Context(), c.Params("catalogueID"), identityFrom(c))
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(cart)
}

// AddItem handles POST /api/catalogues/:catalogueID/cart/items.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req model.AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatCartValidationError(err)})
	}

	result, err := h.service.AddItem(c.Context(), c.Params("catalogueID"), identityFrom(c), req.ProductID, *req.Quantity)
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(result)
}

// UpdateItem handles PUT /api/catalogues/:catalogueID/cart/items/:productID.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var req model.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatCartValidationError(err)})
	}

	result, err := h.service.UpdateItem(c.Context(), c.Params("catalogueID"), identityFrom(c), c.Params("productID"), *req.Quantity)
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(result)
}

// RemoveItem handles DELETE /api/catalogues/:catalogueID/cart/items/:productID.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	result, err := h.service.RemoveItem(c.Context(), c.Params("catalogueID"), identityFrom(c), c.Params("productID"))
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(result)
}

// ApplyCoupon handles POST /api/catalogues/:catalogueID/cart/coupon.
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var req model.ApplyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatCartValidationError(err)})
	}

	result, err := h.service.ApplyCoupon(c.Context(), c.Params("catalogueID"), identityFrom(c), req.Code)
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(result)
}

// RemoveCoupon handles DELETE /api/catalogues/:catalogueID/cart/coupon.
func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	result, err := h.service.RemoveCoupon(c.Context(), c.Params("catalogueID"), identityFrom(c))
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(result)
}

// ClearCart handles DELETE /api/catalogues/:catalogueID/cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.Context(), c.Params("catalogueID"), identityFrom(c)); err != nil {
		return respondCartError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// Checkout handles POST /api/catalogues/:catalogueID/cart/checkout.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	order, err := h.service.Checkout(c.Context(), c.Params("catalogueID"), identityFrom(c))
	if err != nil {
		return respondCartError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// respondCartError maps service errors onto HTTP responses. Validation
// failures carry their data (required minimum, available stock) so the UI
// can explain the rejection; infrastructure errors stay generic.
func respondCartError(c *fiber.Ctx, err error) error {
	var stockErr *service.OutOfStockError
	var minErr *service.MinCartNotMetError

	switch {
	case errors.Is(err, service.ErrMissingIdentity):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing identity: provide X-User-ID or X-Session-ID"})
	case errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCouponNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     "insufficient stock",
			"available": stockErr.Available,
		})
	case errors.As(err, &minErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    "minimum cart value not met",
			"required": minErr.Required,
		})
	case errors.Is(err, service.ErrCouponInactive),
		errors.Is(err, service.ErrCouponExpired),
		errors.Is(err, service.ErrCouponUsageExceeded),
		errors.Is(err, service.ErrCartEmpty):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cart was modified concurrently, retry"})
	case errors.Is(err, service.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error().Err(err).Msg("cart operation failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// formatCartValidationError converts validator errors to stable messages.
func formatCartValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "ProductID":
				if tag == "required" {
					return "invalid request: product_id is required"
				}
				if tag == "notblank" {
					return "invalid request: product_id cannot be whitespace only"
				}
				if tag == "max" {
					return "invalid request: product_id exceeds maximum length of 255"
				}
				return "invalid request: product_id is invalid"
			case "Quantity":
				if tag == "required" {
					return "invalid request: quantity is required"
				}
				if tag == "gte" {
					return "invalid request: quantity must be at least 1"
				}
				return "invalid request: quantity is invalid"
			case "Code":
				if tag == "required" {
					return "invalid request: code is required"
				}
				if tag == "notblank" {
					return "invalid request: code cannot be whitespace only"
				}
				if tag == "max" {
					return "invalid request: code exceeds maximum length of 64"
				}
				return "invalid request: code is invalid"
			default:
				if tag == "required" {
					return "invalid request: " + field + " is required"
				}
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}
