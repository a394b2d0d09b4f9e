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

// CouponServiceInterface defines the interface for coupon management logic.
type CouponServiceInterface interface {
	Create(ctx context.Context, catalogueID string, req *model.CreateCouponRequest) error
	GetByCode(ctx context.Context, catalogueID, code string) (*model.CouponResponse, error)
}

// CouponHandler handles HTTP requests for seller-side coupon management.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// formatCouponValidationError converts validator errors to stable messages.
func formatCouponValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
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
				if tag == "couponcode" {
					return "invalid request: code may only contain letters, digits, hyphen and underscore"
				}
				return "invalid request: code is invalid"
			case "DiscountType":
				if tag == "required" {
					return "invalid request: discount_type is required"
				}
				if tag == "oneof" {
					return "invalid request: discount_type must be percentage or flat"
				}
				return "invalid request: discount_type is invalid"
			case "MaxUsage":
				if tag == "gte" {
					return "invalid request: max_usage must be at least 1"
				}
				return "invalid request: max_usage is invalid"
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

// CreateCoupon handles POST /api/catalogues/:catalogueID/coupons.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatCouponValidationError(err)})
	}

	catalogueID := c.Params("catalogueID")
	if err := h.service.Create(c.Context(), catalogueID, &req); err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("catalogue_id", catalogueID).Str("coupon_code", req.Code).Msg("failed to create coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).Send(nil)
}

// GetCoupon handles GET /api/catalogues/:catalogueID/coupons/:code.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	catalogueID := c.Params("catalogueID")
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request: code is required",
		})
	}

	coupon, err := h.service.GetByCode(c.Context(), catalogueID, code)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "coupon not found",
			})
		}
		log.Error().Err(err).Str("catalogue_id", catalogueID).Str("coupon_code", code).Msg("failed to get coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(coupon)
}
