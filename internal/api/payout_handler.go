package api

import (
	"log/slog"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PayoutHandler exposes teacher fees and the monthly payment runs built
// from them.
type PayoutHandler struct {
	payoutService service.PayoutService
	validate      *validator.Validate
}

func NewPayoutHandler(payoutService service.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
		validate:      validator.New(),
	}
}

type FeeRequest struct {
	TeacherID   uuid.UUID  `json:"teacher_id" validate:"required"`
	ClassID     *uuid.UUID `json:"class_id,omitempty"`
	TimeSlotID  *uuid.UUID `json:"time_slot_id,omitempty"`
	AmountCents int64      `json:"amount_cents" validate:"min=0"`
}

func (h *PayoutHandler) CreateFee(c *fiber.Ctx) error {
	var request FeeRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	fee := &model.Fee{
		TeacherID:   request.TeacherID,
		ClassID:     request.ClassID,
		TimeSlotID:  request.TimeSlotID,
		AmountCents: request.AmountCents,
	}

	created, err := h.payoutService.SetFee(c.Context(), fee)
	if err != nil {
		switch err {
		case service.ErrFeeScope:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case service.ErrDuplicateFee:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create fee"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *PayoutHandler) GetFee(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee ID format"})
	}

	fee, err := h.payoutService.GetFee(c.Context(), id)
	if err != nil {
		if err == service.ErrFeeNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch fee"})
	}
	return c.Status(fiber.StatusOK).JSON(fee)
}

func (h *PayoutHandler) ListFees(c *fiber.Ctx) error {
	if raw := c.Query("teacher_id"); raw != "" {
		teacherID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher_id filter"})
		}
		fees, err := h.payoutService.ListFeesByTeacher(c.Context(), teacherID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch fees"})
		}
		return c.Status(fiber.StatusOK).JSON(fees)
	}

	fees, err := h.payoutService.ListFees(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch fees"})
	}
	return c.Status(fiber.StatusOK).JSON(fees)
}

func (h *PayoutHandler) DeleteFee(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee ID format"})
	}

	if err := h.payoutService.DeleteFee(c.Context(), id); err != nil {
		if err == service.ErrFeeNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete fee"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type RunPayoutRequest struct {
	TeacherID uuid.UUID `json:"teacher_id" validate:"required"`
	Period    string    `json:"period" validate:"required"`
}

func (h *PayoutHandler) RunPayout(c *fiber.Ctx) error {
	var request RunPayoutRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	payment, err := h.payoutService.RunPayout(c.Context(), request.TeacherID, request.Period)
	if err != nil {
		switch err {
		case service.ErrInvalidPeriod:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case service.ErrAlreadyPaid:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not run payout"})
		}
	}

	// the route sits behind AuthMiddleware, so record who ran the payout
	if actorID, err := GetUserIDFromClaims(c); err == nil {
		slog.Info("Payout run", "payment_id", payment.ID, "teacher_id", request.TeacherID, "period", request.Period, "run_by", actorID)
	} else {
		slog.Info("Payout run", "payment_id", payment.ID, "teacher_id", request.TeacherID, "period", request.Period)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *PayoutHandler) GetPayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	payment, err := h.payoutService.GetPayment(c.Context(), id)
	if err != nil {
		if err == service.ErrPaymentNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch payment"})
	}
	return c.Status(fiber.StatusOK).JSON(payment)
}

func (h *PayoutHandler) ListPayments(c *fiber.Ctx) error {
	if raw := c.Query("teacher_id"); raw != "" {
		teacherID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher_id filter"})
		}
		payments, err := h.payoutService.ListPaymentsByTeacher(c.Context(), teacherID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch payments"})
		}
		return c.Status(fiber.StatusOK).JSON(payments)
	}

	payments, err := h.payoutService.ListPayments(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch payments"})
	}
	return c.Status(fiber.StatusOK).JSON(payments)
}

func (h *PayoutHandler) ListPaymentSessions(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	sessionIDs, err := h.payoutService.PaymentSessions(c.Context(), id)
	if err != nil {
		if err == service.ErrPaymentNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch payment sessions"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"payment_id": id, "session_ids": sessionIDs})
}
