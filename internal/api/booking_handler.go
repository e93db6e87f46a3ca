package api

import (
	"time"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// BookingHandler exposes time slots and the bookings made against them.
type BookingHandler struct {
	bookingService service.BookingService
	validate       *validator.Validate
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validate:       validator.New(),
	}
}

type TimeSlotRequest struct {
	TeacherID uuid.UUID `json:"teacher_id" validate:"required"`
	StartAt   time.Time `json:"start_at" validate:"required"`
	EndAt     time.Time `json:"end_at" validate:"required"`
}

func (h *BookingHandler) CreateSlot(c *fiber.Ctx) error {
	var request TimeSlotRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	slot := &model.TimeSlot{
		TeacherID: request.TeacherID,
		StartAt:   request.StartAt,
		EndAt:     request.EndAt,
	}

	created, err := h.bookingService.CreateSlot(c.Context(), slot)
	if err != nil {
		switch err {
		case service.ErrInvalidSlotWindow:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case service.ErrSlotOverlap:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create time slot"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *BookingHandler) GetSlot(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid time slot ID format"})
	}

	slot, err := h.bookingService.GetSlot(c.Context(), id)
	if err != nil {
		if err == service.ErrSlotNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch time slot"})
	}
	return c.Status(fiber.StatusOK).JSON(slot)
}

// ListSlots accepts optional teacher_id and status query filters.
func (h *BookingHandler) ListSlots(c *fiber.Ctx) error {
	var teacherID *uuid.UUID
	if raw := c.Query("teacher_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher_id filter"})
		}
		teacherID = &id
	}

	var status *model.SlotStatus
	if raw := c.Query("status"); raw != "" {
		s := model.SlotStatus(raw)
		status = &s
	}

	slots, err := h.bookingService.ListSlots(c.Context(), teacherID, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch time slots"})
	}
	return c.Status(fiber.StatusOK).JSON(slots)
}

func (h *BookingHandler) DeleteSlot(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid time slot ID format"})
	}

	if err := h.bookingService.DeleteSlot(c.Context(), id); err != nil {
		switch err {
		case service.ErrSlotNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrSlotUnavailable:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot delete a booked time slot"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete time slot"})
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type BookingRequest struct {
	TimeSlotID uuid.UUID  `json:"time_slot_id" validate:"required"`
	StudentID  uuid.UUID  `json:"student_id" validate:"required"`
	ClassID    *uuid.UUID `json:"class_id,omitempty"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var request BookingRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	booking, err := h.bookingService.Create(c.Context(), request.StudentID, request.TimeSlotID, request.ClassID)
	if err != nil {
		switch err {
		case service.ErrSlotNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrSlotUnavailable:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case service.ErrSlotInPast:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create booking"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	details, err := h.bookingService.GetDetails(c.Context(), id)
	if err != nil {
		if err == service.ErrBookingNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch booking"})
	}
	return c.Status(fiber.StatusOK).JSON(details)
}

func (h *BookingHandler) List(c *fiber.Ctx) error {
	if raw := c.Query("student_id"); raw != "" {
		studentID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student_id filter"})
		}
		bookings, err := h.bookingService.ListByStudent(c.Context(), studentID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch bookings"})
		}
		return c.Status(fiber.StatusOK).JSON(bookings)
	}

	bookings, err := h.bookingService.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch bookings"})
	}
	return c.Status(fiber.StatusOK).JSON(bookings)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	booking, err := h.bookingService.Cancel(c.Context(), id)
	if err != nil {
		switch err {
		case service.ErrBookingNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrInvalidTransition:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not cancel booking"})
		}
	}
	return c.Status(fiber.StatusOK).JSON(booking)
}
