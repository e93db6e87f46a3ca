package api

import (
	"tutoring-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NotificationHandler exposes the notifications the NATS subscriber has
// persisted for a recipient.
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	raw := c.Query("recipient_id")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipient_id is required"})
	}
	recipientID, err := uuid.Parse(raw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid recipient_id"})
	}

	notifications, err := h.notificationRepo.ListByRecipient(c.Context(), recipientID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch notifications"})
	}
	return c.Status(fiber.StatusOK).JSON(notifications)
}
