package api

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"tutoring-backend/internal/media"
	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionHandler exposes sessions, their recurring schedules and rooms.
type SessionHandler struct {
	sessionService service.SessionService
	storage        media.Storage
	validate       *validator.Validate
}

func NewSessionHandler(sessionService service.SessionService, storage media.Storage) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		storage:        storage,
		validate:       validator.New(),
	}
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	details, err := h.sessionService.GetDetails(c.Context(), id)
	if err != nil {
		if err == service.ErrSessionNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch session"})
	}
	return c.Status(fiber.StatusOK).JSON(details)
}

func (h *SessionHandler) List(c *fiber.Ctx) error {
	sessions, err := h.sessionService.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch sessions"})
	}
	return c.Status(fiber.StatusOK).JSON(sessions)
}

func (h *SessionHandler) ListByStudent(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	sessions, err := h.sessionService.ListDetailsByStudent(c.Context(), studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch sessions"})
	}
	return c.Status(fiber.StatusOK).JSON(sessions)
}

func (h *SessionHandler) ListByTeacher(c *fiber.Ctx) error {
	teacherID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID format"})
	}

	sessions, err := h.sessionService.ListDetailsByTeacher(c.Context(), teacherID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch sessions"})
	}
	return c.Status(fiber.StatusOK).JSON(sessions)
}

type UpdateSessionRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
}

func (h *SessionHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	var request UpdateSessionRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	existing, err := h.sessionService.Get(c.Context(), id)
	if err != nil {
		if err == service.ErrSessionNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch session"})
	}

	existing.StartAt = request.StartAt
	existing.EndAt = request.EndAt

	updated, err := h.sessionService.Update(c.Context(), existing)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update session"})
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	if err := h.sessionService.Delete(c.Context(), id); err != nil {
		if err == service.ErrSessionNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete session"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) Finish(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	session, err := h.sessionService.Finish(c.Context(), id)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrInvalidTransition:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not finish session"})
		}
	}
	return c.Status(fiber.StatusOK).JSON(session)
}

func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	session, err := h.sessionService.Cancel(c.Context(), id)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrInvalidTransition:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not cancel session"})
		}
	}
	return c.Status(fiber.StatusOK).JSON(session)
}

// UploadRecording stores the uploaded file and attaches its URL to the
// session behind the given room code. Re-uploads overwrite the previous
// recording reference.
func (h *SessionHandler) UploadRecording(c *fiber.Ctx) error {
	roomCode := c.FormValue("room_code")
	if roomCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "room_code is required"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	// resolve the room before touching storage so an unknown code cannot
	// leave an orphan object behind
	if _, err := h.sessionService.GetByRoomCode(c.Context(), roomCode); err != nil {
		if err == service.ErrRoomNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not resolve room"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read uploaded file"})
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("recordings/%s/%s%s", roomCode, uuid.NewString(), filepath.Ext(fileHeader.Filename))

	url, publicID, err := h.storage.Upload(c.Context(), key, contentType, file)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "Recording upload failed", slog.String("room_code", roomCode), slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not store recording"})
	}

	session, err := h.sessionService.AttachRecording(c.Context(), roomCode, url, publicID)
	if err != nil {
		if err == service.ErrRoomNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not attach recording"})
	}
	return c.Status(fiber.StatusOK).JSON(session)
}

type ScheduleRequest struct {
	ClassID   uuid.UUID `json:"class_id" validate:"required"`
	DayOfWeek int       `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string    `json:"start_time" validate:"required"`
	EndTime   string    `json:"end_time" validate:"required"`
	Status    string    `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (h *SessionHandler) CreateSchedule(c *fiber.Ctx) error {
	var request ScheduleRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	schedule := &model.Schedule{
		ClassID:   request.ClassID,
		DayOfWeek: request.DayOfWeek,
		StartTime: request.StartTime,
		EndTime:   request.EndTime,
		Status:    model.ScheduleStatus(request.Status),
	}

	created, err := h.sessionService.CreateSchedule(c.Context(), schedule)
	if err != nil {
		switch err {
		case service.ErrClassNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrInvalidSchedule:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create schedule"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *SessionHandler) GetSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule ID format"})
	}

	schedule, err := h.sessionService.GetSchedule(c.Context(), id)
	if err != nil {
		if err == service.ErrScheduleNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch schedule"})
	}
	return c.Status(fiber.StatusOK).JSON(schedule)
}

func (h *SessionHandler) ListSchedules(c *fiber.Ctx) error {
	schedules, err := h.sessionService.ListSchedules(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch schedules"})
	}
	return c.Status(fiber.StatusOK).JSON(schedules)
}

func (h *SessionHandler) UpdateSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule ID format"})
	}

	var request ScheduleRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	schedule := &model.Schedule{
		ID:        id,
		ClassID:   request.ClassID,
		DayOfWeek: request.DayOfWeek,
		StartTime: request.StartTime,
		EndTime:   request.EndTime,
		Status:    model.ScheduleStatus(request.Status),
	}

	updated, err := h.sessionService.UpdateSchedule(c.Context(), schedule)
	if err != nil {
		switch err {
		case service.ErrScheduleNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrInvalidSchedule:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update schedule"})
		}
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *SessionHandler) DeleteSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule ID format"})
	}

	if err := h.sessionService.DeleteSchedule(c.Context(), id); err != nil {
		if err == service.ErrScheduleNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete schedule"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) GetRoom(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID format"})
	}

	room, err := h.sessionService.GetRoom(c.Context(), id)
	if err != nil {
		if err == service.ErrRoomNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch room"})
	}
	return c.Status(fiber.StatusOK).JSON(room)
}

func (h *SessionHandler) ListRooms(c *fiber.Ctx) error {
	rooms, err := h.sessionService.ListRooms(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch rooms"})
	}
	return c.Status(fiber.StatusOK).JSON(rooms)
}

func (h *SessionHandler) DeleteRoom(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room ID format"})
	}

	if err := h.sessionService.DeleteRoom(c.Context(), id); err != nil {
		if err == service.ErrRoomNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete room"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
