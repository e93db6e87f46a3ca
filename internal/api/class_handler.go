package api

import (
	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"
	"tutoring-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClassHandler struct {
	enrollmentService service.EnrollmentService
	validate          *validator.Validate
}

func NewClassHandler(enrollmentService service.EnrollmentService) *ClassHandler {
	return &ClassHandler{
		enrollmentService: enrollmentService,
		validate:          validator.New(),
	}
}

type ClassRequest struct {
	SubjectID   uuid.UUID `json:"subject_id" validate:"required"`
	TeacherID   uuid.UUID `json:"teacher_id" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=online offline"`
	Level       string    `json:"level"`
	MaxStudents int       `json:"max_students" validate:"min=0"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"omitempty,oneof=active inactive full completed"`
}

func (h *ClassHandler) Create(c *fiber.Ctx) error {
	var request ClassRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	class := &model.Class{
		SubjectID:   request.SubjectID,
		TeacherID:   request.TeacherID,
		Type:        request.Type,
		Level:       request.Level,
		MaxStudents: request.MaxStudents,
		Description: request.Description,
		Status:      model.ClassStatus(request.Status),
	}

	created, err := h.enrollmentService.CreateClass(c.Context(), class)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create class"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ClassHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID format"})
	}

	details, err := h.enrollmentService.GetClassDetails(c.Context(), id)
	if err != nil {
		if err == service.ErrClassNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch class"})
	}
	return c.Status(fiber.StatusOK).JSON(details)
}

// List accepts optional class_id, teacher_id, student_id and status query
// filters.
func (h *ClassHandler) List(c *fiber.Ctx) error {
	var filter repository.ClassFilter

	for param, target := range map[string]**uuid.UUID{
		"class_id":   &filter.ClassID,
		"teacher_id": &filter.TeacherID,
		"student_id": &filter.StudentID,
	} {
		if raw := c.Query(param); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + param + " filter"})
			}
			*target = &id
		}
	}
	if raw := c.Query("status"); raw != "" {
		status := model.ClassStatus(raw)
		filter.Status = &status
	}

	classes, err := h.enrollmentService.ListClasses(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch classes"})
	}
	return c.Status(fiber.StatusOK).JSON(classes)
}

func (h *ClassHandler) ListByStudent(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	classes, err := h.enrollmentService.ListByStudent(c.Context(), studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch classes"})
	}
	return c.Status(fiber.StatusOK).JSON(classes)
}

func (h *ClassHandler) ListByTeacher(c *fiber.Ctx) error {
	teacherID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID format"})
	}

	classes, err := h.enrollmentService.ListByTeacher(c.Context(), teacherID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch classes"})
	}
	return c.Status(fiber.StatusOK).JSON(classes)
}

func (h *ClassHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID format"})
	}

	var request ClassRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	class := &model.Class{
		ID:          id,
		SubjectID:   request.SubjectID,
		TeacherID:   request.TeacherID,
		Type:        request.Type,
		Level:       request.Level,
		MaxStudents: request.MaxStudents,
		Description: request.Description,
		Status:      model.ClassStatus(request.Status),
	}

	updated, err := h.enrollmentService.UpdateClass(c.Context(), class)
	if err != nil {
		if err == service.ErrClassNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update class"})
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *ClassHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID format"})
	}

	if err := h.enrollmentService.DeleteClass(c.Context(), id); err != nil {
		if err == service.ErrClassNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete class"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type EnrollRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
}

func (h *ClassHandler) Enroll(c *fiber.Ctx) error {
	classID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID format"})
	}

	var request EnrollRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	membership, err := h.enrollmentService.Enroll(c.Context(), classID, request.StudentID)
	if err != nil {
		switch err {
		case service.ErrClassNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrClassNotOpen, service.ErrClassFull, service.ErrAlreadyEnrolled:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not enroll student"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}

func (h *ClassHandler) Unenroll(c *fiber.Ctx) error {
	classID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID format"})
	}

	var request EnrollRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	if err := h.enrollmentService.Unenroll(c.Context(), classID, request.StudentID); err != nil {
		if err == service.ErrClassNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not unenroll student"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Student unenrolled"})
}

func (h *ClassHandler) ListMembers(c *fiber.Ctx) error {
	classID, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class ID format"})
	}

	members, err := h.enrollmentService.ListMembers(c.Context(), classID)
	if err != nil {
		if err == service.ErrClassNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch class members"})
	}
	return c.Status(fiber.StatusOK).JSON(members)
}
