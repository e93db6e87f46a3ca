package api

import (
	"time"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DirectoryHandler exposes the student, teacher and subject catalog.
type DirectoryHandler struct {
	directoryService service.DirectoryService
	validate         *validator.Validate
}

func NewDirectoryHandler(directoryService service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{
		directoryService: directoryService,
		validate:         validator.New(),
	}
}

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

type StudentRequest struct {
	Name     string     `json:"name" validate:"required,min=2"`
	Birth    *time.Time `json:"birth,omitempty"`
	Level    string     `json:"level"`
	Phone    string     `json:"phone"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password"`
	Img      *string    `json:"img,omitempty"`
}

func (h *DirectoryHandler) CreateStudent(c *fiber.Ctx) error {
	var request StudentRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}
	if request.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password is required"})
	}

	student := &model.Student{
		Name:     request.Name,
		Birth:    request.Birth,
		Level:    request.Level,
		Phone:    request.Phone,
		Email:    request.Email,
		Password: request.Password,
		Img:      request.Img,
	}

	created, err := h.directoryService.CreateStudent(c.Context(), student)
	if err != nil {
		if err == service.ErrEmailTaken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create student"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *DirectoryHandler) GetStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	student, err := h.directoryService.GetStudent(c.Context(), id)
	if err != nil {
		if err == service.ErrStudentNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch student"})
	}
	return c.Status(fiber.StatusOK).JSON(student)
}

func (h *DirectoryHandler) ListStudents(c *fiber.Ctx) error {
	students, err := h.directoryService.ListStudents(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch students"})
	}
	return c.Status(fiber.StatusOK).JSON(students)
}

func (h *DirectoryHandler) UpdateStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	var request StudentRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	student := &model.Student{
		ID:       id,
		Name:     request.Name,
		Birth:    request.Birth,
		Level:    request.Level,
		Phone:    request.Phone,
		Email:    request.Email,
		Password: request.Password,
		Img:      request.Img,
	}

	updated, err := h.directoryService.UpdateStudent(c.Context(), student)
	if err != nil {
		switch err {
		case service.ErrStudentNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrEmailTaken:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update student"})
		}
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *DirectoryHandler) DeleteStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	if err := h.directoryService.DeleteStudent(c.Context(), id); err != nil {
		if err == service.ErrStudentNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete student"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type TeacherRequest struct {
	Name     string     `json:"name" validate:"required,min=2"`
	Bio      *string    `json:"bio,omitempty"`
	Birth    *time.Time `json:"birth,omitempty"`
	Label    string     `json:"label" validate:"omitempty,oneof=tutor teacher"`
	Phone    string     `json:"phone"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password"`
	Img      string     `json:"img"`
	Rating   float64    `json:"rating" validate:"min=0,max=5"`
}

func (h *DirectoryHandler) CreateTeacher(c *fiber.Ctx) error {
	var request TeacherRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}
	if request.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password is required"})
	}

	teacher := &model.Teacher{
		Name:     request.Name,
		Bio:      request.Bio,
		Birth:    request.Birth,
		Label:    request.Label,
		Phone:    request.Phone,
		Email:    request.Email,
		Password: request.Password,
		Img:      request.Img,
		Rating:   request.Rating,
	}

	created, err := h.directoryService.CreateTeacher(c.Context(), teacher)
	if err != nil {
		if err == service.ErrEmailTaken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create teacher"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *DirectoryHandler) GetTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID format"})
	}

	teacher, err := h.directoryService.GetTeacher(c.Context(), id)
	if err != nil {
		if err == service.ErrTeacherNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch teacher"})
	}
	return c.Status(fiber.StatusOK).JSON(teacher)
}

func (h *DirectoryHandler) ListTeachers(c *fiber.Ctx) error {
	teachers, err := h.directoryService.ListTeachers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch teachers"})
	}
	return c.Status(fiber.StatusOK).JSON(teachers)
}

func (h *DirectoryHandler) ListTutors(c *fiber.Ctx) error {
	tutors, err := h.directoryService.ListTutors(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch tutors"})
	}
	return c.Status(fiber.StatusOK).JSON(tutors)
}

func (h *DirectoryHandler) UpdateTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID format"})
	}

	var request TeacherRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	teacher := &model.Teacher{
		ID:       id,
		Name:     request.Name,
		Bio:      request.Bio,
		Birth:    request.Birth,
		Label:    request.Label,
		Phone:    request.Phone,
		Email:    request.Email,
		Password: request.Password,
		Img:      request.Img,
		Rating:   request.Rating,
	}

	updated, err := h.directoryService.UpdateTeacher(c.Context(), teacher)
	if err != nil {
		switch err {
		case service.ErrTeacherNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case service.ErrEmailTaken:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update teacher"})
		}
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *DirectoryHandler) DeleteTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID format"})
	}

	if err := h.directoryService.DeleteTeacher(c.Context(), id); err != nil {
		if err == service.ErrTeacherNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete teacher"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type SubjectRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

func (h *DirectoryHandler) CreateSubject(c *fiber.Ctx) error {
	var request SubjectRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	subject := &model.Subject{Name: request.Name, Description: request.Description}
	created, err := h.directoryService.CreateSubject(c.Context(), subject)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create subject"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *DirectoryHandler) GetSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject ID format"})
	}

	subject, err := h.directoryService.GetSubject(c.Context(), id)
	if err != nil {
		if err == service.ErrSubjectNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch subject"})
	}
	return c.Status(fiber.StatusOK).JSON(subject)
}

func (h *DirectoryHandler) ListSubjects(c *fiber.Ctx) error {
	subjects, err := h.directoryService.ListSubjects(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch subjects"})
	}
	return c.Status(fiber.StatusOK).JSON(subjects)
}

func (h *DirectoryHandler) UpdateSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject ID format"})
	}

	var request SubjectRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	subject := &model.Subject{ID: id, Name: request.Name, Description: request.Description}
	updated, err := h.directoryService.UpdateSubject(c.Context(), subject)
	if err != nil {
		if err == service.ErrSubjectNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update subject"})
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *DirectoryHandler) DeleteSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject ID format"})
	}

	if err := h.directoryService.DeleteSubject(c.Context(), id); err != nil {
		if err == service.ErrSubjectNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete subject"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
