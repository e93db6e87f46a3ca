package api

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes binds the whole /api surface. Fee and payment writes sit
// behind the JWT middleware; everything else is open.
func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	directoryHandler *DirectoryHandler,
	classHandler *ClassHandler,
	bookingHandler *BookingHandler,
	sessionHandler *SessionHandler,
	payoutHandler *PayoutHandler,
	notificationHandler *NotificationHandler,
) {
	api := app.Group("/api")

	api.Post("/login/", authHandler.Login)

	students := api.Group("/students")
	students.Get("/", directoryHandler.ListStudents)
	students.Post("/", directoryHandler.CreateStudent)
	students.Get("/:id", directoryHandler.GetStudent)
	students.Put("/:id", directoryHandler.UpdateStudent)
	students.Delete("/:id", directoryHandler.DeleteStudent)

	teachers := api.Group("/teachers")
	teachers.Get("/", directoryHandler.ListTeachers)
	teachers.Post("/", directoryHandler.CreateTeacher)
	teachers.Get("/tutors/", directoryHandler.ListTutors)
	teachers.Get("/:id", directoryHandler.GetTeacher)
	teachers.Put("/:id", directoryHandler.UpdateTeacher)
	teachers.Delete("/:id", directoryHandler.DeleteTeacher)

	subjects := api.Group("/subjects")
	subjects.Get("/", directoryHandler.ListSubjects)
	subjects.Post("/", directoryHandler.CreateSubject)
	subjects.Get("/:id", directoryHandler.GetSubject)
	subjects.Put("/:id", directoryHandler.UpdateSubject)
	subjects.Delete("/:id", directoryHandler.DeleteSubject)

	classes := api.Group("/classes")
	classes.Get("/", classHandler.List)
	classes.Post("/", classHandler.Create)
	classes.Get("/by-student/:id/", classHandler.ListByStudent)
	classes.Get("/by-teacher/:id/", classHandler.ListByTeacher)
	classes.Get("/:id", classHandler.Get)
	classes.Put("/:id", classHandler.Update)
	classes.Delete("/:id", classHandler.Delete)
	classes.Get("/:id/members", classHandler.ListMembers)
	classes.Post("/:id/enroll", classHandler.Enroll)
	classes.Post("/:id/unenroll", classHandler.Unenroll)

	timeslots := api.Group("/timeslots")
	timeslots.Get("/", bookingHandler.ListSlots)
	timeslots.Post("/", bookingHandler.CreateSlot)
	timeslots.Get("/:id", bookingHandler.GetSlot)
	timeslots.Delete("/:id", bookingHandler.DeleteSlot)

	bookings := api.Group("/bookings")
	bookings.Get("/", bookingHandler.List)
	bookings.Post("/", bookingHandler.Create)
	bookings.Get("/:id", bookingHandler.Get)
	bookings.Post("/:id/cancel", bookingHandler.Cancel)

	schedules := api.Group("/schedules")
	schedules.Get("/", sessionHandler.ListSchedules)
	schedules.Post("/", sessionHandler.CreateSchedule)
	schedules.Get("/:id", sessionHandler.GetSchedule)
	schedules.Put("/:id", sessionHandler.UpdateSchedule)
	schedules.Delete("/:id", sessionHandler.DeleteSchedule)

	sessions := api.Group("/sessions")
	sessions.Get("/", sessionHandler.List)
	sessions.Post("/upload-recording", sessionHandler.UploadRecording)
	sessions.Get("/by-student/:id/", sessionHandler.ListByStudent)
	sessions.Get("/by-teacher/:id/", sessionHandler.ListByTeacher)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Put("/:id", sessionHandler.Update)
	sessions.Delete("/:id", sessionHandler.Delete)
	sessions.Post("/:id/finish", sessionHandler.Finish)
	sessions.Post("/:id/cancel", sessionHandler.Cancel)

	rooms := api.Group("/rooms")
	rooms.Get("/", sessionHandler.ListRooms)
	rooms.Get("/:id", sessionHandler.GetRoom)
	rooms.Delete("/:id", sessionHandler.DeleteRoom)

	fees := api.Group("/fees")
	fees.Get("/", payoutHandler.ListFees)
	fees.Post("/", AuthMiddleware(), payoutHandler.CreateFee)
	fees.Get("/:id", payoutHandler.GetFee)
	fees.Delete("/:id", AuthMiddleware(), payoutHandler.DeleteFee)

	payments := api.Group("/payments")
	payments.Get("/", payoutHandler.ListPayments)
	payments.Post("/run", AuthMiddleware(), payoutHandler.RunPayout)
	payments.Get("/:id", payoutHandler.GetPayment)
	payments.Get("/:id/sessions", payoutHandler.ListPaymentSessions)

	notifications := api.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
}
