package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/controllers"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Auth       *controllers.AuthController
	Semester   *controllers.SemesterController
	Offering   *controllers.OfferingController
	Section    *controllers.SectionController
	Assignment *controllers.AssignmentController
	Enrollment *controllers.EnrollmentController
	Form       *controllers.FormController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/auth/login", c.Auth.Login)
	v1.GET("/forms/user", c.Form.GetUserForm)
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, dto.NewStructuredResponse(gin.H{"status": "ok"}, ""))
	})

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	staff := authMiddleware.RoleRequired(models.RoleStaff)
	faculty := authMiddleware.RoleRequired(models.RoleStaff, models.RoleInstructor)

	semesters := authenticated.Group("/semesters")
	{
		semesters.GET("", c.Semester.ListSemesters)
		semesters.GET("/active", c.Semester.GetActiveSemester)
		semesters.GET("/:id", c.Semester.GetSemester)
		semesters.POST("", staff, c.Semester.CreateSemester)
		semesters.POST("/:id/activate", staff, c.Semester.ActivateSemester)
		semesters.POST("/:id/deactivate", staff, c.Semester.DeactivateSemester)
	}

	offerings := authenticated.Group("/offerings")
	{
		offerings.GET("", c.Offering.ListOfferings)
		offerings.GET("/:id", c.Offering.GetOffering)
		offerings.GET("/:id/assignments", c.Offering.ListAssignments)
		offerings.POST("", staff, c.Offering.CreateOffering)
		offerings.PATCH("/:id/status", staff, c.Offering.UpdateOfferingStatus)
	}

	sections := authenticated.Group("/sections")
	{
		sections.GET("", c.Section.ListSections)
		sections.GET("/code/:code", c.Section.GetSectionByCode)
		sections.GET("/:id", c.Section.GetSection)
		sections.GET("/:id/seats/ws", c.Section.SeatFeed)
		sections.GET("/:id/enrollments", faculty, c.Section.ListEnrollments)
		sections.GET("/:id/available-offerings", staff, c.Section.ListAvailableOfferings)
		sections.POST("", staff, c.Section.CreateSection)
		sections.PATCH("/:id", staff, c.Section.UpdateSection)
		sections.DELETE("/:id", staff, c.Section.DeleteSection)
		sections.POST("/:id/subjects", staff, c.Section.AttachSubject)
	}
	authenticated.DELETE("/section-subjects/:id", staff, c.Section.DetachSubject)

	assignments := authenticated.Group("/assignments", staff)
	{
		assignments.POST("", c.Assignment.AssignInstructor)
		assignments.DELETE("/:id", c.Assignment.UnassignInstructor)
	}

	enrollments := authenticated.Group("/enrollments")
	{
		enrollments.GET("/:id", faculty, c.Enrollment.GetEnrollment)
		enrollments.POST("", staff, c.Enrollment.Enroll)
		enrollments.POST("/batch", staff, c.Enrollment.BatchEnroll)
		enrollments.PATCH("/:id/status", staff, c.Enrollment.UpdateEnrollmentStatus)
		enrollments.DELETE("/:id", staff, c.Enrollment.Unenroll)
	}
}
