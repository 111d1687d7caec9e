package classController

import (
	"examly/database"
	"examly/middleware"
	"examly/models"

	"github.com/gofiber/fiber/v2"
)

// CreateClass creates a class owned by the calling instructor
func CreateClass(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Schedule    string `json:"schedule"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.Name == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Class name is required!", nil)
	}

	class := models.Class{
		Name:         reqData.Name,
		Description:  reqData.Description,
		Schedule:     reqData.Schedule,
		InstructorID: userID,
		IsActive:     true,
	}
	if err := database.Database.Db.Create(&class).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create class!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Class created successfully.", class)
}

// ListClasses lists classes for the caller: instructors their own,
// students the classes they are approved in, admins all.
func ListClasses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var classes []models.Class
	switch user.Role {
	case models.RoleAdmin:
		if err := db.Find(&classes).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classes!", nil)
		}
	case models.RoleProfessor:
		if err := db.Where("instructor_id = ?", userID).Find(&classes).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classes!", nil)
		}
	default:
		if err := db.
			Joins("JOIN class_enrollments ON class_enrollments.class_id = classes.id").
			Where("class_enrollments.student_id = ? AND class_enrollments.status = ?", userID, models.ClassEnrollmentApproved).
			Find(&classes).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classes!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classes fetched successfully.", classes)
}

// GetClass fetches one class
func GetClass(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	classID := c.Locals("classID").(uint)

	var class models.Class
	if err := database.Database.Db.First(&class, classID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Class not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Class fetched successfully.", class)
}
