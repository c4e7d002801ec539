package admin

import (
	"strings"

	"almacen-backend/internal/auth"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserResponse struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	Status    string          `json:"status"`
}

type CreateUserRequest struct {
	Username        string          `json:"username"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Password        string          `json:"password"`
	PasswordConfirm string          `json:"password_confirm"`
	Role            models.UserRole `json:"role"`
}

type UpdateUserRequest struct {
	Username        string          `json:"username"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Password        string          `json:"password"`
	PasswordConfirm string          `json:"password_confirm"`
	Role            models.UserRole `json:"role"`
	Status          string          `json:"status"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
	}
}

// GET /api/admin/usuarios
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("username asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los usuarios")
		}

		res := make([]UserResponse, 0, len(users))
		for i := range users {
			res = append(res, toUserResponse(&users[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/usuarios
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		body.Username = strings.TrimSpace(body.Username)
		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)

		if body.Username == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre de usuario es requerido")
		}
		if len(body.Username) > 150 {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre de usuario no puede exceder 150 caracteres")
		}
		if body.FirstName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre es requerido")
		}
		if len(body.FirstName) > 150 || len(body.LastName) > 150 {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede exceder 150 caracteres")
		}
		if body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "La contrasena es requerida")
		}
		if len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "La contrasena debe tener al menos 8 caracteres")
		}
		if body.Password != body.PasswordConfirm {
			return fiber.NewError(fiber.StatusBadRequest, "Las contrasenas no coinciden")
		}
		if body.Role == "" {
			body.Role = models.RoleAlmacen
		}
		if !models.ValidRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "El rol seleccionado no es valido")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("LOWER(username) = ?", strings.ToLower(body.Username)).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe un usuario con ese nombre de usuario")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contrasena")
		}

		user := models.User{
			Username:     body.Username,
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			PasswordHash: string(hash),
			Role:         body.Role,
			Status:       models.StatusActive,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

// PUT /api/admin/usuarios/:id
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		body.Username = strings.TrimSpace(body.Username)
		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)

		if body.Username == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre de usuario es requerido")
		}
		if len(body.Username) > 150 {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre de usuario no puede exceder 150 caracteres")
		}
		if body.FirstName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre es requerido")
		}
		if len(body.FirstName) > 150 || len(body.LastName) > 150 {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede exceder 150 caracteres")
		}
		if body.Role == "" {
			body.Role = user.Role
		}
		if !models.ValidRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "El rol seleccionado no es valido")
		}
		if body.Status == "" {
			body.Status = models.StatusActive
		}

		// El administrador principal no pierde su rol
		if user.Role == models.RoleAdmin && user.ID == 1 && body.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusBadRequest, "No se puede cambiar el rol del administrador principal")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("LOWER(username) = ? AND id <> ?", strings.ToLower(body.Username), user.ID).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe otro usuario con ese nombre de usuario")
		}

		if body.Password != "" {
			if len(body.Password) < 8 {
				return fiber.NewError(fiber.StatusBadRequest, "La contrasena debe tener al menos 8 caracteres")
			}
			if body.Password != body.PasswordConfirm {
				return fiber.NewError(fiber.StatusBadRequest, "Las contrasenas no coinciden")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contrasena")
			}
			user.PasswordHash = string(hash)
		}

		user.Username = body.Username
		user.FirstName = body.FirstName
		user.LastName = body.LastName
		user.Role = body.Role
		user.Status = body.Status

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el usuario")
		}

		return c.JSON(toUserResponse(&user))
	}
}

// DELETE /api/admin/usuarios/:id
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
		}

		requesterID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		if user.ID == requesterID {
			return fiber.NewError(fiber.StatusBadRequest, "No puede eliminarse a si mismo")
		}

		if user.Role == models.RoleAdmin {
			var adminCount int64
			database.DB.Model(&models.User{}).
				Where("role = ?", models.RoleAdmin).
				Count(&adminCount)
			if adminCount <= 1 {
				return fiber.NewError(fiber.StatusBadRequest, "No se puede eliminar al unico administrador del sistema")
			}
		}

		if err := database.DB.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el usuario")
		}

		return c.JSON(fiber.Map{"message": "Usuario \"" + user.Username + "\" eliminado exitosamente"})
	}
}
