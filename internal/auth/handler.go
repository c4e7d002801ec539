package auth

import (
	"strings"

	"almacen-backend/internal/config"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterAdminRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// POST /api/auth/register-admin
// Bootstrap del primer administrador; se bloquea en cuanto exista uno.
func RegisterAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		body.FirstName = strings.TrimSpace(body.FirstName)

		if body.Username == "" || body.FirstName == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Usuario, nombre y contrasena son requeridos")
		}
		if len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "La contrasena debe tener al menos 8 caracteres")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Ya existe un administrador")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contrasena")
		}

		user := models.User{
			Username:     body.Username,
			FirstName:    body.FirstName,
			LastName:     strings.TrimSpace(body.LastName),
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Status:       models.StatusActive,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))

		var user models.User
		if err := database.DB.Where("LOWER(username) = ?", body.Username).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario o contrasena incorrectos")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario o contrasena incorrectos")
		}

		if user.Status != models.StatusActive {
			return fiber.NewError(fiber.StatusForbidden, "El usuario esta inactivo")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":         user.ID,
				"username":   user.Username,
				"first_name": user.FirstName,
				"last_name":  user.LastName,
				"role":       user.Role,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
		}

		return c.JSON(fiber.Map{
			"id":         user.ID,
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"role":       user.Role,
			"status":     user.Status,
		})
	}
}

// PUT /api/auth/perfil
// El usuario edita sus propios datos; la contrasena solo cambia si se envia.
func UpdateProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
		}

		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)
		body.Email = strings.TrimSpace(body.Email)

		if body.FirstName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre es requerido")
		}
		if len(body.FirstName) > 150 || len(body.LastName) > 150 {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede exceder 150 caracteres")
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

		user.FirstName = body.FirstName
		user.LastName = body.LastName
		user.Email = body.Email

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el perfil")
		}

		return c.JSON(fiber.Map{"message": "Perfil actualizado exitosamente"})
	}
}
