package handler

import (
	"errors"
	"net/http"

	"github.com/brightclass/brightclass-backend/internal/middleware"
	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/repository"
	"github.com/brightclass/brightclass-backend/internal/response"
	"github.com/brightclass/brightclass-backend/internal/service"
	"github.com/brightclass/brightclass-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	users       *repository.UserRepository
}

func NewAuthHandler(authService *service.AuthService, users *repository.UserRepository) *AuthHandler {
	return &AuthHandler{authService: authService, users: users}
}

// TeacherLogin godoc
// POST /api/v1/auth/teacher/login
func (h *AuthHandler) TeacherLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	teacher, err := h.users.GetTeacherByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(teacher.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(service.TokenTypeTeacher, teacher.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "teacher": teacher})
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.users.GetStudentByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(student.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(service.TokenTypeStudent, student.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "student": student})
}

// Me godoc
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	switch claims.TokenType {
	case service.TokenTypeTeacher:
		teacher, err := h.users.GetTeacherByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"role": "teacher", "teacher": teacher})

	case service.TokenTypeStudent:
		student, err := h.users.GetStudentByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"role": "student", "student": student})

	default:
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
	}
}
