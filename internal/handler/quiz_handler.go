package handler

import (
	"errors"
	"net/http"

	"github.com/brightclass/brightclass-backend/internal/middleware"
	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/repository"
	"github.com/brightclass/brightclass-backend/internal/response"
	"github.com/brightclass/brightclass-backend/internal/schedule"
	"github.com/brightclass/brightclass-backend/internal/service"
	"github.com/brightclass/brightclass-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuizHandler struct {
	quizService *service.QuizService
	aiService   *service.AIService
	users       *repository.UserRepository
}

func NewQuizHandler(quizService *service.QuizService, aiService *service.AIService, users *repository.UserRepository) *QuizHandler {
	return &QuizHandler{quizService: quizService, aiService: aiService, users: users}
}

// quizID parses the :quiz_id path parameter, writing the error response
// itself on failure.
func quizID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failQuiz maps service errors to API error codes.
func failQuiz(c *gin.Context, err error) {
	var winErr *service.WindowError
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizOwner)
	case errors.Is(err, service.ErrInvalidQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrAnswerCountMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerCount)
	case errors.As(err, &winErr):
		response.Fail(c, http.StatusConflict, windowErrCode(winErr.Status))
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func windowErrCode(status schedule.Status) response.ErrCode {
	switch status {
	case schedule.StatusUpcoming:
		return response.ErrQuizUpcoming
	case schedule.StatusExpired:
		return response.ErrQuizExpired
	case schedule.StatusUnscheduled:
		return response.ErrQuizUnscheduled
	default:
		return response.ErrQuizNotActive
	}
}

// ─── Teacher endpoints ──────────────────────────────────────────────────

// List godoc
// GET /api/v1/teacher/quizzes
func (h *QuizHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizzes, err := h.quizService.ListByTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// Create godoc
// POST /api/v1/teacher/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// Get godoc
// GET /api/v1/teacher/quizzes/:quiz_id
func (h *QuizHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetForTeacher(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Update godoc
// PUT /api/v1/teacher/quizzes/:quiz_id
func (h *QuizHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/teacher/quizzes/:quiz_id
func (h *QuizHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id, claims.UserID); err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "quiz deleted successfully"})
}

// Schedule godoc
// POST /api/v1/teacher/quizzes/:quiz_id/schedule
func (h *QuizHandler) Schedule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	var req model.ScheduleQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, notified, err := h.quizService.Schedule(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz, "students_notified": notified})
}

// Close godoc
// POST /api/v1/teacher/quizzes/:quiz_id/close
func (h *QuizHandler) Close(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.Close(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Results godoc
// GET /api/v1/teacher/quizzes/:quiz_id/results
func (h *QuizHandler) Results(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	submissions, err := h.quizService.Results(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failQuiz(c, err)
		return
	}
	if submissions == nil {
		submissions = []model.Submission{}
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}

// Stats godoc
// GET /api/v1/teacher/quizzes/stats
func (h *QuizHandler) Stats(c *gin.Context) {
	claims := middleware.GetClaims(c)

	stats, err := h.quizService.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Generate godoc
// POST /api/v1/teacher/quizzes/generate
func (h *QuizHandler) Generate(c *gin.Context) {
	var req model.GenerateQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.aiService.GenerateQuestions(c.Request.Context(), &req)
	if errors.Is(err, service.ErrAIUnavailable) {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIUnavailable)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrAIUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ─── Student endpoints ──────────────────────────────────────────────────

// ListForStudent godoc
// GET /api/v1/student/quizzes
func (h *QuizHandler) ListForStudent(c *gin.Context) {
	claims := middleware.GetClaims(c)

	student, err := h.users.GetStudentByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	quizzes, err := h.quizService.ListForStudent(c.Request.Context(), student)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if quizzes == nil {
		quizzes = []model.StudentQuiz{}
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// Submit godoc
// POST /api/v1/student/quizzes/:quiz_id/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.quizService.Submit(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Feedback godoc
// GET /api/v1/student/quizzes/:quiz_id/feedback
// Generates a short AI comment on the student's latest graded attempt.
func (h *QuizHandler) Feedback(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := quizID(c)
	if !ok {
		return
	}

	submission, err := h.quizService.LatestSubmission(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failQuiz(c, err)
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), id)
	if err != nil {
		failQuiz(c, err)
		return
	}

	result := &model.SubmitResult{
		Score:          submission.Score,
		CorrectAnswers: submission.CorrectCount,
		TotalQuestions: submission.TotalQuestions,
	}

	feedback, err := h.aiService.GenerateFeedback(c.Request.Context(), quiz.Title, result)
	if errors.Is(err, service.ErrAIUnavailable) {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIUnavailable)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrAIUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"feedback": feedback, "score": submission.Score})
}
