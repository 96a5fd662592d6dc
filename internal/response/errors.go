package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrQuizNotActive   ErrCode = "QUIZ_NOT_ACTIVE"
	ErrQuizUpcoming    ErrCode = "QUIZ_UPCOMING"
	ErrQuizExpired     ErrCode = "QUIZ_EXPIRED"
	ErrQuizUnscheduled ErrCode = "QUIZ_UNSCHEDULED"
	ErrNotQuizOwner    ErrCode = "NOT_QUIZ_OWNER"
	ErrAnswerCount     ErrCode = "ANSWER_COUNT_MISMATCH"

	// ─── Collaborators ─────────────────────────────────────────────────
	ErrAIUnavailable ErrCode = "AI_UNAVAILABLE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is not valid."
	case ErrInvalidPayload:
		return "The request payload is not valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrQuizNotActive:
		return "This quiz is not accepting submissions right now."
	case ErrQuizUpcoming:
		return "This quiz has not started yet. Check back when the window opens."
	case ErrQuizExpired:
		return "The submission window for this quiz has closed."
	case ErrQuizUnscheduled:
		return "This quiz has not been scheduled."
	case ErrNotQuizOwner:
		return "You are not the author of this quiz."
	case ErrAnswerCount:
		return "The number of answers does not match the number of questions."

	// ─── Collaborators ─────────────────────────────────────────────────
	case ErrAIUnavailable:
		return "Question generation is not available right now."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
