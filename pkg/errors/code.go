package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Identity & Auth errors
// 12000-12999: Question lifecycle errors
// 13000-13999: Responder management errors
// 14000-14999: Dashboard & Aggregation errors
// 16000-16999: Admin & Permission errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError       ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	RecordAlreadyExists ErrorCode = 10102
	TransactionFailed   ErrorCode = 10103

	// Cache errors (10200-10299)
	CacheError     ErrorCode = 10200
	CacheMiss      ErrorCode = 10201
	CacheSetFailed ErrorCode = 10202

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Identity & Auth Errors (11000-11999) ==========

	// Authentication (11000-11099)
	InvalidCredentials    ErrorCode = 11000
	UserNotFound          ErrorCode = 11001
	TokenExpired          ErrorCode = 11002
	TokenInvalid          ErrorCode = 11003
	TokenGenerationFailed ErrorCode = 11004

	// Registration (11100-11199)
	EmailAlreadyExists ErrorCode = 11100
	InvalidEmail       ErrorCode = 11101
	InvalidPassword    ErrorCode = 11102
	InvalidName        ErrorCode = 11103
	InvalidRole        ErrorCode = 11104

	// ========== Question Lifecycle Errors (12000-12999) ==========

	// Question basic (12000-12099)
	QuestionNotFound     ErrorCode = 12000
	QuestionCreateFailed ErrorCode = 12001
	TitleRequired        ErrorCode = 12002
	ContentRequired      ErrorCode = 12003

	// Transitions (12100-12199)
	QuestionAlreadyClaimed  ErrorCode = 12100
	QuestionNotPending      ErrorCode = 12101
	QuestionAlreadyAnswered ErrorCode = 12102
	QuestionNotAnswered     ErrorCode = 12103
	QuestionClosed          ErrorCode = 12104
	TransitionConflict      ErrorCode = 12105

	// Answering (12200-12299)
	NotQuestionResponder ErrorCode = 12200
	AnswerRequired       ErrorCode = 12201

	// ========== Responder Management Errors (13000-13999) ==========

	ResponderNotFound     ErrorCode = 13000
	ResponderCreateFailed ErrorCode = 13001
	ResponderUpdateFailed ErrorCode = 13002
	TargetNotResponder    ErrorCode = 13003
	InvalidExpertise      ErrorCode = 13004

	// ========== Dashboard & Aggregation Errors (14000-14999) ==========

	StatsQueryFailed      ErrorCode = 14000
	ActivityQueryFailed   ErrorCode = 14001
	ActivityAppendFailed  ErrorCode = 14002
	ActivityPublishFailed ErrorCode = 14003

	// ========== Admin & Permission Errors (16000-16999) ==========

	PermissionDenied       ErrorCode = 16000
	InsufficientPermission ErrorCode = 16001
	AdminOperationFailed   ErrorCode = 16100
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:       "Database operation failed",
	RecordNotFound:      "Record not found in database",
	RecordAlreadyExists: "Record already exists",
	TransactionFailed:   "Database transaction failed",

	// Cache
	CacheError:     "Cache operation failed",
	CacheMiss:      "Cache miss",
	CacheSetFailed: "Failed to set cache",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Identity - Authentication
	InvalidCredentials:    "Invalid email or password",
	UserNotFound:          "User not found",
	TokenExpired:          "Token has expired",
	TokenInvalid:          "Invalid token",
	TokenGenerationFailed: "Failed to generate token",

	// Identity - Registration
	EmailAlreadyExists: "Email already registered",
	InvalidEmail:       "Invalid email format",
	InvalidPassword:    "Password must be at least 6 characters",
	InvalidName:        "Name is required",
	InvalidRole:        "Invalid role",

	// Question
	QuestionNotFound:     "Question not found",
	QuestionCreateFailed: "Failed to create question",
	TitleRequired:        "Title is required",
	ContentRequired:      "Content is required",

	// Transitions
	QuestionAlreadyClaimed:  "Question already claimed",
	QuestionNotPending:      "Question is not pending",
	QuestionAlreadyAnswered: "Question is already answered",
	QuestionNotAnswered:     "Question is not answered yet",
	QuestionClosed:          "Question is closed",
	TransitionConflict:      "Question state changed, please refresh",

	// Answering
	NotQuestionResponder: "Not authorized to answer this question",
	AnswerRequired:       "Answer is required",

	// Responder management
	ResponderNotFound:     "Responder not found",
	ResponderCreateFailed: "Failed to create responder",
	ResponderUpdateFailed: "Failed to update responder",
	TargetNotResponder:    "Target user is not a responder",
	InvalidExpertise:      "Invalid expertise tag",

	// Dashboard
	StatsQueryFailed:      "Failed to compute dashboard statistics",
	ActivityQueryFailed:   "Failed to fetch activities",
	ActivityAppendFailed:  "Failed to record activity",
	ActivityPublishFailed: "Failed to publish activity event",

	// Permission
	PermissionDenied:       "Permission denied",
	InsufficientPermission: "Insufficient permission",
	AdminOperationFailed:   "Admin operation failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == UserNotFound, c == QuestionNotFound, c == ResponderNotFound:
		return 404
	case c >= 11000 && c < 11100: // Authentication errors
		return 401
	case c == Unauthorized, c == TokenExpired, c == TokenInvalid:
		return 401
	case c == Forbidden, c == NotQuestionResponder, c >= 16000 && c < 16100:
		return 403
	case c >= 12100 && c < 12200: // lost a race on a conditional transition
		return 409
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c >= 11100 && c < 11200: // Registration errors
		return 400
	case c == InvalidParams, c == AnswerRequired, c == TitleRequired, c == ContentRequired,
		c == TargetNotResponder, c == InvalidExpertise:
		return 400
	default:
		return 500
	}
}
