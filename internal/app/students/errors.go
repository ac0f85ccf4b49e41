package students

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Error codes surfaced to clients.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "STUDENT_NOT_FOUND"
	CodeRAInUse          = "RA_ALREADY_IN_USE"
	CodeCPFInUse         = "CPF_ALREADY_IN_USE"
	CodeEmailInUse       = "EMAIL_ALREADY_IN_USE"
	CodeIdempotencyReuse = "IDEMPOTENCY_KEY_REUSE"
)

func notFound() *Error {
	return &Error{Status: 404, Code: CodeNotFound, Message: "student not found"}
}

func raInUse() *Error {
	return &Error{Status: 409, Code: CodeRAInUse, Message: "RA is already in use by another student"}
}

func cpfInUse() *Error {
	return &Error{Status: 409, Code: CodeCPFInUse, Message: "CPF is already in use by another student"}
}

func emailInUse() *Error {
	return &Error{Status: 409, Code: CodeEmailInUse, Message: "email is already in use by another student"}
}
