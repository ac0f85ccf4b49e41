package students

// CreateStudentInput carries a new student record. Validation rules are struct tags
// (see internal/platform/validation); the json names are the field names reported back.
type CreateStudentInput struct {
	Name  string `json:"Name" validate:"required,min=2,max=100"`
	Email string `json:"Email" validate:"required,max=100,email"`
	RA    string `json:"RA" validate:"required,max=20"`
	CPF   string `json:"CPF" validate:"required,len=11,numeric,cpf"`
}

// UpdateStudentInput replaces a student's name and email. RA and CPF cannot change.
type UpdateStudentInput struct {
	Name  string `json:"Name" validate:"required,min=2,max=100"`
	Email string `json:"Email" validate:"required,max=100,email"`
}
