package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"Name" validate:"required,min=2,max=100"`
	Email string `json:"Email" validate:"required,max=100,email"`
	CPF   string `json:"CPF" validate:"required,len=11,numeric,cpf"`
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()

	require.NoError(t, Struct(sample{Name: "Ana", Email: "ana@example.com", CPF: "11144477735"}))
}

func TestStruct_ReportsFirstFailurePerField(t *testing.T) {
	t.Parallel()

	err := Struct(sample{Name: "A", Email: "not-an-email", CPF: "11144477734"})
	require.Error(t, err)

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "must have at least 2 characters", fe["Name"])
	assert.Equal(t, "must be a valid email address", fe["Email"])
	assert.Equal(t, "is not a valid CPF", fe["CPF"])
}

func TestStruct_CPFRuleOrder(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":             "must be non-empty",
		"1114447773":   "must have exactly 11 characters",
		"1114447773a":  "must contain only digits",
		"11111111111":  "is not a valid CPF",
		"111444777350": "must have exactly 11 characters",
	}
	for in, want := range cases {
		err := Struct(sample{Name: "Ana", Email: "ana@example.com", CPF: in})
		var fe FieldErrors
		require.ErrorAs(t, err, &fe, "CPF=%q", in)
		assert.Equal(t, want, fe["CPF"], "CPF=%q", in)
		assert.Len(t, fe, 1, "CPF=%q", in)
	}
}

func TestVar(t *testing.T) {
	t.Parallel()

	assert.True(t, Var("11144477735", "required,cpf"))
	assert.False(t, Var("00000000000", "required,cpf"))
	assert.False(t, Var("", "required,cpf"))
}
