package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyFiles struct {
	Dir     string `json:"dir" validate:"required"`
	Private string `json:"private" validate:"required,basename"`
	Bits    int    `json:"bits" validate:"gte=2048"`
}

func TestStruct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(&keyFiles{Dir: "keys", Private: "private.pem", Bits: 2048}))

	err := v.Struct(&keyFiles{Private: "../private.pem", Bits: 1024})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "dir is a required field", FieldMessage(err, "dir"))
	assert.Equal(t, "private must be a plain file name", FieldMessage(err, "private"))
	assert.NotEmpty(t, FieldMessage(err, "bits"))
}

func TestTranslate(t *testing.T) {
	v := New(WithLanguage("zh"))

	err := v.Struct(&keyFiles{Private: "private.pem", Bits: 2048})
	var ve *ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields(), 1)

	fe := ve.Fields()[0]
	assert.Equal(t, "dir", fe.Field())
	assert.Equal(t, "required", fe.Tag())
	assert.Equal(t, "dir为必填字段", fe.Message())
	assert.Equal(t, "dir is a required field", fe.Translate("en"))
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("application/pdf", "oneof=application/pdf image/png"))
	assert.Error(t, v.Var("text/html", "oneof=application/pdf image/png"))
	assert.Error(t, v.Var("a/b", "basename"))
	assert.NoError(t, v.Var("passport.pdf", "basename"))
}

func TestNilTarget(t *testing.T) {
	assert.Error(t, Validate.Struct(nil))
}
