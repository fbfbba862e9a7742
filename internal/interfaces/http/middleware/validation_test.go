package middleware

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutForm struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required,vn_phone"`
}

func bindJSON(t *testing.T, body string, obj any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(obj)
}

func TestVNPhoneValidation(t *testing.T) {
	SetupValidator()

	valid := []string{
		"0912345678",
		"0351234567",
		"+84912345678",
		"0789999999",
	}
	for _, phone := range valid {
		var form checkoutForm
		err := bindJSON(t, `{"full_name":"Nguyen Van A","phone":"`+phone+`"}`, &form)
		assert.NoError(t, err, "phone %s should be accepted", phone)
	}

	invalid := []string{
		"12345",
		"0112345678",  // 01x prefix retired
		"091234567",   // too short
		"09123456789", // too long
		"84912345678", // missing leading 0 or +
		"abc",
	}
	for _, phone := range invalid {
		var form checkoutForm
		err := bindJSON(t, `{"full_name":"Nguyen Van A","phone":"`+phone+`"}`, &form)
		assert.Error(t, err, "phone %s should be rejected", phone)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	var form checkoutForm
	err := bindJSON(t, `{"phone":"12345"}`, &form)
	require.Error(t, err)

	details := FormatValidationErrors(err)
	require.Len(t, details, 2)

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	// Field names come from json tags, not Go names
	assert.Equal(t, "This field is required", fields["full_name"])
	assert.Equal(t, "Invalid Vietnamese phone number", fields["phone"])
}

func TestFormatValidationErrorsNonValidationError(t *testing.T) {
	var form checkoutForm
	err := bindJSON(t, `{not json`, &form)
	require.Error(t, err)
	assert.Nil(t, FormatValidationErrors(err))
}
