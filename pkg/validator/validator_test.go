package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"gte=0,lte=150"`
}

type slugStruct struct {
	Username string  `json:"username" validate:"required,min=3,max=30,slug"`
	Website  *string `json:"website" validate:"omitempty,url"`
}

func TestValidate_Success(t *testing.T) {
	s := testStruct{Name: "Alice", Email: "alice@example.com", Age: 30}
	assert.NoError(t, Validate(s))
}

func TestValidate_MissingRequired(t *testing.T) {
	s := testStruct{Email: "alice@example.com", Age: 30}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "name")
	assert.Equal(t, "is required", fields["name"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	s := testStruct{Name: "Alice", Email: "not-an-email", Age: 30}
	err := Validate(s)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["email"])
}

func TestValidate_OutOfRange(t *testing.T) {
	s := testStruct{Name: "Alice", Email: "alice@example.com", Age: 200}
	err := Validate(s)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["age"], "less than or equal to 150")
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(testStruct{Age: -1})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.Fields(), 3)
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(testStruct{Email: "alice@example.com"})
	require.Error(t, err)
	assert.Equal(t, "name is required", err.Error())
}

func TestValidate_Slug(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"lowercase", "acme", false},
		{"digits and hyphens", "acme-2-shop", false},
		{"uppercase", "Acme", true},
		{"underscore", "acme_shop", true},
		{"space", "acme shop", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"max length", strings.Repeat("a", 30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(slugStruct{Username: tt.username})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_SlugMessage(t *testing.T) {
	err := Validate(slugStruct{Username: "Not_Valid"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["username"], "lowercase letters")
}

func TestValidate_OptionalURL(t *testing.T) {
	good := "https://cdn.example.com/a.png"
	bad := "not a url"

	assert.NoError(t, Validate(slugStruct{Username: "acme"}))
	assert.NoError(t, Validate(slugStruct{Username: "acme", Website: &good}))

	err := Validate(slugStruct{Username: "acme", Website: &bad})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid URL", valErr.Fields()["website"])
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"name":"Alice","email":"alice@example.com","age":25}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var s testStruct
	err := DecodeAndValidate(req, &s)

	require.NoError(t, err)
	assert.Equal(t, "Alice", s.Name)
	assert.Equal(t, "alice@example.com", s.Email)
	assert.Equal(t, 25, s.Age)
}

func TestDecodeAndValidate_IgnoresUnknownFields(t *testing.T) {
	body := `{"name":"Alice","email":"alice@example.com","age":25,"role":"ADMIN"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var s testStruct
	assert.NoError(t, DecodeAndValidate(req, &s))
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var s testStruct
	err := DecodeAndValidate(req, &s)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	body := `{"name":"","email":"bad","age":25}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var s testStruct
	err := DecodeAndValidate(req, &s)

	require.Error(t, err)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
