package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator_FolioTag(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type payload struct {
		Folio string `json:"folio" binding:"folio"`
	}

	valid := []string{"REQ-2026-0042", "GAS-001", "A1"}
	for _, folio := range valid {
		assert.NoError(t, v.Struct(payload{Folio: folio}), folio)
	}

	invalid := []string{"", "req-001", "REQ 001", "-REQ", "REQ_001"}
	for _, folio := range invalid {
		assert.Error(t, v.Struct(payload{Folio: folio}), folio)
	}
}
