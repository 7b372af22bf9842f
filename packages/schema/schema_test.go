package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "integer"},
		"name": {"type": "string"}
	}
}`

func TestValidateBytes(t *testing.T) {
	tests := []struct {
		name     string
		document string
		valid    bool
	}{
		{name: "valid document", document: `{"id": 1, "name": "alice"}`, valid: true},
		{name: "missing field", document: `{"id": 1}`, valid: false},
		{name: "wrong type", document: `{"id": "x", "name": "alice"}`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateBytes([]byte(userSchema), []byte(tt.document))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}

func TestValidateBytesMalformedDocument(t *testing.T) {
	_, err := ValidateBytes([]byte(userSchema), []byte("{not json"))
	assert.Error(t, err)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(userSchema), 0o644))

	result, err := ValidateFile(path, []byte(`{"id": 2, "name": "bob"}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = ValidateFile(filepath.Join(t.TempDir(), "missing.json"), []byte(`{}`))
	assert.Error(t, err)
}
