package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocIsRegisteredAndValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var parsed struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	for _, p := range []string{"/api/auth/register", "/api/auth/login", "/api/auth/refresh", "/api/auth/logout", "/api/user/profile"} {
		assert.Contains(t, parsed.Paths, p)
	}
}
