package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	t.Run("it builds the deep link with an escaped redirect", func(t *testing.T) {
		result := URL("7c40b5c9-fa74-49cf-b98c-bfe651f9a7c6", "http://127.0.0.1:5173/")

		assert.Equal(t, "bankid:///?autostarttoken=7c40b5c9-fa74-49cf-b98c-bfe651f9a7c6&redirect=http%3A%2F%2F127.0.0.1%3A5173%2F", result)
	})

	t.Run("an empty token still yields a syntactically valid URL", func(t *testing.T) {
		assert.Equal(t, "bankid:///?autostarttoken=&redirect=", URL("", ""))
	})
}
