package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields_Columns(t *testing.T) {
	name := "Ann"
	age := 30

	f := Fields{Name: &name, Age: &age}
	assert.False(t, f.Empty())
	assert.Equal(t, map[string]any{"name": "Ann", "age": 30}, f.Columns())

	assert.True(t, Fields{}.Empty())
	assert.Empty(t, Fields{}.Columns())
}
