package file

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	owner := uuid.New()

	f, err := NewFile(owner, " logo.png ", "image/png", 10, "users/x/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "logo.png", f.Name)
	assert.Equal(t, owner, f.OwnerID)

	_, err = NewFile(owner, "", "image/png", 1, "k")
	assert.Error(t, err)
	_, err = NewFile(owner, "a", "image/png", -1, "k")
	assert.Error(t, err)
	_, err = NewFile(owner, "a", "image/png", 1, "")
	assert.Error(t, err)
}
