package timegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTimeOptions(t *testing.T) {
	options := GenerateTimeOptions()

	require.Len(t, options, 96)
	assert.Equal(t, "00:00", options[0])
	assert.Equal(t, "00:15", options[1])
	assert.Equal(t, "12:00", options[48])
	assert.Equal(t, "23:45", options[95])
}

func TestGenerateTimeOptionsStrictlyIncreasing(t *testing.T) {
	options := GenerateTimeOptions()

	for i := 1; i < len(options); i++ {
		assert.Less(t, options[i-1], options[i])
	}
}
