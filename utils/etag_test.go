package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateETag(t *testing.T) {
	id, err := primitive.ObjectIDFromHex("64f0c2a9e13d5a0001a7b001")
	require.NoError(t, err)
	at := time.Date(2025, time.June, 10, 19, 0, 0, 0, time.UTC)

	t.Run("stable for the same document state", func(t *testing.T) {
		assert.Equal(t, GenerateETag(id, at), GenerateETag(id, at))
	})

	t.Run("changes when the document changes", func(t *testing.T) {
		assert.NotEqual(t, GenerateETag(id, at), GenerateETag(id, at.Add(time.Second)))
	})

	t.Run("quoted per the ETag header grammar", func(t *testing.T) {
		etag := GenerateETag(id, at)
		assert.True(t, len(etag) > 2)
		assert.Equal(t, byte('"'), etag[0])
		assert.Equal(t, byte('"'), etag[len(etag)-1])
	})
}
