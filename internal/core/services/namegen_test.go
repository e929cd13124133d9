package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateArtifactKey_KeepsExtensionLowercased(t *testing.T) {
	key := GenerateArtifactKey("Radiografia Torax.JPG")
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestGenerateArtifactKey_NotInvertible(t *testing.T) {
	key := GenerateArtifactKey("juan_perez_scan.png")
	assert.NotContains(t, key, "juan")
	assert.NotContains(t, key, "perez")
	// 64 hex chars + extension
	assert.Len(t, key, 64+len(".png"))
}

func TestGenerateArtifactKey_NoCollisions(t *testing.T) {
	const iterations = 10000

	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		key := GenerateArtifactKey("same_original_name.jpg")
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}
