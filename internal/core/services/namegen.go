package services

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateArtifactKey produces a storage key for an uploaded file: the SHA-256
// of the original name salted with a fresh UUID and the current nanotime, plus
// the original extension lower-cased. The key cannot be inverted back to the
// original name, and the per-call salt makes collisions between concurrent
// uploads of the same filename negligible, so no external lock is needed to
// keep storage writes from overwriting each other.
func GenerateArtifactKey(originalFilename string) string {
	salt := uuid.NewString() + strconv.FormatInt(time.Now().UnixNano(), 10)
	sum := sha256.Sum256([]byte(originalFilename + salt))
	ext := strings.ToLower(path.Ext(originalFilename))
	return hex.EncodeToString(sum[:]) + ext
}
