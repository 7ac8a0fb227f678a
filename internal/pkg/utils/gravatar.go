package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GetGravatarURL builds the Gravatar URL used as the avatar fallback for
// creators who never uploaded a profile picture. The email is normalized
// (trimmed, lowercased) before hashing per the Gravatar contract; d=mp
// falls back to the generic silhouette for unregistered addresses.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=mp",
		hex.EncodeToString(sum[:]), size)
}
