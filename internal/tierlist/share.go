package tierlist

import (
	"math/rand"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	shareIDLength   = 16
	shareIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// NewShareID returns a fresh URL-safe share token. Token generation must
// not fail a share toggle, so an entropy error falls back to math/rand.
func NewShareID() string {
	id, err := gonanoid.Generate(shareIDAlphabet, shareIDLength)
	if err == nil {
		return id
	}

	buf := make([]byte, shareIDLength)
	for i := range buf {
		buf[i] = shareIDAlphabet[rand.Intn(len(shareIDAlphabet))]
	}
	return string(buf)
}
