package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	randomIDLength = 9
)

// intn returns a uniform integer in [0, n).
type intn func(n int) int

func randomBase36(next intn, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(base36Alphabet[next(len(base36Alphabet))])
	}
	return b.String()
}

// newRecordID builds "<prefix>-<epoch ms>-<random suffix>".
func newRecordID(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, at.UnixMilli(), randomBase36(rand.IntN, randomIDLength))
}
