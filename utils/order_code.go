package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// OrderCode returns the customer-facing code CR<last 6 digits of unix millis><3 random digits>.
func OrderCode(now time.Time) string {
	return fmt.Sprintf("CR%06d%03d", now.UnixMilli()%1_000_000, rand.Intn(1000))
}
