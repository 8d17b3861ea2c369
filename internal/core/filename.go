package core

import (
	"fmt"
	"time"
)

// OutputFilename names a rendered document: labels-<formatId>-<YYYY-MM-DD>.html.
// The date is taken in UTC.
func OutputFilename(formatID string, t time.Time) string {
	return fmt.Sprintf("labels-%s-%s.html", formatID, t.UTC().Format(time.DateOnly))
}
