package extract

import (
	"strings"
	"time"
)

// sourceTimeLayout is the machine-readable timestamp format carried in the
// relativetime title attribute, e.g. "2024-03-01 16:45:12Z". The trailing Z
// always means UTC on the source site.
const sourceTimeLayout = "2006-01-02 15:04:05"

// NormalizeCount normalizes a textual stat value from the page. The source
// abbreviates thousands as "1.2k"; the "k" is replaced with a literal "000"
// suffix, so "1.2k" becomes "1.2000", not "1200". Empty input normalizes
// to "0".
func NormalizeCount(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "0"
	}
	return strings.ReplaceAll(value, "k", "000")
}

// parseSourceTime parses the source's "YYYY-MM-DD HH:MM:SSZ" attribute value.
func parseSourceTime(raw string) (time.Time, error) {
	value := strings.TrimSuffix(strings.TrimSpace(raw), "Z")
	return time.ParseInLocation(sourceTimeLayout, value, time.UTC)
}
