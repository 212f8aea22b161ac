package utils

import "strings"

// ClickHouse toStartOf<X> suffixes accepted as stats bucket sizes, keyed by lower-case name.
var intervals = map[string]string{
	"minute":  "Minute",
	"hour":    "Hour",
	"day":     "Day",
	"week":    "Week",
	"month":   "Month",
	"quarter": "Quarter",
	"year":    "Year",
}

// CanonicalInterval maps a bucket name in any case to the spelling used in
// toStartOf<X>. It is the only way an interval reaches a query string.
func CanonicalInterval(interval string) (string, bool) {
	v, ok := intervals[strings.ToLower(strings.TrimSpace(interval))]
	return v, ok
}
