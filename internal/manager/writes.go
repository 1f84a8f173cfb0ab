package manager

import "regexp"

// writeStmtRe matches the leading keyword of a statement that mutates data
// or schema, ignoring leading whitespace, case-insensitively.
var writeStmtRe = regexp.MustCompile(`(?i)^\s*(INSERT|UPDATE|DELETE|ALTER|DROP|TRUNCATE|CREATE|RENAME)\b`)

// IsWriteStatement classifies statement text as a write operation.
func IsWriteStatement(query string) bool {
	return writeStmtRe.MatchString(query)
}
