package dbagent

import (
	"fmt"
	"strings"
)

// UnsafeQueryError reports a generated statement rejected by the
// read-only safety filter.
type UnsafeQueryError struct {
	Statement string
	Operation string
}

func (e *UnsafeQueryError) Error() string {
	return fmt.Sprintf("dbagent: %s statements are not allowed: %s", e.Operation, truncate(e.Statement, 120))
}

// writeOperations are the statement keywords rejected when write
// operations are disabled.
var writeOperations = []string{
	"insert", "update", "delete", "drop", "create", "alter",
	"truncate", "replace", "attach", "detach", "vacuum", "pragma",
}

// CheckReadOnly returns an UnsafeQueryError when the statement starts
// with a write or schema-altering operation.
func CheckReadOnly(statement string) error {
	normalized := strings.ToLower(strings.TrimSpace(statement))
	for _, op := range writeOperations {
		if strings.HasPrefix(normalized, op) {
			return &UnsafeQueryError{Statement: statement, Operation: op}
		}
	}
	return nil
}

// stripSQLFences removes markdown code fences the model sometimes
// wraps generated SQL in.
func stripSQLFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```sql")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
