package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/forgo/accounts/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// emailIndexViolation is the prefix SurrealDB uses when a write would put a
// second record into the unique email index
const emailIndexViolation = "Database index `" + model.AccountEmailIndex + "` already contains"

// isEmailConflict reports whether err is a violation of the email index.
// Other errors, even ones mentioning uniqueness, are persistence failures.
func isEmailConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), emailIndexViolation)
}

// statementRecords returns the records of the first statement in a Query result
func statementRecords(result []interface{}) []interface{} {
	if len(result) == 0 {
		return nil
	}

	first := result[0]
	if resp, ok := first.(map[string]interface{}); ok {
		if _, wrapped := resp["status"]; wrapped {
			switch data := resp["result"].(type) {
			case []interface{}:
				return data
			case map[string]interface{}:
				return []interface{}{data}
			case nil:
				return nil
			}
			return []interface{}{resp["result"]}
		}
	}

	// Direct array format
	return result
}

// accountIDFromRecord converts a SurrealDB record id into an AccountID.
// Accepts the client's RecordID type, "account:⟨uuid⟩" strings and the
// {"tb": ..., "id": ...} map form.
func accountIDFromRecord(id interface{}) (model.AccountID, error) {
	var raw string

	switch v := id.(type) {
	case models.RecordID:
		raw = fmt.Sprintf("%v", v.ID)
	case *models.RecordID:
		if v == nil {
			return model.AccountID{}, model.ErrInvalidAccountID
		}
		raw = fmt.Sprintf("%v", v.ID)
	case string:
		raw = v
	case map[string]interface{}:
		if idVal, ok := v["id"]; ok {
			raw = extractIDValue(idVal)
		} else if idVal, ok := v["ID"]; ok {
			raw = extractIDValue(idVal)
		}
	default:
		raw = fmt.Sprintf("%v", id)
	}

	return model.ParseAccountID(trimRecordID(raw))
}

// trimRecordID strips the table prefix and the ⟨⟩ or backtick escaping
// SurrealDB applies to ids containing hyphens
func trimRecordID(raw string) string {
	raw = strings.TrimPrefix(raw, model.AccountTable+":")
	raw = strings.TrimPrefix(raw, "⟨")
	raw = strings.TrimSuffix(raw, "⟩")
	return strings.Trim(raw, "`")
}

// extractIDValue extracts the ID value which may be nested
func extractIDValue(val interface{}) string {
	if str, ok := val.(string); ok {
		return str
	}
	if m, ok := val.(map[string]interface{}); ok {
		if s, ok := m["String"].(string); ok {
			return s
		}
		if s, ok := m["string"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

// parseTime parses time from the formats the SurrealDB client produces
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
