// string_set.go
//
// JSON-backed string set column used for a chat's seen set.

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringSet is a set of ids stored as a JSON array column. Union and
// membership use set semantics; element order carries no meaning.
type StringSet []string

// Has reports membership.
func (s StringSet) Has(v string) bool {
	return lo.Contains(s, v)
}

// Union returns a new set containing s plus vals, deduplicated.
// The receiver is not mutated.
func (s StringSet) Union(vals ...string) StringSet {
	merged := make([]string, 0, len(s)+len(vals))
	merged = append(merged, s...)
	merged = append(merged, vals...)
	return StringSet(lo.Uniq(merged))
}

// Value implements driver.Valuer.
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSet) Scan(value interface{}) error {
	if value == nil {
		*s = StringSet{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("StringSet: cannot scan %T", value)
	}

	if len(data) == 0 {
		*s = StringSet{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = StringSet(out)
	return nil
}

// GormDBDataType ensures the correct data type is used for each database driver.
func (StringSet) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
