package schema

import (
	"fmt"
	"strconv"
	"time"
)

// NormalizeValue reduces an attribute value to a string or nil so descriptors
// read through different drivers, and from snapshot files, compare by value.
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Normalized returns a copy of d with every value passed through NormalizeValue.
func (d ColumnDescriptor) Normalized() ColumnDescriptor {
	if d == nil {
		return nil
	}
	out := make(ColumnDescriptor, len(d))
	for k, v := range d {
		out[k] = NormalizeValue(v)
	}
	return out
}
