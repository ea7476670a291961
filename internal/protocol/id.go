package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestID is the value correlating a Request with its Response. On the
// wire it is either a bare JSON number (integers only) or a bare JSON
// string, never an object. RequestID is comparable, so it can be used as
// a map key; an integer id and a string id never compare equal, even
// when they look alike (IntID(92) != StringID("92")).
type RequestID struct {
	num      int32
	str      string
	isString bool
}

// IntID returns an integer-backed RequestID.
func IntID(v int32) RequestID {
	return RequestID{num: v}
}

// StringID returns a string-backed RequestID.
func StringID(s string) RequestID {
	return RequestID{str: s, isString: true}
}

// IsString reports whether the id was constructed from a string.
func (id RequestID) IsString() bool {
	return id.isString
}

// Int returns the integer value of the id. Calling Int on a string-backed
// id is a programming error and panics; use IntOK where the backing kind
// is not known.
func (id RequestID) Int() int32 {
	if id.isString {
		panic(fmt.Sprintf("protocol: RequestID %s does not contain an integer value", id))
	}
	return id.num
}

// IntOK returns the integer value of the id, or false when the id is
// string-backed.
func (id RequestID) IntOK() (int32, bool) {
	if id.isString {
		return 0, false
	}
	return id.num, true
}

// String renders integer ids as decimal and string ids quoted, so that
// 92 and "92" stay visibly distinct.
func (id RequestID) String() string {
	if id.isString {
		return strconv.Quote(id.str)
	}
	return strconv.FormatInt(int64(id.num), 10)
}

// Less orders ids structurally: all integer ids sort before all string
// ids, then by value within a kind.
func (id RequestID) Less(other RequestID) bool {
	if id.isString != other.isString {
		return !id.isString
	}
	if id.isString {
		return id.str < other.str
	}
	return id.num < other.num
}

// MarshalJSON writes the id as a bare number or string.
func (id RequestID) MarshalJSON() ([]byte, error) {
	if id.isString {
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

// UnmarshalJSON accepts a bare JSON number (32-bit integer) or string.
// null is rejected: json.Unmarshal treats null as a no-op on the target,
// so without the explicit check it would pass as id 0.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("protocol: invalid request id %s: want a number or a string", data)
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("protocol: invalid request id %s: %w", data, err)
	}
	*id = IntID(n)
	return nil
}
