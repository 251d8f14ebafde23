package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxBodySize caps command request bodies. Instrument commands are small; a
// megabyte is already generous.
const maxBodySize = 1 << 20

// DecodeJSON reads and decodes a JSON request body into dst.
// Unknown fields are rejected so malformed commands fail loudly instead of
// being silently accepted with missing data.
func DecodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	defer r.Body.Close()

	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
