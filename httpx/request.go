package httpx

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/diewo77/invoice-wemaad/validation"
)

const maxBodyBytes = 1 << 20

// WantsJSON reports whether the caller prefers a JSON response over HTML.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// DecodePayload reads a JSON object or a form body into a flat payload.
// Nested JSON values are kept as raw JSON strings so schemas can parse them.
func DecodePayload(r *http.Request) (validation.Payload, error) {
	p := validation.Payload{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("invalid json body")
		}
		root := gjson.ParseBytes(body)
		if !root.IsObject() {
			return nil, fmt.Errorf("json body must be an object")
		}
		root.ForEach(func(key, value gjson.Result) bool {
			if value.Type == gjson.Null {
				return true
			}
			if value.IsArray() || value.IsObject() {
				p[key.String()] = value.Raw
			} else {
				p[key.String()] = value.String()
			}
			return true
		})
		return p, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	for k, vals := range r.PostForm {
		if len(vals) > 0 {
			p[k] = vals[0]
		}
	}
	return p, nil
}

// PathID parses a positive numeric path value.
func PathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
