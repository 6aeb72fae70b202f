package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
)

// maxMultipartMemory matches gin's default for in-memory multipart parts.
const maxMultipartMemory = 32 << 20

// readPayload decodes the request input into a generic map and reports whether
// the request carries uploaded files. JSON numbers stay json.Number so integer
// rules can tell 30 from 30.5. The body is rewound for later readers.
// Malformed or non-object JSON yields an empty payload.
func readPayload(r *http.Request) (map[string]any, bool) {
	payload := make(map[string]any)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return payload, false
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				payload[k] = v[0]
			}
		}
		return payload, len(r.MultipartForm.File) > 0
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return payload, false
		}
		for k := range r.PostForm {
			payload[k] = r.PostForm.Get(k)
		}
		return payload, false
	}

	body := peekBody(r)
	if len(bytes.TrimSpace(body)) == 0 {
		return payload, false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return payload, false
	}
	return obj, false
}

// peekBody reads the whole body and puts an identical reader back.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return body
}
