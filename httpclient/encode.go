package httpclient

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	// ContentTypeHeader is the canonical Content-Type header name.
	ContentTypeHeader = "Content-Type"
	// FormURLEncodedType is the content type for url-encoded form bodies.
	FormURLEncodedType = "application/x-www-form-urlencoded"
	// MultipartFormType is the content type prefix for multipart bodies;
	// the boundary parameter is appended per request.
	MultipartFormType = "multipart/form-data"
)

// Field is one ordered name/value pair. Filename and ContentType only apply
// to multipart encoding, where they turn the field into a file part.
type Field struct {
	Name        string
	Value       string
	Filename    string
	ContentType string
}

// urlEncodedMethods are the methods whose fields are encoded into the URL
// query string instead of a body.
var urlEncodedMethods = map[string]struct{}{
	"DELETE":  {},
	"GET":     {},
	"HEAD":    {},
	"OPTIONS": {},
}

// Encode resolves the per-method encoding of request fields and returns the
// final URL, the headers the encoding requires, and the body.
//
// For methods in the URL-encoded set, fields and urlParams are serialized in
// input order into the query string and no body is produced from them. For
// body-bearing methods, fields and formFields build either a multipart or a
// url-encoded body; supplying both an explicit body and field data is an
// EncodingConflictError. Field order is preserved exactly, never re-sorted.
func Encode(method, rawURL string, opts *RequestOptions) (finalURL string, headers map[string]string, body []byte, err error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method = strings.ToUpper(method)
	headers = make(map[string]string)
	finalURL = rawURL

	if _, ok := urlEncodedMethods[method]; ok {
		finalURL = appendQuery(rawURL, append(append([]Field{}, opts.Fields...), opts.URLParams...))
		return finalURL, headers, opts.Body, nil
	}

	// Body-bearing method. URL params still belong in the query string.
	finalURL = appendQuery(rawURL, opts.URLParams)

	hasFields := len(opts.Fields) > 0 || len(opts.FormFields) > 0
	if !hasFields {
		return finalURL, headers, opts.Body, nil
	}
	if opts.Body != nil {
		return "", nil, nil, NewEncodingConflictError(
			"request got values for both fields and body, can only specify one")
	}

	if opts.EncodeMultipart {
		boundary := opts.MultipartBoundary
		if boundary == "" {
			boundary = generateBoundary()
		}
		body = encodeMultipart(opts.Fields, opts.FormFields, boundary)
		headers[ContentTypeHeader] = MultipartFormType + "; boundary=" + boundary
		return finalURL, headers, body, nil
	}

	encoded := urlencodeFields(opts.Fields)
	if form := urlencodeFields(opts.FormFields); form != "" {
		if encoded != "" {
			encoded += "&"
		}
		encoded += form
	}
	headers[ContentTypeHeader] = FormURLEncodedType
	return finalURL, headers, []byte(encoded), nil
}

// appendQuery serializes fields in input order and appends them to rawURL.
func appendQuery(rawURL string, fields []Field) string {
	query := urlencodeFields(fields)
	if query == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + query
}

// urlencodeFields renders fields as name=value pairs joined with "&",
// preserving input order.
func urlencodeFields(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

// encodeMultipart builds a multipart/form-data body with the given boundary.
// The byte layout is part of the contract with order-sensitive servers, so
// parts are written out directly in input order.
func encodeMultipart(fields, formFields []Field, boundary string) []byte {
	var buf bytes.Buffer
	for _, f := range append(append([]Field{}, fields...), formFields...) {
		buf.WriteString("--" + boundary + "\r\n")
		buf.WriteString(`Content-Disposition: form-data; name="` + f.Name + `"`)
		if f.Filename != "" {
			buf.WriteString(`; filename="` + f.Filename + `"`)
		}
		buf.WriteString("\r\n")
		if f.ContentType != "" {
			buf.WriteString("Content-Type: " + f.ContentType + "\r\n")
		}
		buf.WriteString("\r\n")
		buf.WriteString(f.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + boundary + "--\r\n")
	return buf.Bytes()
}

// generateBoundary produces a random boundary token.
func generateBoundary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
