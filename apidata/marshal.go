// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package apidata

import (
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"net/url"
	"reflect"
	"strings"

	"github.com/ugorji/go/codec"
)

// FormMediaType is the media type of HTML form submissions.
const FormMediaType = "application/x-www-form-urlencoded"

// jsonHandle returns a codec handle for the JSON wire format.
// Untyped objects decode as map[string]interface{}.
func jsonHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return h
}

// isJSON returns true if mediaType is any of the JSON types this
// package produces or accepts.
func isJSON(mediaType string) bool {
	switch mediaType {
	case "text/json", JSONMediaType:
		return true
	}
	return strings.HasPrefix(mediaType, VendorBase+".") &&
		strings.HasSuffix(mediaType, "+json")
}

// parseContentType extracts the media type from a Content-Type:
// header value.
func parseContentType(contentType string) (string, error) {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", ErrBadRequest{Err: err}
	}
	return mediaType, nil
}

// Decode tries to decode an apidata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	mediaType, err := parseContentType(contentType)
	if err != nil {
		return err
	}
	if !isJSON(mediaType) {
		return ErrUnsupportedMediaType{Type: mediaType}
	}
	decoder := codec.NewDecoder(r, jsonHandle())
	return decoder.Decode(out)
}

// Encode writes v to w as JSON.
func Encode(w io.Writer, v interface{}) error {
	encoder := codec.NewEncoder(w, jsonHandle())
	return encoder.Encode(v)
}

// DecodeFields reads submitted form fields from a request body.  The
// body may be an HTML form or a flat JSON object; JSON scalars are
// converted to their string forms, and null becomes the empty string.
func DecodeFields(contentType string, r io.Reader) (map[string]string, error) {
	mediaType, err := parseContentType(contentType)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	switch {
	case mediaType == FormMediaType:
		body, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, err
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, ErrBadRequest{Err: err}
		}
		for key := range values {
			fields[key] = values.Get(key)
		}

	case isJSON(mediaType):
		var raw map[string]interface{}
		decoder := codec.NewDecoder(r, jsonHandle())
		if err := decoder.Decode(&raw); err != nil {
			return nil, ErrBadRequest{Err: err}
		}
		for key, value := range raw {
			switch v := value.(type) {
			case nil:
				fields[key] = ""
			case string:
				fields[key] = v
			case bool, int64, uint64, float64:
				fields[key] = fmt.Sprint(v)
			default:
				return nil, ErrBadRequest{Err: fmt.Errorf("field %q must be a scalar", key)}
			}
		}

	default:
		return nil, ErrUnsupportedMediaType{Type: mediaType}
	}
	return fields, nil
}
