// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// multipartMemoryLimit caps the in-memory portion of a multipart parse;
// larger parts spill to temp files.
const multipartMemoryLimit = 32 << 20

// uploadTooLarge marks a request body that exceeded the configured cap.
var errUploadTooLarge = errors.New("upload exceeds size limit")

// readTranscript pulls the transcript text out of a request. Preference
// order: multipart "file" part, then the "text" form field, then (for
// non-form content types) the raw body. A request carrying none of these
// yields the empty string, which the total pipeline handles downstream;
// an absent transcript is not an error.
//
// The returned source tag ("file", "text", "body", "none") feeds span
// attributes and logs.
func readTranscript(r *http.Request, maxBytes int64) (text, source string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			if isBodyTooLarge(err) {
				return "", "", errUploadTooLarge
			}
			return "", "", err
		}

		if file, _, err := r.FormFile("file"); err == nil {
			defer func() { _ = file.Close() }()
			data, err := io.ReadAll(file)
			if err != nil {
				return "", "", err
			}
			if len(data) > 0 {
				return decode(data), "file", nil
			}
		}
		if v := r.FormValue("text"); v != "" {
			return decode([]byte(v)), "text", nil
		}
		return "", "none", nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			if isBodyTooLarge(err) {
				return "", "", errUploadTooLarge
			}
			return "", "", err
		}
		if v := r.PostFormValue("text"); v != "" {
			return decode([]byte(v)), "text", nil
		}
		return "", "none", nil

	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			if isBodyTooLarge(err) {
				return "", "", errUploadTooLarge
			}
			return "", "", err
		}
		if len(data) == 0 {
			return "", "none", nil
		}
		return decode(data), "body", nil
	}
}

// decode turns raw upload bytes into a string, dropping invalid UTF-8
// sequences. Decoding never fails; garbage in means fewer characters out.
func decode(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
