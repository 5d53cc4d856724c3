package handler

import (
	"mime/multipart"
	"net/http"
)

// firstFile returns the first upload of a parsed multipart form field, or nil.
func firstFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
