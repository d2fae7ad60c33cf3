package catalog

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrUpload     = errors.New("upload failed")
	ErrDecode     = errors.New("image decode failed")
	ErrStore      = errors.New("store failure")
)
