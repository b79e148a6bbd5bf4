package util

import (
	"io"
	"mime/multipart"
)

// ReadFormFile reads an uploaded multipart file fully into memory.
func ReadFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
