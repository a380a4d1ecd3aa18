package model

import "io"

// Upload is a single uploaded file
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
