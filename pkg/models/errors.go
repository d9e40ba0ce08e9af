package models

import "errors"

var (
	// ErrUnsupportedFormat is returned for file types no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrNoGeometry is returned when a file contains no triangles.
	ErrNoGeometry = errors.New("no triangle geometry")
	// ErrIndexOutOfRange is returned when an index exceeds the vertex count.
	ErrIndexOutOfRange = errors.New("index out of range")
)
