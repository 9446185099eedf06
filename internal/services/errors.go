package services

import "errors"

// Stats service errors
var (
	// ErrSessionNotFound is returned when a dataset id is unknown or was evicted
	ErrSessionNotFound = errors.New("dataset session not found")

	// ErrInvalidDatasetID is returned when a dataset id is not a UUID
	ErrInvalidDatasetID = errors.New("invalid dataset id")

	// ErrSectionUnavailable is returned when a section needs an optional
	// column the dataset does not provide
	ErrSectionUnavailable = errors.New("section unavailable for this dataset")

	// ErrEmptyUpload is returned when an uploaded file has no content
	ErrEmptyUpload = errors.New("uploaded file is empty")
)
