package replay

import "errors"

var (
	// ErrStorageUnavailable is returned when the dataset root cannot be listed.
	ErrStorageUnavailable = errors.New("dataset storage unavailable")

	// ErrPathInvalid is returned for empty or absolute paths and for paths
	// that resolve outside the dataset root.
	ErrPathInvalid = errors.New("dataset path invalid")

	// ErrNotFound is returned when the dataset file does not exist or is not a regular file.
	ErrNotFound = errors.New("dataset not found")

	// ErrReadFailure is returned when the dataset file exists but cannot be read.
	ErrReadFailure = errors.New("dataset read failed")

	// ErrParseFailure is returned when the dataset file is not valid JSON.
	ErrParseFailure = errors.New("dataset parse failed")

	// ErrInvalidFormat is returned when the JSON is not a non-empty array of samples.
	ErrInvalidFormat = errors.New("invalid dataset format")

	// ErrAlreadyStreaming is returned by Start while another stream is active.
	ErrAlreadyStreaming = errors.New("already streaming a dataset")

	// ErrEmptyDataset is returned when a dataset has no samples.
	ErrEmptyDataset = errors.New("dataset is empty")
)
