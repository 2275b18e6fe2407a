// Package replay loads recorded EEG calm-probability datasets from a directory
// tree and replays them to push channel subscribers with the spacing of the
// original recording.
//
// Layout on disk: one subdirectory per category under the data root, one JSON
// file per dataset holding an array of {"timestamp": ms, "value": 0..1}.
//
// The Scheduler owns the single stream session. At most one stream is active;
// starting another fails with ErrAlreadyStreaming until Stop is called or the
// stream runs out of samples.
package replay
