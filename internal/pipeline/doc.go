// Package pipeline walks heritage items through processing: content
// selection, audio transcription, structured analysis and tag merging.
// Every run ends in a discriminated Outcome; the pipeline never panics
// and failures are written back to the item as a failed status.
package pipeline
