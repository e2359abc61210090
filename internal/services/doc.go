// Package services holds the error taxonomy shared by the external
// capability clients and the processing pipeline, plus the mapping from
// errors to the processing status persisted after a failure.
package services
