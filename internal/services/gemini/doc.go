// Package gemini wraps the Gemini generateContent API for heritage item
// analysis and audio transcription.
package gemini
