// Package heritage defines the catalog's record model and its SQLite-backed
// store. A heritage item describes one piece of cultural heritage (a song,
// story, ritual, or craft) together with its uploaded content references and
// the results the AI processing pipeline writes back.
package heritage
