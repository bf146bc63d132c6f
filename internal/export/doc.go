// Package export encodes decks into study artifacts.
//
// Three formats are supported. CSV writes one HTML-escaped row per card with
// sub-lists joined by "; ", and DecodeCSV reads such a file back. APKG writes
// an Anki package: a zip holding a version 11 collection database and a media
// manifest with any bundled audio files. Model and deck ids are derived from
// their names and note GUIDs from the word, so encoding the same deck twice
// yields the same identifiers. Markdown writes a review document.
//
// Every failure is an *EncodingError whose Kind is io_failure or
// unsupported_format.
package export
