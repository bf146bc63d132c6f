// Package wordlist reads word lists from TXT, CSV and JSON files and cleans
// them into the ordered, deduplicated lowercase words a generation run takes.
package wordlist
