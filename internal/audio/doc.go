// Package audio resolves pronunciation references for deck cards.
//
// Online engines return a dictionary URL that card templates link to. A
// LocalResolver prefers an mp3 already present on disk, which the APKG
// encoder then bundles as deck media.
package audio
