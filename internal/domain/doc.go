// Package domain contains the core vocabulary of the card pipeline: words,
// generation parameters, raw and validated cards, per-word outcomes, run
// summaries and decks. It has no knowledge of providers, transports or
// output formats.
//
// A Card can only be produced by CardValidator. Decks refuse cards that did
// not come through it, so every encoded card has passed the same checks.
package domain
