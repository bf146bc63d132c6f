package domain

import (
	"fmt"
	"strings"
)

// DefaultCharset is the only charset decks are encoded in.
const DefaultCharset = "UTF-8"

// DeckOptions controls deck construction.
type DeckOptions struct {
	// AllowEmpty acknowledges that a deck with no cards should still be built.
	AllowEmpty bool
}

// Deck is an ordered set of validated cards ready for encoding.
type Deck struct {
	Name        string
	Description string
	Charset     string
	Cards       []*Card

	// AllowEmpty records that an empty deck was acknowledged at construction.
	AllowEmpty bool

	// audio maps a card word to an audio reference: a URL or a local file path.
	audio map[string]string
}

// NewDeck builds a deck from validated cards. It fails with ErrUnvalidatedCard
// if any card did not come from CardValidator, and with ErrEmptyDeck when
// there are no cards and opts.AllowEmpty is false.
func NewDeck(name, description string, cards []*Card, opts DeckOptions) (*Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: deck name cannot be empty", ErrValidation)
	}
	if len(cards) == 0 && !opts.AllowEmpty {
		return nil, ErrEmptyDeck
	}

	for i, card := range cards {
		if !card.Validated() {
			return nil, fmt.Errorf("%w: card %d", ErrUnvalidatedCard, i)
		}
	}

	owned := make([]*Card, len(cards))
	copy(owned, cards)

	return &Deck{
		Name:        name,
		Description: description,
		Charset:     DefaultCharset,
		Cards:       owned,
		AllowEmpty:  opts.AllowEmpty,
		audio:       make(map[string]string),
	}, nil
}

// DeckFromSummary builds a deck from the successful cards of a run.
func DeckFromSummary(name, description string, summary *RunSummary, opts DeckOptions) (*Deck, error) {
	return NewDeck(name, description, summary.Cards(), opts)
}

// Check re-verifies the construction invariants on a deck that may have been
// assembled or modified outside NewDeck.
func (d *Deck) Check() error {
	if len(d.Cards) == 0 && !d.AllowEmpty {
		return ErrEmptyDeck
	}
	for i, card := range d.Cards {
		if card == nil || !card.Validated() {
			return fmt.Errorf("%w: card %d", ErrUnvalidatedCard, i)
		}
	}
	return nil
}

// AttachAudio records an audio reference for word.
func (d *Deck) AttachAudio(word, ref string) {
	if ref == "" {
		return
	}
	if d.audio == nil {
		d.audio = make(map[string]string)
	}
	d.audio[word] = ref
}

// Audio returns the audio reference recorded for word, if any.
func (d *Deck) Audio(word string) (string, bool) {
	ref, ok := d.audio[word]
	return ref, ok
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.Cards)
}
