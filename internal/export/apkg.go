package export

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/store"
)

// ModelName is the note type every exported note uses.
const ModelName = "Word Card (wordcards)"

// collectionEntry is the zip entry holding the collection database.
const collectionEntry = "collection.anki2"

// modelFields are the note fields, in order.
var modelFields = []string{
	"Front", "Back", "Phonetic", "PartOfSpeech", "Meaning", "MemoryTip",
	"Examples", "Synonyms", "Confusables", "WordAudio", "Tags",
}

// noteNamespace scopes note GUIDs so the same word always maps to the same
// note, and re-importing a deck updates rather than duplicates it.
var noteNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/phrazzld/wordcards/notes"))

const frontTemplate = `<div class="word">{{Front}}</div>
<div class="phonetic">{{Phonetic}}</div>
{{WordAudio}}`

const backTemplate = `{{FrontSide}}
<hr id="answer">
<div class="pos">{{PartOfSpeech}}</div>
<div class="meaning">{{Meaning}}</div>
{{#MemoryTip}}<div class="tip">{{MemoryTip}}</div>{{/MemoryTip}}
{{#Examples}}<div class="examples">{{Examples}}</div>{{/Examples}}
{{#Synonyms}}<div class="synonyms">{{Synonyms}}</div>{{/Synonyms}}
{{#Confusables}}<div class="confusables">{{Confusables}}</div>{{/Confusables}}`

const cardCSS = `.card { font-family: Arial, sans-serif; font-size: 20px; text-align: center; color: #202124; background: #ffffff; }
.word { font-size: 32px; font-weight: bold; }
.phonetic { color: #5f6368; }
.pos { color: #0066cc; font-style: italic; }
.meaning { color: #d93025; font-weight: bold; }
.tip { color: #1a73e8; margin-top: 8px; }
.examples { color: #137333; text-align: left; }
.synonyms { color: #ea8600; }
.confusables { color: #c5221f; }`

// StableID derives a positive Anki id from name. Equal names always give
// equal ids, which keeps a re-imported deck attached to its earlier copy.
func StableID(name string) int64 {
	sum := sha1.Sum([]byte(name))
	const lo, span = 1 << 30, 1 << 30
	return lo + int64(binary.BigEndian.Uint64(sum[:8])%span)
}

// ModelID returns the note type id.
func ModelID() int64 {
	return StableID("model:" + ModelName)
}

// DeckID returns the id of the deck called name.
func DeckID(name string) int64 {
	return StableID("deck:" + name)
}

// NoteGUID returns the note GUID for word.
func NoteGUID(word string) string {
	return uuid.NewSHA1(noteNamespace, []byte(word)).String()
}

// noteID maps a GUID onto the 53-bit integer range Anki's JSON tooling keeps exact.
func noteID(guid string) int64 {
	sum := sha1.Sum([]byte(guid))
	return int64(binary.BigEndian.Uint64(sum[:8]) & (1<<53 - 1))
}

type ankiField struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	Sticky bool   `json:"sticky"`
	RTL    bool   `json:"rtl"`
	Font   string `json:"font"`
	Size   int    `json:"size"`
	Media  []any  `json:"media"`
}

type ankiTemplate struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	DID   *int64 `json:"did"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
}

type ankiModel struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Type      int            `json:"type"`
	Mod       int64          `json:"mod"`
	USN       int            `json:"usn"`
	SortF     int            `json:"sortf"`
	DID       int64          `json:"did"`
	Tmpls     []ankiTemplate `json:"tmpls"`
	Flds      []ankiField    `json:"flds"`
	CSS       string         `json:"css"`
	LatexPre  string         `json:"latexPre"`
	LatexPost string         `json:"latexPost"`
	Req       []any          `json:"req"`
	Tags      []string       `json:"tags"`
	Vers      []any          `json:"vers"`
}

type ankiDeck struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Mod              int64  `json:"mod"`
	USN              int    `json:"usn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	Dyn              int    `json:"dyn"`
	Conf             int64  `json:"conf"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
}

func newAnkiDeck(id int64, name, desc string, mod int64) ankiDeck {
	return ankiDeck{ID: id, Name: name, Desc: desc, Mod: mod, USN: -1, Conf: 1, ExtendNew: 10, ExtendRev: 50}
}

func collectionJSON(deck *domain.Deck, deckID int64, now time.Time) (store.Collection, error) {
	mod := now.Unix()

	fields := make([]ankiField, len(modelFields))
	for i, name := range modelFields {
		fields[i] = ankiField{Name: name, Ord: i, Font: "Arial", Size: 20, Media: []any{}}
	}
	model := ankiModel{
		ID:    ModelID(),
		Name:  ModelName,
		Mod:   mod,
		USN:   -1,
		DID:   deckID,
		Tmpls: []ankiTemplate{{Name: "Card 1", QFmt: frontTemplate, AFmt: backTemplate}},
		Flds:  fields,
		CSS:   cardCSS,
		LatexPre: "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n" +
			"\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n" +
			"\\setlength{\\parindent}{0in}\n\\begin{document}\n",
		LatexPost: "\\end{document}",
		Req:       []any{[]any{0, "any", []int{0}}},
		Tags:      []string{},
		Vers:      []any{},
	}

	decks := map[string]ankiDeck{
		"1":                           newAnkiDeck(1, "Default", "", mod),
		strconv.FormatInt(deckID, 10): newAnkiDeck(deckID, deck.Name, deck.Description, mod),
	}

	conf := map[string]any{
		"activeDecks":   []int64{deckID},
		"curDeck":       deckID,
		"newSpread":     0,
		"collapseTime":  1200,
		"timeLim":       0,
		"estTimes":      true,
		"dueCounts":     true,
		"curModel":      strconv.FormatInt(model.ID, 10),
		"nextPos":       len(deck.Cards) + 1,
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
	}

	dconf := map[string]any{
		"1": map[string]any{
			"id": 1, "name": "Default", "mod": 0, "usn": 0, "maxTaken": 60, "autoplay": true,
			"timer": 0, "replayq": true, "dyn": false,
			"new": map[string]any{
				"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500,
				"order": 1, "perDay": 20, "bury": true, "separate": true,
			},
			"lapse": map[string]any{
				"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0,
			},
			"rev": map[string]any{
				"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500, "bury": true,
				"minSpace": 1, "ivlFct": 1,
			},
		},
	}

	encode := func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}
	col := store.Collection{Created: mod, Modified: now.UnixMilli()}
	var err error
	if col.Conf, err = encode(conf); err != nil {
		return col, err
	}
	if col.Models, err = encode(map[string]ankiModel{strconv.FormatInt(model.ID, 10): model}); err != nil {
		return col, err
	}
	if col.Decks, err = encode(decks); err != nil {
		return col, err
	}
	if col.DConf, err = encode(dconf); err != nil {
		return col, err
	}
	return col, nil
}

// noteFields renders a card into the model's fields. soundName is the
// bundled media file name for local audio, empty otherwise.
func noteFields(deck *domain.Deck, card *domain.Card, soundName string) []string {
	audio := ""
	if soundName != "" {
		audio = "[sound:" + soundName + "]"
	} else if ref, ok := deck.Audio(card.Word); ok && isRemote(ref) {
		audio = fmt.Sprintf(`<audio controls src="%s"></audio>`, html.EscapeString(ref))
	}

	tip := ""
	if card.MemoryTip.Content != "" {
		tip = html.EscapeString(card.MemoryTip.String())
	}

	return []string{
		html.EscapeString(card.Word),
		html.EscapeString(card.Meaning),
		html.EscapeString(card.Phonetic),
		html.EscapeString(card.PartOfSpeech),
		html.EscapeString(card.Meaning),
		tip,
		examplesHTML(card.Examples),
		synonymsHTML(card.Synonyms),
		confusablesHTML(card.Confusables),
		audio,
		strings.Join(card.Tags(), " "),
	}
}

// mediaFile is a local file bundled into the package under a numbered entry.
type mediaFile struct {
	entry string
	name  string
	path  string
}

// collectMedia assigns numbered entries to the local audio files of deck.
// Two cards never share an entry name.
func collectMedia(deck *domain.Deck) (map[string]mediaFile, []mediaFile) {
	byWord := make(map[string]mediaFile)
	var ordered []mediaFile
	used := make(map[string]bool)

	for _, card := range deck.Cards {
		ref, ok := deck.Audio(card.Word)
		if !ok || isRemote(ref) {
			continue
		}
		name := filepath.Base(ref)
		if used[name] {
			name = card.Word + "_" + name
		}
		used[name] = true

		file := mediaFile{entry: strconv.Itoa(len(ordered)), name: name, path: ref}
		byWord[card.Word] = file
		ordered = append(ordered, file)
	}
	return byWord, ordered
}

// writeAPKG builds the collection in a scratch directory and streams the
// package to w.
func (e *Encoder) writeAPKG(ctx context.Context, deck *domain.Deck, w io.Writer) error {
	scratch, err := os.MkdirTemp("", "wordcards-apkg-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	media, mediaOrder := collectMedia(deck)
	dbPath := filepath.Join(scratch, collectionEntry)
	if err := e.writeCollection(ctx, deck, media, dbPath); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	if err := addFile(zw, collectionEntry, dbPath); err != nil {
		return err
	}

	manifest := make(map[string]string, len(mediaOrder))
	for _, file := range mediaOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addFile(zw, file.entry, file.path); err != nil {
			return fmt.Errorf("bundling audio for %s: %w", file.name, err)
		}
		manifest[file.entry] = file.name
	}

	mw, err := zw.Create("media")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(mw).Encode(manifest); err != nil {
		return err
	}

	return zw.Close()
}

func (e *Encoder) writeCollection(
	ctx context.Context,
	deck *domain.Deck,
	media map[string]mediaFile,
	path string,
) error {
	db, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	now := e.now()
	deckID := DeckID(deck.Name)
	col, err := collectionJSON(deck, deckID, now)
	if err != nil {
		return fmt.Errorf("encoding collection metadata: %w", err)
	}

	collection := store.NewCollectionStore(db, e.logger)
	if err := collection.CreateSchema(ctx); err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := collection.WithTx(tx)
		if err := txStore.InsertCollection(ctx, col); err != nil {
			return err
		}

		for i, card := range deck.Cards {
			if err := ctx.Err(); err != nil {
				return err
			}
			guid := NoteGUID(card.Word)
			id := noteID(guid)
			if err := txStore.InsertNote(ctx, store.Note{
				ID:       id,
				GUID:     guid,
				ModelID:  ModelID(),
				Modified: now.Unix(),
				Tags:     card.Tags(),
				Fields:   noteFields(deck, card, media[card.Word].name),
			}); err != nil {
				return err
			}
			if err := txStore.InsertCard(ctx, store.Card{
				ID:       id,
				NoteID:   id,
				DeckID:   deckID,
				Modified: now.Unix(),
				Due:      i + 1,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.DebugContext(ctx, "collection written",
		"deck_id", deckID,
		"notes", deck.Len(),
		"media", len(media))
	return db.Close()
}

func addFile(zw *zip.Writer, entry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w, err := zw.Create(entry)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
