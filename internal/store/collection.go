package store

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/phrazzld/wordcards/internal/platform/logger"
)

// SchemaVersion is the collection format version written to col.ver.
const SchemaVersion = 11

// FieldSeparator joins note fields in notes.flds.
const FieldSeparator = "\x1f"

// schema is the collection layout Anki 2.1 expects in an imported package.
var schema = []string{
	`CREATE TABLE col (
		id integer primary key,
		crt integer not null,
		mod integer not null,
		scm integer not null,
		ver integer not null,
		dty integer not null,
		usn integer not null,
		ls integer not null,
		conf text not null,
		models text not null,
		decks text not null,
		dconf text not null,
		tags text not null
	)`,
	`CREATE TABLE notes (
		id integer primary key,
		guid text not null,
		mid integer not null,
		mod integer not null,
		usn integer not null,
		tags text not null,
		flds text not null,
		sfld integer not null,
		csum integer not null,
		flags integer not null,
		data text not null
	)`,
	`CREATE TABLE cards (
		id integer primary key,
		nid integer not null,
		did integer not null,
		ord integer not null,
		mod integer not null,
		usn integer not null,
		type integer not null,
		queue integer not null,
		due integer not null,
		ivl integer not null,
		factor integer not null,
		reps integer not null,
		lapses integer not null,
		left integer not null,
		odue integer not null,
		odid integer not null,
		flags integer not null,
		data text not null
	)`,
	`CREATE TABLE revlog (
		id integer primary key,
		cid integer not null,
		usn integer not null,
		ease integer not null,
		ivl integer not null,
		lastIvl integer not null,
		factor integer not null,
		time integer not null,
		type integer not null
	)`,
	`CREATE TABLE graves (
		usn integer not null,
		oid integer not null,
		type integer not null
	)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// Collection is the single row of the col table. The JSON columns are
// already encoded by the caller.
type Collection struct {
	Created  int64 // seconds
	Modified int64 // milliseconds
	Conf     string
	Models   string
	Decks    string
	DConf    string
}

// Note is one row of the notes table.
type Note struct {
	ID       int64
	GUID     string
	ModelID  int64
	Modified int64 // seconds
	Tags     []string
	Fields   []string
}

// Card is one row of the cards table, always a new card.
type Card struct {
	ID       int64
	NoteID   int64
	DeckID   int64
	Ord      int
	Modified int64 // seconds
	Due      int
}

// CollectionStore writes an Anki collection database.
type CollectionStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewCollectionStore creates a store over db, which may be a *sql.DB or a
// *sql.Tx. If logger is nil, a default logger will be used.
func NewCollectionStore(db DBTX, logger *slog.Logger) *CollectionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CollectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "collection_store")),
	}
}

// WithTx returns a store that runs its statements in tx.
func (s *CollectionStore) WithTx(tx DBTX) *CollectionStore {
	return &CollectionStore{db: tx, logger: s.logger}
}

// CreateSchema creates every table and index of the collection.
func (s *CollectionStore) CreateSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return NewStoreError("schema", "create", err)
		}
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("collection schema created",
		slog.Int("version", SchemaVersion))
	return nil
}

// exec builds q and runs it against the store's connection.
func (s *CollectionStore) exec(ctx context.Context, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// InsertCollection writes the col row.
func (s *CollectionStore) InsertCollection(ctx context.Context, col Collection) error {
	insert := squirrel.Insert("col").
		Columns("id", "crt", "mod", "scm", "ver", "dty", "usn", "ls", "conf", "models", "decks", "dconf", "tags").
		Values(1, col.Created, col.Modified, col.Modified, SchemaVersion, 0, 0, 0,
			col.Conf, col.Models, col.Decks, col.DConf, "{}")

	if err := s.exec(ctx, insert); err != nil {
		return NewStoreError("collection", "insert", err)
	}
	return nil
}

// InsertNote writes a note. The sort field is the first field and the
// checksum is derived from it, as Anki computes them.
func (s *CollectionStore) InsertNote(ctx context.Context, note Note) error {
	if len(note.Fields) == 0 {
		return NewStoreError("note", "insert", fmt.Errorf("%w: note %s has no fields", ErrInvalidEntity, note.GUID))
	}
	if note.GUID == "" {
		return NewStoreError("note", "insert", fmt.Errorf("%w: note %d has no guid", ErrInvalidEntity, note.ID))
	}

	sortField := StripHTML(note.Fields[0])
	tags := ""
	if len(note.Tags) > 0 {
		tags = " " + strings.Join(note.Tags, " ") + " "
	}

	insert := squirrel.Insert("notes").
		Columns("id", "guid", "mid", "mod", "usn", "tags", "flds", "sfld", "csum", "flags", "data").
		Values(note.ID, note.GUID, note.ModelID, note.Modified, -1, tags,
			strings.Join(note.Fields, FieldSeparator), sortField, FieldChecksum(sortField), 0, "")

	if err := s.exec(ctx, insert); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert note",
			slog.String("error", err.Error()),
			slog.String("guid", note.GUID))
		return NewStoreError("note", "insert", err)
	}
	return nil
}

// InsertCard writes a new, unscheduled card.
func (s *CollectionStore) InsertCard(ctx context.Context, card Card) error {
	insert := squirrel.Insert("cards").
		Columns("id", "nid", "did", "ord", "mod", "usn", "type", "queue", "due",
			"ivl", "factor", "reps", "lapses", "left", "odue", "odid", "flags", "data").
		Values(card.ID, card.NoteID, card.DeckID, card.Ord, card.Modified, -1, 0, 0, card.Due,
			0, 0, 0, 0, 0, 0, 0, 0, "")

	if err := s.exec(ctx, insert); err != nil {
		return NewStoreError("card", "insert", err)
	}
	return nil
}

// CountNotes returns the number of notes, optionally restricted to those
// with a card in deckID when deckID is non-zero.
func (s *CollectionStore) CountNotes(ctx context.Context, deckID int64) (int, error) {
	q := squirrel.Select("COUNT(*)").From("notes")
	if deckID != 0 {
		q = squirrel.Select("COUNT(DISTINCT nid)").From("cards").Where(squirrel.Eq{"did": deckID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, NewStoreError("note", "count", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, NewStoreError("note", "count", err)
	}
	return n, nil
}

// GetNote returns the note with guid. Tags are not loaded.
func (s *CollectionStore) GetNote(ctx context.Context, guid string) (*Note, error) {
	query, args, err := squirrel.Select("id", "mid", "mod", "flds").
		From("notes").
		Where(squirrel.Eq{"guid": guid}).
		ToSql()
	if err != nil {
		return nil, NewStoreError("note", "get", err)
	}

	note := Note{GUID: guid}
	var flds string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&note.ID, &note.ModelID, &note.Modified, &flds)
	if err != nil {
		return nil, NewStoreError("note", "get", err)
	}
	note.Fields = strings.Split(flds, FieldSeparator)
	return &note, nil
}

// NoteFields returns the fields of the note with guid.
func (s *CollectionStore) NoteFields(ctx context.Context, guid string) ([]string, error) {
	note, err := s.GetNote(ctx, guid)
	if err != nil {
		return nil, err
	}
	return note.Fields, nil
}

// FieldChecksum returns the first 32 bits of the SHA-1 of a sort field, the
// value Anki stores in notes.csum for duplicate detection.
func FieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// StripHTML removes markup from a field value.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(s, ""))
}

// IsStoreError reports whether err came from a store operation on entity.
func IsStoreError(err error, entity string) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Entity == entity
}
