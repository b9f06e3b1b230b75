package books

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/themobileprof/mindpage-be/internal/language"
)

// ErrMalformed is returned when a book content file exists but is not a
// JSON array of chunks
var ErrMalformed = errors.New("malformed book content")

// Chunk is one passage of book content in a single language
type Chunk struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Store holds book chunks grouped by language code. It is never mutated
// after construction so concurrent reads need no locking.
type Store struct {
	byLanguage map[string][]string
}

// NewStore groups chunks by normalized language code. Blank chunks are dropped.
func NewStore(chunks []Chunk) *Store {
	s := &Store{byLanguage: make(map[string][]string)}
	for _, c := range chunks {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		code := language.Normalize(c.Language)
		s.byLanguage[code] = append(s.byLanguage[code], text)
	}
	return s
}

// ForLanguage returns a copy of the chunks stored for code
func (s *Store) ForLanguage(code string) []string {
	if s == nil {
		return nil
	}
	chunks := s.byLanguage[language.Normalize(code)]
	return append([]string(nil), chunks...)
}

// Content returns every chunk for code joined by blank lines, or "" if none
func (s *Store) Content(code string) string {
	return strings.Join(s.ForLanguage(code), "\n\n")
}

// Len returns the total number of chunks
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, chunks := range s.byLanguage {
		n += len(chunks)
	}
	return n
}

// LoadJSONFile reads a JSON array of chunks from path
func LoadJSONFile(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read book content: %w", err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformed, path, err)
	}
	return chunks, nil
}

const selectChunks = `SELECT language, text FROM book_chunks ORDER BY language, position`

// LoadPostgres reads all chunks from the book_chunks table
func LoadPostgres(ctx context.Context, db *sql.DB) ([]Chunk, error) {
	rows, err := db.QueryContext(ctx, selectChunks)
	if err != nil {
		return nil, fmt.Errorf("failed to query book chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.Language, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan book chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read book chunks: %w", err)
	}

	return chunks, nil
}

// Sources names where book chunks come from. Both are optional.
type Sources struct {
	Path string

	// OpenDB connects to the chunk database; nil when none is configured
	OpenDB func(ctx context.Context) (*sql.DB, error)
}

// Load builds a Store from every configured source. A source that cannot be
// read or reached is logged and skipped so book chat degrades to no content.
// Only a malformed content file is an error.
func Load(ctx context.Context, src Sources, log *zap.Logger) (*Store, error) {
	var chunks []Chunk

	if src.Path != "" {
		fromFile, err := LoadJSONFile(src.Path)
		switch {
		case errors.Is(err, ErrMalformed):
			return nil, err
		case err != nil:
			log.Warn("book content file unavailable", zap.String("path", src.Path), zap.Error(err))
		default:
			chunks = append(chunks, fromFile...)
			log.Info("book content loaded from file",
				zap.String("path", src.Path),
				zap.Int("chunks", len(fromFile)),
			)
		}
	}

	if src.OpenDB != nil {
		fromDB, err := loadDatabase(ctx, src.OpenDB)
		if err != nil {
			log.Warn("book content database unavailable", zap.Error(err))
		} else {
			chunks = append(chunks, fromDB...)
			log.Info("book content loaded from database", zap.Int("chunks", len(fromDB)))
		}
	}

	store := NewStore(chunks)
	if store.Len() == 0 {
		log.Warn("no book content loaded")
	}
	return store, nil
}

func loadDatabase(ctx context.Context, open func(ctx context.Context) (*sql.DB, error)) ([]Chunk, error) {
	db, err := open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return LoadPostgres(ctx, db)
}
