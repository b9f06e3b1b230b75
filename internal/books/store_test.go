package books

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStore_Content(t *testing.T) {
	store := NewStore([]Chunk{
		{Language: "en", Text: "Chapter one: patience."},
		{Language: "English", Text: "Chapter two: kindness."},
		{Language: "ta", Text: "அத்தியாயம் ஒன்று"},
		{Language: "fr", Text: "   "},
		{Language: "klingon", Text: "Falls back to English."},
	})

	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "english merges names and fallback", code: "en", want: "Chapter one: patience.\n\nChapter two: kindness.\n\nFalls back to English."},
		{name: "tamil", code: "ta", want: "அத்தியாயம் ஒன்று"},
		{name: "native name lookup", code: "தமிழ்", want: "அத்தியாயம் ஒன்று"},
		{name: "blank chunks dropped", code: "fr", want: ""},
		{name: "missing language", code: "ja", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.Content(tt.code); got != tt.want {
				t.Errorf("Content(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}

	if got := store.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
}

func TestStore_ForLanguageReturnsCopy(t *testing.T) {
	store := NewStore([]Chunk{{Language: "en", Text: "original"}})

	chunks := store.ForLanguage("en")
	chunks[0] = "changed"

	if got := store.Content("en"); got != "original" {
		t.Errorf("store was mutated through ForLanguage: %q", got)
	}
}

func TestStore_NilSafe(t *testing.T) {
	var store *Store
	if got := store.Content("en"); got != "" {
		t.Errorf("Content() on nil store = %q", got)
	}
	if store.Len() != 0 {
		t.Error("Len() on nil store should be 0")
	}
}

func TestStore_ConcurrentReads(t *testing.T) {
	store := NewStore([]Chunk{{Language: "en", Text: "a"}, {Language: "hi", Text: "b"}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Content("en")
			_ = store.ForLanguage("hi")
		}()
	}
	wg.Wait()
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "book.json")
	if err := os.WriteFile(valid, []byte(`[{"language":"en","text":"Hello"},{"language":"hi","text":"नमस्ते"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	invalid := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(invalid, []byte(`{"language":`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		path          string
		want          int
		wantErr       bool
		wantMalformed bool
	}{
		{name: "valid", path: valid, want: 2},
		{name: "invalid json", path: invalid, wantErr: true, wantMalformed: true},
		{name: "missing file", path: filepath.Join(dir, "nope.json"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := LoadJSONFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadJSONFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, ErrMalformed); got != tt.wantMalformed {
				t.Errorf("errors.Is(err, ErrMalformed) = %v, want %v", got, tt.wantMalformed)
			}
			if len(chunks) != tt.want {
				t.Errorf("got %d chunks, want %d", len(chunks), tt.want)
			}
		})
	}
}

func TestLoadPostgres(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		want      []Chunk
		wantErr   bool
	}{
		{
			name: "rows",
			setupMock: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"language", "text"}).
					AddRow("en", "First").
					AddRow("es", "Primero")
				m.ExpectQuery(`SELECT language, text FROM book_chunks`).WillReturnRows(rows)
			},
			want: []Chunk{{Language: "en", Text: "First"}, {Language: "es", Text: "Primero"}},
		},
		{
			name: "empty table",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT language, text FROM book_chunks`).
					WillReturnRows(sqlmock.NewRows([]string{"language", "text"}))
			},
		},
		{
			name: "query error",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT language, text FROM book_chunks`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
		{
			name: "row error",
			setupMock: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"language", "text"}).
					AddRow("en", "First").
					RowError(0, sql.ErrConnDone)
				m.ExpectQuery(`SELECT language, text FROM book_chunks`).WillReturnRows(rows)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			tt.setupMock(mock)

			got, err := LoadPostgres(context.Background(), db)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadPostgres() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Fatalf("got %d chunks, want %d", len(got), len(tt.want))
				}
				for i := range tt.want {
					if got[i] != tt.want[i] {
						t.Errorf("chunk[%d] = %+v, want %+v", i, got[i], tt.want[i])
					}
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "book.json")
	if err := os.WriteFile(valid, []byte(`[{"language":"en","text":"From file"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`not json`), 0o600); err != nil {
		t.Fatal(err)
	}

	unreachable := func(ctx context.Context) (*sql.DB, error) {
		return nil, errors.New("failed to ping database: connection refused")
	}
	withRows := func(t *testing.T, query error) func(ctx context.Context) (*sql.DB, error) {
		return func(ctx context.Context) (*sql.DB, error) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			exp := mock.ExpectQuery(`SELECT language, text FROM book_chunks`)
			if query != nil {
				exp.WillReturnError(query)
			} else {
				exp.WillReturnRows(sqlmock.NewRows([]string{"language", "text"}).AddRow("en", "From db"))
			}
			mock.ExpectClose()
			return db, nil
		}
	}

	tests := []struct {
		name      string
		src       func(t *testing.T) Sources
		wantErr   bool
		wantText  string
		wantWarns int
	}{
		{
			name:      "nothing configured",
			src:       func(t *testing.T) Sources { return Sources{} },
			wantWarns: 1,
		},
		{
			name:      "missing file degrades to empty store",
			src:       func(t *testing.T) Sources { return Sources{Path: filepath.Join(dir, "missing.json")} },
			wantWarns: 2,
		},
		{
			name:    "malformed file fails",
			src:     func(t *testing.T) Sources { return Sources{Path: broken} },
			wantErr: true,
		},
		{
			name:      "unreachable database keeps file chunks",
			src:       func(t *testing.T) Sources { return Sources{Path: valid, OpenDB: unreachable} },
			wantText:  "From file",
			wantWarns: 1,
		},
		{
			name:      "query failure is skipped",
			src:       func(t *testing.T) Sources { return Sources{OpenDB: withRows(t, sql.ErrConnDone)} },
			wantWarns: 2,
		},
		{
			name:     "file and database merged",
			src:      func(t *testing.T) Sources { return Sources{Path: valid, OpenDB: withRows(t, nil)} },
			wantText: "From file\n\nFrom db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)

			store, err := Load(context.Background(), tt.src(t), zap.New(core))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if got := store.Content("en"); got != tt.wantText {
				t.Errorf("Content(en) = %q, want %q", got, tt.wantText)
			}
			if logs.Len() != tt.wantWarns {
				t.Errorf("got %d warnings, want %d", logs.Len(), tt.wantWarns)
			}
		})
	}
}
