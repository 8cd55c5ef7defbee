package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/webcite"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ webcite.Searcher = (*Index)(nil)

// IndexedFile is a corpus file recorded in the index.
type IndexedFile struct {
	ID          string
	Path        string
	ContentHash string
	IndexedAt   time.Time
	Fields      int
}

// SyncStats summarizes an index sync.
type SyncStats struct {
	Indexed   int
	Unchanged int
	Removed   int
}

// Index stores the citation keys and field values of corpus files so
// duplicate searches do not rescan the files.
type Index struct {
	db          *DB
	concurrency int
}

// NewIndex creates a new Index.
func NewIndex(db *DB) *Index {
	return &Index{db: db, concurrency: 8}
}

type parsedFile struct {
	path  string
	hash  string
	lines []webcite.CorpusLine
	skip  bool
}

// Sync brings the index in line with files. Files whose content hash is
// unchanged are skipped, changed files are reindexed, and indexed files no
// longer listed are removed.
func (idx *Index) Sync(ctx context.Context, files []string) (SyncStats, error) {
	var stats SyncStats

	known, err := idx.hashes(ctx)
	if err != nil {
		return stats, err
	}

	parsed := make([]parsedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			p := parsedFile{path: path, hash: hashContent(content)}
			if known[path] == p.hash {
				p.skip = true
				parsed[i] = p
				return nil
			}
			err = webcite.ScanCorpus(bytes.NewReader(content), func(l webcite.CorpusLine) {
				p.lines = append(p.lines, l)
			})
			if err != nil {
				return fmt.Errorf("scan %s: %w", path, err)
			}
			parsed[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	tx, err := idx.db.BeginTx(ctx)
	if err != nil {
		return stats, err
	}
	defer func() { _ = tx.Rollback() }()

	listed := make(map[string]bool, len(files))
	for _, p := range parsed {
		listed[p.path] = true
		if p.skip {
			stats.Unchanged++
			continue
		}
		if err := writeFile(ctx, tx, p); err != nil {
			return stats, err
		}
		stats.Indexed++
	}
	for path := range known {
		if listed[path] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
			return stats, err
		}
		stats.Removed++
	}

	return stats, tx.Commit()
}

func writeFile(ctx context.Context, tx *sql.Tx, p parsedFile) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, p.path); err != nil {
		return err
	}

	id := uuid.New().String()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO files (id, path, content_hash, indexed_at)
		VALUES (?, ?, ?, ?)
	`, id, p.path, p.hash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fields (file_id, line, field, value, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range p.lines {
		if _, err := stmt.ExecContext(ctx, id, l.Line, l.Field, l.Value, l.Text); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) hashes(ctx context.Context) (map[string]string, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT path, content_hash FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		out[path] = hash
	}
	return out, rows.Err()
}

// Search returns every indexed line whose citation key or field value
// equals pattern, ordered by file and line.
func (idx *Index) Search(ctx context.Context, pattern string) ([]webcite.Match, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT f.path, fl.line, fl.text
		FROM fields fl
		JOIN files f ON f.id = fl.file_id
		WHERE fl.value = ?
		ORDER BY f.path, fl.line
	`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []webcite.Match
	for rows.Next() {
		var m webcite.Match
		if err := rows.Scan(&m.Path, &m.Line, &m.Text); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Files lists the indexed files ordered by path.
func (idx *Index) Files(ctx context.Context) ([]*IndexedFile, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT f.id, f.path, f.content_hash, f.indexed_at, COUNT(fl.file_id)
		FROM files f
		LEFT JOIN fields fl ON fl.file_id = f.id
		GROUP BY f.id
		ORDER BY f.path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*IndexedFile
	for rows.Next() {
		var f IndexedFile
		var indexedAt string
		if err := rows.Scan(&f.ID, &f.Path, &f.ContentHash, &indexedAt, &f.Fields); err != nil {
			return nil, err
		}
		if f.IndexedAt, err = parseTime(indexedAt, "indexed_at"); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// FindFile returns the indexed file with the given path.
// Returns ENOTFOUND if the file is not indexed.
func (idx *Index) FindFile(ctx context.Context, path string) (*IndexedFile, error) {
	files, err := idx.Files(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.Path == path {
			return f, nil
		}
	}
	return nil, webcite.Errorf(webcite.ENOTFOUND, "file %s not indexed", path)
}
