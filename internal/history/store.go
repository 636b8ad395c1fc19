// Package history persists exported crops and the records describing them.
//
// Layout under the store root:
//
//	history/<record-id>_<n>.json   one record per result image
//	history/results/<hex>.<ext>    the encoded images
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/cropdesk/internal/surface"
)

var (
	// ErrNotFound is returned by Delete when no record matches.
	ErrNotFound = errors.New("history: record not found")
	// ErrEmpty is returned when there is nothing to save.
	ErrEmpty = errors.New("history: no images provided")
)

// CroppedPrompt tags records produced by the crop tool.
const CroppedPrompt = "cropped"

// DefaultLimit is the page size used when List is given a non-positive limit.
const DefaultLimit = 12

// Record is one history entry as stored on disk.
type Record struct {
	ID               string   `json:"id"`
	Timestamp        string   `json:"timestamp"`
	LocalResultPaths []string `json:"local_result_paths"`
	InputPaths       []string `json:"input_paths"`
	Prompt           string   `json:"prompt"`
	Size             string   `json:"size"`
	AspectRatio      string   `json:"aspect_ratio"`
}

// Page is one slice of the history listing, newest first.
type Page struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Pages   int      `json:"pages"`
}

// Store reads and writes history under a root directory.
type Store struct {
	root   string
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDs replaces the random id source used for records and file names.
func WithIDs(next func() string) Option { return func(s *Store) { s.newID = next } }

// NewStore creates a store rooted at root. Directories are created lazily.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:   root,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Root returns the store root.
func (s *Store) Root() string { return s.root }

// Dir returns the directory holding record files.
func (s *Store) Dir() string { return filepath.Join(s.root, "history") }

// ResultsDir returns the directory holding result images.
func (s *Store) ResultsDir() string { return filepath.Join(s.Dir(), "results") }

// SaveImages writes each image under ResultsDir with a random name and
// returns the paths relative to the store root, in input order.
func (s *Store) SaveImages(images []surface.Encoded) ([]string, error) {
	if len(images) == 0 {
		return nil, ErrEmpty
	}
	if err := os.MkdirAll(s.ResultsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	paths := make([]string, 0, len(images))
	for _, img := range images {
		name := strings.ReplaceAll(s.newID(), "-", "") + img.Format.Ext()
		full := filepath.Join(s.ResultsDir(), name)
		if err := os.WriteFile(full, img.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", full, err)
		}
		rel := filepath.ToSlash(filepath.Join("history", "results", name))
		s.logger.Debug("saved result image", "path", rel, "bytes", len(img.Data))
		paths = append(paths, rel)
	}
	return paths, nil
}

// SaveRecord writes one file per result path, named <id>_<n>.json with n
// counting from 1, each carrying that single path.
func (s *Store) SaveRecord(rec Record) error {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	for i, p := range rec.LocalResultPaths {
		one := rec
		one.LocalResultPaths = []string{p}
		if one.InputPaths == nil {
			one.InputPaths = []string{}
		}
		data, err := json.MarshalIndent(one, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(s.Dir(), fmt.Sprintf("%s_%d.json", rec.ID, i+1))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write record %s: %w", path, err)
		}
	}
	return nil
}

// Persist saves images and a cropped-record for them.
func (s *Store) Persist(ctx context.Context, images []surface.Encoded, inputs []string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	paths, err := s.SaveImages(images)
	if err != nil {
		return Record{}, err
	}
	if inputs == nil {
		inputs = []string{}
	}
	rec := Record{
		ID:               s.newID(),
		Timestamp:        s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		LocalResultPaths: paths,
		InputPaths:       inputs,
		Prompt:           CroppedPrompt,
	}
	if err := s.SaveRecord(rec); err != nil {
		return Record{}, err
	}
	s.logger.Info("history record saved", "id", rec.ID, "images", len(paths))
	return rec, nil
}

type recordFile struct {
	path string
	mod  time.Time
}

func (s *Store) recordFiles() ([]recordFile, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir(), "*.json"))
	if err != nil {
		return nil, err
	}
	files := make([]recordFile, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			continue
		}
		files = append(files, recordFile{path: m, mod: fi.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.After(files[j].mod)
		}
		return files[i].path > files[j].path
	})
	return files, nil
}

// List returns page (1-based) of records, newest file first. Unreadable
// files are logged and skipped but still count toward Total.
func (s *Store) List(page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	files, err := s.recordFiles()
	if err != nil {
		return Page{}, err
	}
	out := Page{Total: len(files), Page: page, Limit: limit, Pages: (len(files) + limit - 1) / limit, Records: []Record{}}
	start := (page - 1) * limit
	if start >= len(files) {
		return out, nil
	}
	end := min(start+limit, len(files))
	for _, f := range files[start:end] {
		rec, err := readRecord(f.path)
		if err != nil {
			s.logger.Warn("skipping unreadable history record", "path", f.path, "err", err)
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// Delete removes the record files of id (<id>.json and <id>_<n>.json)
// together with the result images they point at.
func (s *Store) Delete(id string) error {
	if id == "" {
		return ErrNotFound
	}
	files, err := s.recordFiles()
	if err != nil {
		return err
	}
	found := false
	for _, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f.path), ".json")
		if stem != id && !strings.HasPrefix(stem, id+"_") {
			continue
		}
		found = true
		rec, rerr := readRecord(f.path)
		if err := os.Remove(f.path); err != nil {
			return fmt.Errorf("remove record %s: %w", f.path, err)
		}
		if rerr != nil {
			s.logger.Warn("deleted unreadable history record", "path", f.path, "err", rerr)
			continue
		}
		for _, p := range rec.LocalResultPaths {
			full := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
			if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("remove result image", "path", full, "err", err)
			}
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
