package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/summarizer/api/internal/config"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

var docExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Store manages the per-user file layout under the storage root:
// <root>/<username>/<filename>.
type Store struct {
	root string
}

func NewStore(cfg config.StorageConfig) *Store {
	return &Store{root: cfg.Root}
}

// Root returns the storage root path
func (s *Store) Root() string {
	return s.root
}

// UserDir returns the directory holding a user's files
func (s *Store) UserDir(user string) string {
	return filepath.Join(s.root, user)
}

// AudioPath builds the canonical absolute path of a user's audio file.
// This is the job key: the submit path and every status-query path must go
// through here so the two can never disagree on key format.
func (s *Store) AudioPath(user, audio string) string {
	return filepath.Join(s.root, user, SecureFilename(audio))
}

// VttPath returns the subtitle path the transcription tool writes for an
// audio file: same directory, same base name, .vtt extension.
func (s *Store) VttPath(user, audio string) string {
	audioPath := s.AudioPath(user, audio)
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".vtt"
}

// Exists reports whether a user's file is present
func (s *Store) Exists(user, name string) bool {
	_, err := os.Stat(s.AudioPath(user, name))
	return err == nil
}

// SaveUpload writes an uploaded file into the user's directory and returns
// its absolute path.
func (s *Store) SaveUpload(user, filename string, r io.Reader) (string, error) {
	dir := s.UserDir(user)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create user directory: %w", err)
	}

	path := s.AudioPath(user, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}

// ReadFile reads one of the user's files
func (s *Store) ReadFile(user, name string) ([]byte, error) {
	return os.ReadFile(s.AudioPath(user, name))
}

// ListAudios returns the names of a user's audio files, sorted
func (s *Store) ListAudios(user string) ([]string, error) {
	entries, err := os.ReadDir(s.UserDir(user))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var audios []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsAudio(entry.Name()) {
			audios = append(audios, entry.Name())
		}
	}
	sort.Strings(audios)
	return audios, nil
}

// IsAudio reports whether the filename has a supported audio extension
func IsAudio(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsDoc reports whether the filename has a supported document extension
func IsDoc(name string) bool {
	return docExtensions[strings.ToLower(filepath.Ext(name))]
}

// SecureFilename strips path components and unsafe characters from an
// externally supplied filename.
func SecureFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "unnamed"
	}
	return name
}
