package cuesheet

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// mediaExtensions are the file types considered when the media named by a
// cue sheet is missing.
var mediaExtensions = []string{
	".flac", ".ape", ".wv", ".tak", ".wav", ".aiff",
	".mp3", ".m4a", ".aac", ".ogg", ".opus",
	".mka", ".mkv", ".mp4", ".webm",
}

// similarityThreshold is the minimum Jaro-Winkler score for a fuzzy match.
const similarityThreshold = 0.85

// LocateMedia returns path when it exists. Otherwise it looks in the same
// directory for a media file with the same stem and another extension
// (cue sheets often still name the .wav a rip was made from), then for the
// media file whose stem is most similar. The boolean is false when nothing
// suitable was found.
func LocateMedia(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	want := stem(filepath.Base(path))
	var candidates []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(mediaExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		if stem(e.Name()) == want {
			return filepath.Join(dir, e.Name()), true
		}
		candidates = append(candidates, e.Name())
	}

	best, bestScore := "", 0.0
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false
	for _, c := range candidates {
		if score := strutil.Similarity(want, stem(c), jw); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < similarityThreshold {
		return "", false
	}
	return filepath.Join(dir, best), true
}

// stem returns name without its extension.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
