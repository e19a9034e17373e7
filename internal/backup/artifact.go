package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Kind distinguishes the two archive retention classes.
type Kind string

const (
	// KindRecent is a timestamped archive, one per backup run.
	KindRecent Kind = "recent"
	// KindMonthly is a calendar-month snapshot copied from a recent archive.
	KindMonthly Kind = "monthly"
)

const (
	stampLayout = "2006-01-02_15-04-05"
	monthLayout = "2006-01"

	libraryTag    = "_library_"
	monthlySuffix = "_monthly"
	zipExt        = ".zip"
)

// Artifact identifies one archive on disk. Ordering decisions compare the
// decoded Stamp rather than filenames, so they hold regardless of how the
// name happens to sort.
type Artifact struct {
	Prefix string
	Kind   Kind
	Stamp  time.Time // creation time; truncated to the month for monthlies
	Path   string
}

// RecentName encodes the wire filename for a recent archive.
func RecentName(prefix string, t time.Time) string {
	return prefix + libraryTag + t.Format(stampLayout) + zipExt
}

// MonthlyName encodes the wire filename for a monthly snapshot.
func MonthlyName(prefix string, t time.Time) string {
	return prefix + libraryTag + t.Format(monthLayout) + monthlySuffix + zipExt
}

// parseName decodes an artifact filename belonging to prefix. Returns
// false for anything else in the backup dir (state files, other prefixes,
// stray downloads).
func parseName(prefix, name string) (Artifact, bool) {
	rest, found := strings.CutPrefix(name, prefix+libraryTag)
	if !found || !strings.HasSuffix(rest, zipExt) {
		return Artifact{}, false
	}
	rest = strings.TrimSuffix(rest, zipExt)

	if tag, found := strings.CutSuffix(rest, monthlySuffix); found {
		stamp, err := time.ParseInLocation(monthLayout, tag, time.Local)
		if err != nil {
			return Artifact{}, false
		}
		return Artifact{Prefix: prefix, Kind: KindMonthly, Stamp: stamp}, true
	}

	stamp, err := time.ParseInLocation(stampLayout, rest, time.Local)
	if err != nil {
		return Artifact{}, false
	}
	return Artifact{Prefix: prefix, Kind: KindRecent, Stamp: stamp}, true
}

// ScanArtifacts lists a library's artifacts in the backup dir, oldest
// first within the returned slice (both kinds mixed; filter by Kind).
func ScanArtifacts(dir, prefix string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan backup dir: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		art, ok := parseName(prefix, entry.Name())
		if !ok {
			continue
		}
		art.Path = filepath.Join(dir, entry.Name())
		artifacts = append(artifacts, art)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Stamp.Before(artifacts[j].Stamp)
	})
	return artifacts, nil
}

// NewestRecent returns the most recent non-monthly artifact, or false if
// the library has none.
func NewestRecent(artifacts []Artifact) (Artifact, bool) {
	var newest Artifact
	var found bool
	for _, art := range artifacts {
		if art.Kind != KindRecent {
			continue
		}
		if !found || newest.Stamp.Before(art.Stamp) {
			newest = art
			found = true
		}
	}
	return newest, found
}

// HasMonthly reports whether a monthly snapshot exists for t's calendar
// month.
func HasMonthly(artifacts []Artifact, t time.Time) bool {
	month := t.Format(monthLayout)
	for _, art := range artifacts {
		if art.Kind == KindMonthly && art.Stamp.Format(monthLayout) == month {
			return true
		}
	}
	return false
}
