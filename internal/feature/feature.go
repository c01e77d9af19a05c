// Package feature turns a repository snapshot into a canonical,
// order-independent summary. Extraction is pure: no I/O, no failure path.
// A malformed or empty snapshot degrades to a zero-value summary so that
// generation never blocks on missing data.
package feature

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/samdwyer/repoheroes/internal/balance"
	"github.com/samdwyer/repoheroes/internal/snapshot"
)

// Health classifies how alive a repository looks from its reputation signals.
type Health string

const (
	HealthVibrant Health = "vibrant"
	HealthStable  Health = "stable"
	HealthFrail   Health = "frail"
	HealthUndead  Health = "undead"
)

// Keyword groups scanned in the README. The group names double as the tags
// that drive archetype and name selection downstream, so they must match the
// tag keys in the gamedata tables.
var keywordGroups = map[string][]string{
	"web":      {"html", "css", "javascript", "react", "frontend", "vue", "angular", "dom", "browser"},
	"backend":  {"api", "server", "database", "django", "flask", "node", "express", "backend", "rest"},
	"cli":      {"cli", "command-line", "terminal", "console", "shell", "bash"},
	"scraping": {"scrape", "crawler", "spider", "parsing", "extract"},
	"ai":       {"machine learning", "neural", "deep learning", "artificial intelligence", "tensorflow", "pytorch"},
}

// Language name -> archetype tag. Languages without a mapping fall back to
// the keyword tags alone.
var languageTags = map[string]string{
	"JavaScript": "web",
	"TypeScript": "web",
	"HTML":       "web",
	"CSS":        "web",
	"Vue":        "web",
	"Go":         "backend",
	"Java":       "backend",
	"Ruby":       "backend",
	"PHP":        "backend",
	"Rust":       "backend",
	"C":          "cli",
	"C++":        "cli",
	"Shell":      "cli",
	"Python":     "ai",
	"Jupyter Notebook": "ai",
}

// IssueSignal is the quest-relevant slice of an open issue.
type IssueSignal struct {
	Number   int
	Title    string
	Comments int
	Labels   []string
}

// PullSignal is the boss-relevant slice of an open pull request.
type PullSignal struct {
	Number    int
	Title     string
	Comments  int
	Additions int
	Deletions int
}

// Summary is the canonical digest of a snapshot. Identical snapshot content
// produces an identical summary regardless of input ordering.
type Summary struct {
	Identity string

	// README signals.
	WordCount    int
	HeadingCount int
	KeywordHits  map[string]int

	// Structure signals.
	Extensions map[string]int
	Zones      map[string]int // top-level directory -> file count; "root" for flat files
	RootFiles  []string       // sorted file names at repository root (for flat layouts)
	TotalFiles int
	TotalDirs  int
	MaxDepth   int

	// Quest signals, sorted by number.
	Issues []IssueSignal
	Pulls  []PullSignal

	// Reputation signals.
	DominantLanguage string
	LanguageTag      string
	Stars            int
	Forks            int
	Watchers         int
	ActivityScore    int
	Health           Health
	SizeTier         int
}

// Tags returns the active keyword tags sorted by hit count descending, ties
// broken alphabetically. The explicit ordering keeps downstream archetype
// selection deterministic.
func (s Summary) Tags() []string {
	var tags []string
	for tag, hits := range s.KeywordHits {
		if hits > 0 {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		hi, hj := s.KeywordHits[tags[i]], s.KeywordHits[tags[j]]
		if hi != hj {
			return hi > hj
		}
		return tags[i] < tags[j]
	})
	return tags
}

var (
	headingPattern = regexp.MustCompile(`(?m)^#+\s`)
	wordPattern    = regexp.MustCompile(`[a-z0-9]+`)
	markupPattern  = regexp.MustCompile("[`*_~>|\\[\\]()#]")

	// Whole-word patterns per keyword group, compiled once.
	keywordPatterns = func() map[string][]*regexp.Regexp {
		patterns := map[string][]*regexp.Regexp{}
		for group, keywords := range keywordGroups {
			for _, keyword := range keywords {
				// Short keywords ("ml", "ai") are skipped: they
				// false-positive inside ordinary words far too often.
				if len(keyword) < 3 {
					continue
				}
				patterns[group] = append(patterns[group],
					regexp.MustCompile(`\b`+regexp.QuoteMeta(keyword)+`\b`))
			}
		}
		return patterns
	}()
)

// Extract computes the canonical summary for a snapshot. nil yields the
// zero-value summary.
func Extract(snap *snapshot.Snapshot) Summary {
	sum := Summary{
		KeywordHits: map[string]int{},
		Extensions:  map[string]int{},
		Zones:       map[string]int{},
	}
	if snap == nil {
		return sum
	}
	sum.Identity = snap.Identity()

	extractReadme(&sum, snap.README)
	extractStructure(&sum, snap.Files)
	extractQuestSignals(&sum, snap)

	sum.Stars = snap.Stars
	sum.Forks = snap.Forks
	sum.Watchers = snap.Watchers
	sum.ActivityScore = snap.Stars + snap.Forks*2 + snap.Watchers*3
	sum.Health = healthFor(snap.Stars)
	sum.DominantLanguage = dominantLanguage(snap.Langs)
	sum.LanguageTag = languageTags[sum.DominantLanguage]
	sum.SizeTier = balance.TierFor(snap.Stars, sum.TotalFiles)
	return sum
}

// extractReadme normalizes the README and records word, heading, and keyword
// statistics. Case folding plus markup stripping makes the counts stable
// across formatting-only edits.
func extractReadme(sum *Summary, text string) {
	if text == "" {
		for group := range keywordGroups {
			sum.KeywordHits[group] = 0
		}
		return
	}

	sum.HeadingCount = len(headingPattern.FindAllString(text, -1))

	folded := cases.Fold().String(text)
	stripped := markupPattern.ReplaceAllString(folded, " ")
	words := wordPattern.FindAllString(stripped, -1)
	sum.WordCount = len(words)

	for group, patterns := range keywordPatterns {
		hits := 0
		for _, pattern := range patterns {
			hits += len(pattern.FindAllString(stripped, -1))
		}
		sum.KeywordHits[group] = hits
	}
}

// extractStructure folds the file list into extension, zone, and depth
// statistics. Paths are sorted first so the result is order-independent.
func extractStructure(sum *Summary, files []snapshot.FileEntry) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := strings.TrimSpace(f.Path)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	dirs := map[string]bool{}
	for _, path := range paths {
		sum.TotalFiles++

		segments := strings.Split(path, "/")
		depth := len(segments) - 1
		if depth > sum.MaxDepth {
			sum.MaxDepth = depth
		}
		for i := 1; i < len(segments); i++ {
			dirs[strings.Join(segments[:i], "/")] = true
		}

		zone := "root"
		if depth > 0 {
			zone = segments[0]
		} else {
			sum.RootFiles = append(sum.RootFiles, path)
		}
		sum.Zones[zone]++

		base := segments[len(segments)-1]
		if dot := strings.LastIndex(base, "."); dot > 0 && dot < len(base)-1 {
			sum.Extensions[strings.ToLower(base[dot+1:])]++
		}
	}
	sum.TotalDirs = len(dirs)
}

// extractQuestSignals copies the quest-relevant issue and PR fields, sorted
// by number so input ordering never reaches the synthesizer.
func extractQuestSignals(sum *Summary, snap *snapshot.Snapshot) {
	for _, issue := range snap.Issues {
		labels := append([]string(nil), issue.Labels...)
		sort.Strings(labels)
		sum.Issues = append(sum.Issues, IssueSignal{
			Number:   issue.Number,
			Title:    issue.Title,
			Comments: issue.Comments,
			Labels:   labels,
		})
	}
	sort.Slice(sum.Issues, func(i, j int) bool { return sum.Issues[i].Number < sum.Issues[j].Number })

	for _, pr := range snap.Pulls {
		sum.Pulls = append(sum.Pulls, PullSignal{
			Number:    pr.Number,
			Title:     pr.Title,
			Comments:  pr.Comments,
			Additions: pr.Additions,
			Deletions: pr.Deletions,
		})
	}
	sort.Slice(sum.Pulls, func(i, j int) bool { return sum.Pulls[i].Number < sum.Pulls[j].Number })
}

// BaseLevel condenses the repository's size and reputation into a single
// difficulty level, capped at 100. Boss scaling keys off this value.
func (s Summary) BaseLevel() int {
	level := 1
	level += min(s.ActivityScore/100, 30)
	level += min(s.TotalFiles/10, 25)
	level += min(s.Stars/100, 20)
	level += min(s.Forks/50, 15)
	level += min(s.WordCount/500, 5)
	if level > 100 {
		level = 100
	}
	return level
}

// healthFor maps reputation to a health state. The thresholds are the
// classic 10/100/1000 star ladder.
func healthFor(stars int) Health {
	switch {
	case stars > 1000:
		return HealthVibrant
	case stars > 100:
		return HealthStable
	case stars > 10:
		return HealthFrail
	default:
		return HealthUndead
	}
}

// dominantLanguage picks the language with the most bytes, ties broken
// alphabetically so map ordering can't leak into the result.
func dominantLanguage(langs map[string]int64) string {
	best := ""
	var bestBytes int64 = -1
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if langs[name] > bestBytes {
			best = name
			bestBytes = langs[name]
		}
	}
	return best
}
