package feature

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/samdwyer/repoheroes/internal/snapshot"
)

func sampleSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Owner:  "octocat",
		Name:   "spider",
		README: "# Spider\n\nA web crawler that can scrape and extract data.\n\n## Usage\n\nRun the crawler from your terminal.",
		Files: []snapshot.FileEntry{
			{Path: "README.md"},
			{Path: "main.go"},
			{Path: "internal/fetch/fetch.go"},
			{Path: "internal/fetch/fetch_test.go"},
			{Path: "internal/parse/parse.go"},
			{Path: "docs/guide.md"},
		},
		Langs:    map[string]int64{"Go": 10000, "Shell": 500},
		Stars:    250,
		Forks:    12,
		Watchers: 30,
	}
}

func TestExtractBasics(t *testing.T) {
	sum := Extract(sampleSnapshot())

	if sum.Identity != "octocat/spider" {
		t.Errorf("Identity = %q", sum.Identity)
	}
	if sum.HeadingCount != 2 {
		t.Errorf("HeadingCount = %d, want 2", sum.HeadingCount)
	}
	if sum.TotalFiles != 6 {
		t.Errorf("TotalFiles = %d, want 6", sum.TotalFiles)
	}
	// internal, internal/fetch, internal/parse, docs
	if sum.TotalDirs != 4 {
		t.Errorf("TotalDirs = %d, want 4", sum.TotalDirs)
	}
	if sum.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", sum.MaxDepth)
	}
	if sum.Zones["root"] != 2 || sum.Zones["internal"] != 3 || sum.Zones["docs"] != 1 {
		t.Errorf("Zones = %v", sum.Zones)
	}
	if sum.Extensions["go"] != 4 || sum.Extensions["md"] != 2 {
		t.Errorf("Extensions = %v", sum.Extensions)
	}
	if sum.DominantLanguage != "Go" {
		t.Errorf("DominantLanguage = %q, want Go", sum.DominantLanguage)
	}
	if sum.LanguageTag != "backend" {
		t.Errorf("LanguageTag = %q, want backend", sum.LanguageTag)
	}
	if sum.ActivityScore != 250+24+90 {
		t.Errorf("ActivityScore = %d", sum.ActivityScore)
	}
	if sum.Health != HealthStable {
		t.Errorf("Health = %q, want stable", sum.Health)
	}
}

func TestExtractKeywordHits(t *testing.T) {
	sum := Extract(sampleSnapshot())

	// "spider" (heading), "crawler" x2, "scrape", "extract" -> scraping group.
	if sum.KeywordHits["scraping"] != 5 {
		t.Errorf("scraping hits = %d, want 5", sum.KeywordHits["scraping"])
	}
	// "web" is in the web group but "terminal" hits cli.
	if sum.KeywordHits["cli"] != 1 {
		t.Errorf("cli hits = %d, want 1", sum.KeywordHits["cli"])
	}
	tags := sum.Tags()
	if len(tags) == 0 || tags[0] != "scraping" {
		t.Errorf("Tags() = %v, want scraping first", tags)
	}
}

func TestExtractNilAndEmpty(t *testing.T) {
	zero := Extract(nil)
	if zero.TotalFiles != 0 || zero.WordCount != 0 || len(zero.Tags()) != 0 {
		t.Errorf("nil snapshot should yield zero summary, got %+v", zero)
	}

	empty := Extract(&snapshot.Snapshot{Owner: "a", Name: "b"})
	if empty.Identity != "a/b" {
		t.Errorf("Identity = %q", empty.Identity)
	}
	if empty.Health != HealthUndead {
		t.Errorf("Health = %q, want undead", empty.Health)
	}
	if empty.SizeTier != 0 {
		t.Errorf("SizeTier = %d, want 0", empty.SizeTier)
	}
}

func TestExtractOrderIndependent(t *testing.T) {
	base := sampleSnapshot()
	want := Extract(base)

	shuffled := sampleSnapshot()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled.Files), func(a, b int) {
			shuffled.Files[a], shuffled.Files[b] = shuffled.Files[b], shuffled.Files[a]
		})
		got := Extract(shuffled)
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("shuffle %d changed the summary:\nwant %+v\ngot  %+v", i, want, got)
		}
	}
}

func TestExtractWhitespaceInsensitive(t *testing.T) {
	a := sampleSnapshot()
	b := sampleSnapshot()
	b.README = "#   Spider\n\n\nA web    crawler that can scrape and extract data.\n\n##   Usage\n\nRun the crawler from your terminal.\n\n"

	sa, sb := Extract(a), Extract(b)
	if sa.WordCount != sb.WordCount {
		t.Errorf("word counts differ: %d != %d", sa.WordCount, sb.WordCount)
	}
	if !reflect.DeepEqual(sa.KeywordHits, sb.KeywordHits) {
		t.Errorf("keyword hits differ: %v != %v", sa.KeywordHits, sb.KeywordHits)
	}
}

func TestExtractCaseFolds(t *testing.T) {
	snap := sampleSnapshot()
	snap.README = "A WEB CRAWLER built to SCRAPE."
	sum := Extract(snap)

	if sum.KeywordHits["scraping"] != 2 {
		t.Errorf("scraping hits = %d, want 2", sum.KeywordHits["scraping"])
	}
}

func TestExtractQuestSignalsSorted(t *testing.T) {
	snap := sampleSnapshot()
	snap.Issues = []snapshot.Issue{
		{Number: 9, Title: "crash", Comments: 4, Labels: []string{"bug"}},
		{Number: 3, Title: "typo", Comments: 0},
	}
	snap.Pulls = []snapshot.PullRequest{
		{Number: 12, Title: "refactor", Comments: 2, Additions: 600, Deletions: 100},
		{Number: 7, Title: "fix", Comments: 0, Additions: 5, Deletions: 1},
	}

	sum := Extract(snap)
	if len(sum.Issues) != 2 || sum.Issues[0].Number != 3 || sum.Issues[1].Number != 9 {
		t.Errorf("issues not sorted by number: %+v", sum.Issues)
	}
	if len(sum.Pulls) != 2 || sum.Pulls[0].Number != 7 || sum.Pulls[1].Number != 12 {
		t.Errorf("pulls not sorted by number: %+v", sum.Pulls)
	}
}

func TestBaseLevel(t *testing.T) {
	if got := (Summary{}).BaseLevel(); got != 1 {
		t.Errorf("empty summary BaseLevel = %d, want 1", got)
	}

	big := Summary{
		ActivityScore: 100000,
		TotalFiles:    100000,
		Stars:         100000,
		Forks:         100000,
		WordCount:     100000,
	}
	if got := big.BaseLevel(); got != 96 {
		t.Errorf("saturated BaseLevel = %d, want 96", got)
	}

	small := Summary{Stars: 250, TotalFiles: 40, ActivityScore: 300}
	// 1 + 3 (activity) + 4 (files) + 2 (stars)
	if got := small.BaseLevel(); got != 10 {
		t.Errorf("BaseLevel = %d, want 10", got)
	}
}

func TestRootFilesSorted(t *testing.T) {
	snap := &snapshot.Snapshot{
		Owner: "a", Name: "b",
		Files: []snapshot.FileEntry{{Path: "zeta.go"}, {Path: "alpha.go"}},
	}
	sum := Extract(snap)
	if len(sum.RootFiles) != 2 || sum.RootFiles[0] != "alpha.go" || sum.RootFiles[1] != "zeta.go" {
		t.Errorf("RootFiles = %v", sum.RootFiles)
	}
}

func TestDominantLanguageTieBreak(t *testing.T) {
	snap := &snapshot.Snapshot{
		Owner: "a", Name: "b",
		Langs: map[string]int64{"Zig": 100, "Ada": 100},
	}
	for i := 0; i < 5; i++ {
		if got := Extract(snap).DominantLanguage; got != "Ada" {
			t.Fatalf("tie should break alphabetically, got %q", got)
		}
	}
}
