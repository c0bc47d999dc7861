// Package ranker rescores retrieval results by blending the index distance
// with keyword-density and metadata heuristics, then filters and
// deduplicates the survivors.
package ranker

import (
	"hash/fnv"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xhad/cdpchat/internal/models"
)

// scoreThreshold is the minimum final score a result must reach to survive
// filtering.
const scoreThreshold = 0.3

// dedupPrefixLen is how many leading content characters feed the duplicate
// fingerprint. Collisions are accepted; this is a similarity heuristic, not
// an identity check.
const dedupPrefixLen = 100

var (
	wordPattern  = regexp.MustCompile(`\b\w+\b`)
	howToPattern = regexp.MustCompile(`how (to|do|can|should)`)
)

type Ranker struct{}

func New() *Ranker {
	return &Ranker{}
}

// Rank scores every result against the query and returns them sorted by
// final score, highest first. The input slice is not modified.
func (r *Ranker) Rank(results []models.RetrievalResult, query string) []models.RetrievalResult {
	if len(results) == 0 {
		return nil
	}

	keywords := queryKeywords(query)

	scored := make([]models.RetrievalResult, len(results))
	for i, result := range results {
		result.ContentScore = contentScore(result.Content, keywords)
		result.MetadataScore = metadataScore(result.Metadata, query, keywords)
		result.FinalScore = finalScore(result.Distance, result.ContentScore, result.MetadataScore)
		scored[i] = result
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	return scored
}

// Filter drops results below the score threshold, then removes duplicates by
// fingerprinting the first 100 characters of content. Input must already be
// sorted by score, so the highest-scored duplicate wins.
func (r *Ranker) Filter(results []models.RetrievalResult) []models.RetrievalResult {
	var unique []models.RetrievalResult
	seen := make(map[uint64]bool)

	for _, result := range results {
		if result.FinalScore < scoreThreshold {
			continue
		}
		fp := contentFingerprint(result.Content)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		unique = append(unique, result)
	}

	return unique
}

// queryKeywords extracts case-folded word tokens longer than 3 characters.
func queryKeywords(query string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(query), -1)
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) > 3 {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

// contentScore measures keyword density: keyword occurrences per 100 content
// words, normalized so a density of 5 or more scores 1.0.
func contentScore(content string, keywords []string) float64 {
	contentLower := strings.ToLower(content)

	wordCount := len(wordPattern.FindAllString(contentLower, -1))
	if wordCount == 0 {
		return 0
	}

	occurrences := 0
	for _, kw := range keywords {
		occurrences += strings.Count(contentLower, kw)
	}

	density := float64(occurrences) / float64(wordCount) * 100
	return min(1.0, density/5.0)
}

// metadataScore blends document-type fit, title keyword matches and heading
// keyword matches: 0.4*type + 0.3*title + 0.3*heading.
func metadataScore(md models.Metadata, query string, keywords []string) float64 {
	isHowTo := howToPattern.MatchString(strings.ToLower(query))

	typeScore := 0.0
	switch {
	case isHowTo && md.DocType == models.DocTypeHowTo:
		typeScore = 1.0
	case !isHowTo && md.DocType == models.DocTypeReference:
		typeScore = 0.8
	case md.DocType == models.DocTypeOverview:
		typeScore = 0.6
	}

	titleLower := strings.ToLower(md.Title)
	titleMatches := 0
	for _, kw := range keywords {
		titleMatches += strings.Count(titleLower, kw)
	}
	titleScore := min(1.0, float64(titleMatches)/float64(max(1, len(keywords))))

	headingMatches := 0
	for _, heading := range md.HeadingHierarchy {
		headingLower := strings.ToLower(heading)
		for _, kw := range keywords {
			headingMatches += strings.Count(headingLower, kw)
		}
	}
	headingScore := min(1.0, float64(headingMatches)/float64(max(1, len(keywords)*2)))

	return 0.4*typeScore + 0.3*titleScore + 0.3*headingScore
}

// finalScore blends the three signals: 0.5*distance + 0.3*content +
// 0.2*metadata. A nil distance means the index gave no signal and is treated
// as the best possible, never a penalty.
func finalScore(distance *float64, contentScore, metadataScore float64) float64 {
	distanceScore := 1.0
	if distance != nil {
		distanceScore = 1.0 - min(1.0, *distance)
	}
	return 0.5*distanceScore + 0.3*contentScore + 0.2*metadataScore
}

func contentFingerprint(content string) uint64 {
	prefix := content
	if len(prefix) > dedupPrefixLen {
		cut := dedupPrefixLen
		for cut > 0 && !utf8.RuneStart(prefix[cut]) {
			cut--
		}
		prefix = prefix[:cut]
	}
	h := fnv.New64a()
	h.Write([]byte(prefix))
	return h.Sum64()
}
