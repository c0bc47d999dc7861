// Package responder turns pipeline outcomes into the final chat text. It is a
// pure formatter over typed results; all retrieval and ranking decisions have
// already been made by the time a response reaches it.
package responder

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xhad/cdpchat/internal/models"
	"github.com/xhad/cdpchat/pkg/chunker"
)

const (
	fallbackNoAnswer = "I couldn't find specific information to answer your question. " +
		"Could you try rephrasing or asking a different question?"
	fallbackNoComparison = "I couldn't find specific information to compare the CDP platforms " +
		"based on your question. Could you try asking a more specific comparison question?"
)

var (
	numberedStepPattern = regexp.MustCompile(`\d+\.\s+`)
	bulletStepPattern   = regexp.MustCompile(`[*\-]\s+`)
)

// displayNames maps the lowercase platform identifiers to their branded
// spellings.
var displayNames = map[string]string{
	models.PlatformSegment:   "Segment",
	models.PlatformMParticle: "mParticle",
	models.PlatformLytics:    "Lytics",
	models.PlatformZeotap:    "Zeotap",
}

type Responder struct{}

func New() *Responder {
	return &Responder{}
}

// Generate renders a query response as the final chat text.
func (r *Responder) Generate(resp models.QueryResponse) string {
	switch resp.Type {
	case models.ResponseTypeError, models.ResponseTypeIrrelevant, models.ResponseTypeNoResults:
		return resp.Message
	case models.ResponseTypeComparison:
		return r.comparisonResponse(resp)
	default:
		return r.regularResponse(resp)
	}
}

func (r *Responder) regularResponse(resp models.QueryResponse) string {
	if len(resp.Results) == 0 {
		return fallbackNoAnswer
	}

	platform := platformName(resp.Analysis.Platform)
	top := resp.Results[0]

	var b strings.Builder
	if resp.Analysis.QueryType == models.QueryTypeHowTo {
		steps := extractSteps(top.Content)
		if len(steps) >= 2 {
			fmt.Fprintf(&b, "Here's how to do that in %s:\n\n", platform)
			for i, step := range steps {
				fmt.Fprintf(&b, "%d. %s\n", i+1, step)
			}
		} else {
			fmt.Fprintf(&b, "Here's information on how to do that in %s:\n\n%s\n", platform, top.Content)
		}
	} else {
		fmt.Fprintf(&b, "Here's information about that from %s:\n\n%s\n", platform, top.Content)
	}

	fmt.Fprintf(&b, "\n%s\n", sourceReference(top.Metadata))

	if len(resp.Results) > 1 {
		b.WriteString("\nI found some additional information that might be helpful:\n\n")
		for i, result := range resp.Results[1:min(3, len(resp.Results))] {
			fmt.Fprintf(&b, "**Additional Information %d**:\n%s\n\n", i+1, truncate(result.Content, 200))
			fmt.Fprintf(&b, "%s\n\n", sourceReference(result.Metadata))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *Responder) comparisonResponse(resp models.QueryResponse) string {
	populated := 0
	for _, results := range resp.Comparison {
		if len(results) > 0 {
			populated++
		}
	}
	if populated == 0 {
		if resp.Message != "" {
			return resp.Message
		}
		return fallbackNoComparison
	}

	feature := resp.Analysis.Feature
	if feature == "" {
		feature = "this feature"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's a comparison of how different CDPs handle %s:\n\n", feature)

	// Iterate in the analysis platform order so the layout is stable; map
	// iteration order would shuffle sections between identical requests.
	for _, platform := range orderedPlatforms(resp) {
		results := resp.Comparison[platform]
		fmt.Fprintf(&b, "**%s**:\n", platformName(platform))
		if len(results) == 0 {
			b.WriteString("I couldn't find specific information about this platform.\n\n")
			continue
		}
		top := results[0]
		fmt.Fprintf(&b, "%s\n\n", truncate(top.Content, 300))
		fmt.Fprintf(&b, "%s\n\n", sourceReference(top.Metadata))
	}

	b.WriteString("\n**Summary**:\n")
	fmt.Fprintf(&b, "Each CDP platform has its own approach to %s. ", feature)
	if populated >= 2 {
		b.WriteString("Consider your specific requirements when choosing between them.")
	} else {
		b.WriteString("I could only find detailed information for some of the platforms. " +
			"Consider checking the official documentation for more details.")
	}

	return b.String()
}

// extractSteps pulls an ordered step list out of chunk content: a numbered
// list first, then a bulleted list, then sentences longer than 20 characters
// when neither list form yields at least two steps.
func extractSteps(content string) []string {
	if steps := splitSteps(numberedStepPattern, content); len(steps) >= 2 {
		return steps
	}
	if steps := splitSteps(bulletStepPattern, content); len(steps) >= 2 {
		return steps
	}

	var steps []string
	for _, sentence := range chunker.SplitSentences(content) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 20 {
			steps = append(steps, sentence)
		}
	}
	return steps
}

// splitSteps captures the text following each list marker up to the next
// marker or end of content. Prose before the first marker is not a step.
func splitSteps(marker *regexp.Regexp, content string) []string {
	locs := marker.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	steps := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if step := strings.TrimSpace(content[loc[1]:end]); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

func sourceReference(md models.Metadata) string {
	platform := platformName(md.Platform)
	title := md.Title
	if title == "" {
		title = "Documentation"
	}
	if md.URL != "" {
		return fmt.Sprintf("Source: %s - [%s](%s)", platform, title, md.URL)
	}
	return fmt.Sprintf("Source: %s - %s", platform, title)
}

func platformName(platform string) string {
	if name, ok := displayNames[platform]; ok {
		return name
	}
	if platform == "" {
		return "the CDP"
	}
	return strings.ToUpper(platform[:1]) + platform[1:]
}

func orderedPlatforms(resp models.QueryResponse) []string {
	ordered := make([]string, 0, len(resp.Comparison))
	for _, platform := range resp.Analysis.Platforms {
		if _, ok := resp.Comparison[platform]; ok {
			ordered = append(ordered, platform)
		}
	}
	// Platforms present in the result map but absent from the analysis (a
	// caller-assembled response) still get rendered, appended in fixed order.
	for _, platform := range models.AllPlatforms() {
		if _, ok := resp.Comparison[platform]; ok && !contains(ordered, platform) {
			ordered = append(ordered, platform)
		}
	}
	return ordered
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back up to a rune boundary so the cut never emits invalid UTF-8.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "..."
}
