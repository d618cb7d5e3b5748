package worker

import (
	"regexp"
	"strconv"
	"strings"
)

// SentimentResult is the structured outcome of parsing a free-form
// sentiment completion. When no markers are recognized the whole text lands
// in Explanation and the remaining fields keep their neutral defaults.
type SentimentResult struct {
	Overall     string
	Score       int
	Explanation string
}

var (
	sentimentMarkers   = []string{"SENTIMENT:", "Sentiment:", "sentiment:"}
	scoreMarkers       = []string{"SCORE:", "Score:", "score:"}
	explanationMarkers = []string{"EXPLANATION:", "Explanation:", "explanation:"}

	firstIntRe = regexp.MustCompile(`-?\d+`)
)

// ParseSentiment extracts the sentiment label, numeric score and explanation
// from model output. The parser is deliberately tolerant: it recognizes
// several case variants of each marker, takes the first integer-looking
// token as the score and treats the entire text as the explanation when no
// marker is present. It never fails; absent markers degrade to neutral
// defaults.
func ParseSentiment(text string) SentimentResult {
	res := SentimentResult{Overall: "neutral"}

	for _, marker := range sentimentMarkers {
		if _, after, ok := strings.Cut(text, marker); ok {
			line, _, _ := strings.Cut(after, "\n")
			line = strings.ToLower(strings.TrimSpace(line))
			switch {
			case strings.Contains(line, "bullish") || strings.Contains(line, "positive"):
				res.Overall = "bullish"
			case strings.Contains(line, "bearish") || strings.Contains(line, "negative"):
				res.Overall = "bearish"
			default:
				res.Overall = "neutral"
			}
			break
		}
	}

	for _, marker := range scoreMarkers {
		if _, after, ok := strings.Cut(text, marker); ok {
			line, _, _ := strings.Cut(after, "\n")
			if num := firstIntRe.FindString(line); num != "" {
				if v, err := strconv.Atoi(num); err == nil {
					res.Score = v
				}
			}
			break
		}
	}

	for _, marker := range explanationMarkers {
		if _, after, ok := strings.Cut(text, marker); ok {
			expl := strings.TrimSpace(after)
			// Stop at the first blank line.
			expl, _, _ = strings.Cut(expl, "\n\n")
			res.Explanation = expl
			break
		}
	}

	if res.Explanation == "" {
		res.Explanation = strings.TrimSpace(text)
	}
	return res
}

// ParseRiskOpportunities extracts the bulleted risk and opportunity lists
// from model output. Lines starting with "- " are collected under the most
// recent RISKS:/OPPORTUNITIES: header; text without headers yields two empty
// lists, never an error.
func ParseRiskOpportunities(text string) (risks, opportunities []string) {
	section := ""
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "RISKS:"):
			section = "risks"
		case strings.HasPrefix(line, "OPPORTUNITIES:"):
			section = "opportunities"
		case strings.HasPrefix(line, "- "):
			item := strings.TrimSpace(line[2:])
			if item == "" {
				continue
			}
			switch section {
			case "risks":
				risks = append(risks, item)
			case "opportunities":
				opportunities = append(opportunities, item)
			}
		}
	}
	return risks, opportunities
}
