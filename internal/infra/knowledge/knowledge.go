// Package knowledge is the static banking knowledge base behind the
// assistant's context tool. Articles are markdown documents split into
// "## " sections; retrieval scores sections by normalized keyword overlap
// and returns the best ones, bounded by a total context budget.
package knowledge

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Article is one knowledge-base document.
type Article struct {
	ID         int
	Tags       []string
	Annotation string
	Body       string // markdown, sections begin with "## "
}

// Result is one retrieved section with its article metadata, in the shape
// the assistant hands to the model.
type Result struct {
	ArticleID  int      `json:"article_id"`
	Annotation string   `json:"article_annotation"`
	Tags       []string `json:"article_tags"`
	Section    string   `json:"section"`
}

// contextMaxLength bounds the total size of returned sections.
const contextMaxLength = 10000

// stemLen is the crude normalization length: Russian inflection lives in
// the suffix ("карта", "карте", "картой"), so comparing the first four
// runes of each word is enough for a static corpus of this size.
const stemLen = 4

var sectionStart = regexp.MustCompile(`(?m)^##\s`)

// Search returns the sections most relevant to query, best first. A query
// sharing no vocabulary with the corpus returns nil.
func Search(query string) []Result {
	qstems := stems(query)
	if len(qstems) == 0 {
		return nil
	}

	type scored struct {
		Result
		score int
		order int
	}

	var candidates []scored
	order := 0
	for _, a := range Articles {
		tagStems := map[string]bool{}
		for _, t := range a.Tags {
			for s := range stems(t) {
				tagStems[s] = true
			}
		}

		for _, sec := range sections(a.Body) {
			secStems := stems(sec)
			score := 0
			for s := range qstems {
				if secStems[s] {
					score++
				}
				if tagStems[s] {
					score += 2
				}
			}
			if score > 0 {
				candidates = append(candidates, scored{
					Result: Result{
						ArticleID:  a.ID,
						Annotation: a.Annotation,
						Tags:       a.Tags,
						Section:    sec,
					},
					score: score,
					order: order,
				})
			}
			order++
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	var out []Result
	total := 0
	for _, c := range candidates {
		if total+len(c.Section) > contextMaxLength {
			break
		}
		total += len(c.Section)
		out = append(out, c.Result)
	}
	return out
}

// sections splits a markdown body at "## " headings, preamble included.
func sections(body string) []string {
	idx := sectionStart.FindAllStringIndex(body, -1)
	if len(idx) == 0 {
		return []string{strings.TrimSpace(body)}
	}

	var out []string
	start := 0
	for _, m := range idx {
		if s := strings.TrimSpace(body[start:m[0]]); s != "" {
			out = append(out, s)
		}
		start = m[0]
	}
	if s := strings.TrimSpace(body[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// stems tokenizes text into a set of lowercase word prefixes.
func stems(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]bool, len(words))
	for _, w := range words {
		r := []rune(w)
		if len(r) < 3 {
			continue
		}
		if len(r) > stemLen {
			r = r[:stemLen]
		}
		set[string(r)] = true
	}
	return set
}
