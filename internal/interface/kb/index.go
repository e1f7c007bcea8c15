// Package kb parses the curated knowledge file into typed sections and
// serves section lookups and relevance-scored snippet retrieval.
package kb

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
)

var (
	blockSplitRe = regexp.MustCompile(`(?m)^\s*#\s*`)
	propTagRe    = regexp.MustCompile(`@property:([A-Za-z0-9\-_\.]+)`)
	langTagRe    = regexp.MustCompile(`(?i)@lang:([a-z]{2})`)
	kvLineRe     = regexp.MustCompile(`^[A-Z_]+:`)
	queryTokenRe = regexp.MustCompile(`[a-zà-ù0-9]+`)
)

// itemPenalty de-prioritizes list-heavy sections in snippet scoring.
const itemPenalty = 0.05

// Index is the in-memory knowledge base. It is built once from the
// knowledge file and read-only afterwards.
type Index struct {
	sections []entity.Section
	logger   logger.Logger
}

var _ repository.KnowledgeIndex = (*Index)(nil)

// Load reads and parses the knowledge file. A missing file yields an
// empty index, not an error: the chat flow then simply has no local
// knowledge and falls back to the AI collaborator.
func Load(path string, log logger.Logger) *Index {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Knowledge file not readable, starting with empty index", "path", path, "error", err)
		return &Index{logger: log}
	}
	idx := &Index{sections: parseSections(string(raw)), logger: log}
	log.Info("Knowledge base loaded", "path", path, "sections", len(idx.sections))
	return idx
}

// NewIndex builds an index directly from raw text.
func NewIndex(raw string, log logger.Logger) *Index {
	return &Index{sections: parseSections(raw), logger: log}
}

// parseSections splits the raw text on lines beginning with '#'. The
// first line of each block is the section name; the rest is classified
// into scope tags, KEY: value pairs, bullet items and free text.
func parseSections(raw string) []entity.Section {
	var out []entity.Section
	for _, block := range blockSplitRe.Split(raw, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.SplitN(block, "\n", 2)
		name := strings.ToUpper(strings.TrimSpace(lines[0]))
		rest := ""
		if len(lines) > 1 {
			rest = strings.TrimSpace(lines[1])
		}

		sec := entity.Section{
			Name: name,
			Lang: "it",
			KV:   make(map[string]string),
		}
		if m := propTagRe.FindStringSubmatch(rest); m != nil {
			sec.Property = m[1]
		}
		if m := langTagRe.FindStringSubmatch(rest); m != nil {
			sec.Lang = strings.ToLower(m[1])
		}

		var textLines []string
		for _, line := range strings.Split(rest, "\n") {
			line = strings.TrimRight(line, " \t")
			switch {
			case strings.HasPrefix(line, "@"):
				continue
			case kvLineRe.MatchString(line):
				k, v, _ := strings.Cut(line, ":")
				sec.KV[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
			case strings.HasPrefix(line, "-"):
				sec.Items = append(sec.Items, strings.TrimSpace(line[1:]))
			default:
				textLines = append(textLines, line)
			}
		}
		sec.Text = strings.TrimSpace(strings.Join(textLines, "\n"))
		out = append(out, sec)
	}
	return out
}

// FindSection implements the three-tier fallback: exact (name,
// property, lang), then (name, property), then name alone.
func (i *Index) FindSection(name, propertyID, lang string) (entity.Section, bool) {
	name = strings.ToUpper(name)
	for _, s := range i.sections {
		if s.Name == name && s.Property == propertyID && s.Lang == lang {
			return s, true
		}
	}
	for _, s := range i.sections {
		if s.Name == name && s.Property == propertyID {
			return s, true
		}
	}
	for _, s := range i.sections {
		if s.Name == name {
			return s, true
		}
	}
	return entity.Section{}, false
}

// SnippetsFor scores each candidate section by the count of distinct
// query tokens found as substrings of its body, minus a small penalty
// per bullet item, and returns the topK bodies with positive score.
func (i *Index) SnippetsFor(query, propertyID, lang string, topK int) []string {
	q := strings.ToLower(query)
	tokens := make(map[string]struct{})
	for _, tok := range queryTokenRe.FindAllString(q, -1) {
		tokens[tok] = struct{}{}
	}

	type scored struct {
		score float64
		body  string
	}
	var candidates []scored
	for _, s := range i.sections {
		if s.Property != "" && s.Property != propertyID {
			continue
		}
		if s.Lang != lang {
			continue
		}
		body := sectionBody(s)
		if body == "" {
			continue
		}
		lower := strings.ToLower(body)
		score := 0.0
		for tok := range tokens {
			if strings.Contains(lower, tok) {
				score++
			}
		}
		score -= itemPenalty * float64(len(s.Items))
		if score > 0 {
			candidates = append(candidates, scored{score, body})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.body)
	}
	return out
}

// sectionBody concatenates name, KV pairs, free text and items into
// the text block served as a snippet.
func sectionBody(s entity.Section) string {
	var parts []string
	parts = append(parts, s.Name)
	kvKeys := make([]string, 0, len(s.KV))
	for k := range s.KV {
		kvKeys = append(kvKeys, k)
	}
	sort.Strings(kvKeys)
	for _, k := range kvKeys {
		parts = append(parts, k+": "+s.KV[k])
	}
	if s.Text != "" {
		parts = append(parts, s.Text)
	}
	parts = append(parts, s.Items...)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
