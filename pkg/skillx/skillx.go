// Package skillx provides skill and keyword normalization used across the
// project. It canonicalizes raw skill input (delimited strings or lists)
// into comparable sets of lowercase, trimmed tokens.
package skillx

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Split breaks a delimited skill string into raw tokens. Commas,
// semicolons, pipes and newlines all act as delimiters.
func Split(raw string) []string {
	f := func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n' || r == '\r'
	}
	return strings.FieldsFunc(raw, f)
}

// Normalize canonicalizes a list of raw skills into a sorted set:
// lowercase, whitespace-trimmed, empties dropped, duplicates removed.
// Empty or nil input yields an empty set, never an error.
func Normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		t := strings.ToLower(strings.TrimSpace(s))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// NormalizeString splits a delimited string and normalizes the tokens.
func NormalizeString(raw string) []string {
	return Normalize(Split(raw))
}

// coreSkillCount is how many leading required skills count as core.
const coreSkillCount = 3

// SplitBands divides an internship's ordered required-skills list into its
// core band (first three entries) and optional band (the rest), each
// normalized independently so band membership survives normalization.
func SplitBands(required []string) (core, optional []string) {
	if len(required) <= coreSkillCount {
		return Normalize(required), []string{}
	}
	return Normalize(required[:coreSkillCount]), Normalize(required[coreSkillCount:])
}

// Intersect returns the sorted intersection of two normalized sets.
func Intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0)
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Subtract returns the sorted elements of a that are not in b.
func Subtract(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0)
	for _, s := range a {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

var stopWords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {},
	"into": {}, "that": {}, "this": {}, "are": {}, "was": {},
	"has": {}, "have": {}, "will": {}, "its": {}, "our": {},
	"you": {}, "your": {}, "not": {}, "but": {}, "all": {},
}

// Keywords extracts comparison keywords from free text: lowercase tokens
// longer than two characters with stop words removed, deduplicated and
// sorted.
func Keywords(text string) []string {
	f := func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, tok := range strings.FieldsFunc(text, f) {
		t := strings.ToLower(tok)
		if len(t) <= 2 {
			continue
		}
		if _, ok := stopWords[t]; ok {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AliasTable maps non-canonical skill spellings to their canonical form
// (e.g. "golang" -> "go"). Keys and values are compared post-Normalize.
type AliasTable map[string]string

// LoadAliasTable reads a YAML alias file. A missing path returns an empty
// table rather than an error so the table stays optional.
func LoadAliasTable(path string) (AliasTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AliasTable{}, nil
		}
		return nil, fmt.Errorf("op=skillx.load_aliases: %w", err)
	}
	var t AliasTable
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("op=skillx.load_aliases: %w", err)
	}
	norm := make(AliasTable, len(t))
	for k, v := range t {
		norm[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	return norm, nil
}

// Apply rewrites each normalized skill through the alias table and
// re-normalizes, collapsing aliases onto their canonical spelling.
func (t AliasTable) Apply(skills []string) []string {
	if len(t) == 0 {
		return skills
	}
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if canon, ok := t[s]; ok {
			out = append(out, canon)
			continue
		}
		out = append(out, s)
	}
	return Normalize(out)
}
