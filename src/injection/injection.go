// Package injection detects known instruction-override phrasings in
// extracted text. The catalog is a static immutable table compiled at
// process start; scanning is a pure function of the input text.
package injection

import "regexp"

// Pattern pairs a stable identifier with a compiled case-insensitive
// regular expression. Identifiers appear in reports and must not change
// between releases.
type Pattern struct {
	ID string
	re *regexp.Regexp
}

// Source returns the regular expression source text.
func (p Pattern) Source() string { return p.re.String() }

func mustPattern(id, expr string) Pattern {
	return Pattern{ID: id, re: regexp.MustCompile("(?i)" + expr)}
}

// catalog is the built-in set of instruction-override phrasings, checked
// in order on every scan. Sourced from phrasings observed in documents
// crafted against LLM pipelines and from common chat-template tokens.
var catalog = []Pattern{
	mustPattern("ignore-previous", `ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|commands?|context)`),
	mustPattern("disregard-above", `disregard\s+(all\s+)?(the\s+)?(previous|prior|above)`),
	mustPattern("forget-everything", `forget\s+(everything|all|your)\b`),
	mustPattern("you-are-now", `you\s+are\s+now\b`),
	mustPattern("from-now-on", `from\s+now\s+on,?\s+you\s+(are|will|must|should)`),
	mustPattern("new-instructions", `new\s+(instructions?|prompts?|commands?)\s*:?`),
	mustPattern("debug-mode", `\bdebug\s+mode\b`),
	mustPattern("system-prompt", `system\s+prompt`),
	mustPattern("system-role", `\bsystem\s*:\s*`),
	mustPattern("assistant-role", `\bassistant\s*:\s*`),
	mustPattern("pretend-to-be", `pretend\s+(to\s+be|you\s+are)`),
	mustPattern("act-as", `\bact\s+as\s+(if|a|an)\b`),
	mustPattern("override-instructions", `override\s+(previous|prior|all|your|settings?|instructions?)`),
	mustPattern("chat-template-token", `<\|?(im_start|system)\|?>`),
	mustPattern("inst-tag", `\[/?INST\]`),
	mustPattern("sys-tag", `<</?SYS>>`),
}

// Catalog returns the built-in patterns in scan order.
func Catalog() []Pattern {
	out := make([]Pattern, len(catalog))
	copy(out, catalog)
	return out
}

// Scan checks text against the whole catalog and returns the IDs of
// matched patterns, in catalog order. An empty input matches nothing.
func Scan(text string) []string {
	if text == "" {
		return nil
	}
	var matched []string
	for _, p := range catalog {
		if p.re.MatchString(text) {
			matched = append(matched, p.ID)
		}
	}
	return matched
}
