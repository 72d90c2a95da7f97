// Package normalizer canonicalizes active pharmaceutical ingredient (API)
// names into lexical variant sets used for fuzzy matching against scraped
// patent and supplier text.
package normalizer

import (
	"strings"
	"unicode"
)

// saltSuffixes lists salt-form suffixes in strip order.  Only the first match
// is removed.
var saltSuffixes = []string{
	"hcl",
	"hydrochloride",
	"sulfate",
	"phosphate",
	"tartrate",
	"maleate",
	"fumarate",
	"citrate",
	"succinate",
	"acetate",
}

// stripPrefixes lists stereochemistry and nomenclature prefixes whose removal
// yields an additional matchable form.
var stripPrefixes = []string{"iso", "des", "levo", "d-", "l-", "nor", "de", "di"}

// Normalize lowercases and trims apiName and strips a trailing salt suffix.
// It returns the salt-stripped base name and the full normalized name.
// Normalize("Sitagliptin Phosphate") = ("sitagliptin", "sitagliptin phosphate").
// The suffix must be a separate word; a single-word name that merely ends in
// a salt string ("clopidogrel bisulfate") is left intact.
func Normalize(apiName string) (base, full string) {
	full = strings.ToLower(strings.TrimSpace(apiName))
	base = full
	for _, suffix := range saltSuffixes {
		if strings.HasSuffix(base, " "+suffix) {
			base = strings.TrimSpace(strings.TrimSuffix(base, " "+suffix))
			break
		}
	}
	return base, full
}

// alnumOnly projects s onto its alphanumeric runes.
func alnumOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Variants derives the lexical variant set for apiName.  Every member is
// lowercase with no leading or trailing whitespace; empty strings are
// filtered out.  The set is used only for substring membership tests, so no
// ordering is defined.
//
// Derivation, building on Normalize:
//   - the base and full names;
//   - the alphanumeric-only projection of the base name;
//   - prefix-stripped forms for the fixed prefix list, when stripping changes
//     the name and leaves it non-empty;
//   - for cleaned names ending in "azole" and longer than 6 runes, the last 8
//     characters and the "azole"->"conazole" substitution;
//   - for cleaned names longer than 6 runes, the name minus its last 2
//     characters, and its last 6 characters.
//
// Short names (<=6 characters) contribute no truncated forms so the set never
// holds 1-2 character fragments that would match everywhere.
func Variants(apiName string) map[string]struct{} {
	base, full := Normalize(apiName)
	out := make(map[string]struct{}, 8)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			out[s] = struct{}{}
		}
	}

	add(base)
	add(full)

	cleaned := alnumOnly(base)
	add(cleaned)

	for _, candidate := range []string{base, cleaned} {
		for _, prefix := range stripPrefixes {
			if strings.HasPrefix(candidate, prefix) {
				stripped := candidate[len(prefix):]
				if stripped != "" && stripped != candidate {
					add(stripped)
				}
			}
		}
	}

	if strings.HasSuffix(cleaned, "azole") && len(cleaned) > 6 {
		if len(cleaned) >= 8 {
			add(cleaned[len(cleaned)-8:])
		}
		add(strings.TrimSuffix(cleaned, "azole") + "conazole")
	}

	if len(cleaned) > 6 {
		add(cleaned[:len(cleaned)-2])
		add(cleaned[len(cleaned)-6:])
	}

	return out
}

// VariantList returns Variants as a slice for callers that need to iterate
// deterministically in tests or build search queries.
func VariantList(apiName string) []string {
	set := Variants(apiName)
	list := make([]string, 0, len(set))
	for v := range set {
		list = append(list, v)
	}
	return list
}

// searchQueryTemplates are the synthesis-focused phrasings each name
// variation is expanded through.  %s is the variation.
var searchQueryTemplates = []string{
	"synthesis of %s",
	"preparation of %s",
	"chemical synthesis %s",
	"synthetic route %s",
	"manufacturing process %s",
	"process for preparing %s",
	"method of making %s",
	"synthetic pathway %s",
	"chemical process %s",
	"%s synthesis patent",
	"%s manufacturing patent",
	"%s preparation method",
	"active ingredient %s synthesis",
	"pharmaceutical synthesis %s",
}

// SearchQueries expands apiName into patent-search query strings.  Beyond the
// base and full names, iso/des-stripped forms and azole-root substitutions
// join the variation list before template expansion.  Duplicates are dropped,
// first occurrence wins.
func SearchQueries(apiName string) []string {
	base, full := Normalize(apiName)

	variations := []string{base, full}
	if strings.Contains(base, "iso") {
		variations = append(variations, strings.ReplaceAll(base, "iso", ""))
	}
	if strings.Contains(base, "des") {
		variations = append(variations, strings.ReplaceAll(base, "des", ""))
	}
	if strings.HasSuffix(base, "azole") {
		root := strings.TrimSuffix(base, "azole")
		variations = append(variations, root+"conazole", root+"fluconazole")
	}

	seen := make(map[string]struct{})
	var queries []string
	for _, name := range variations {
		if name == "" {
			continue
		}
		for _, tmpl := range searchQueryTemplates {
			q := strings.Replace(tmpl, "%s", name, 1)
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			queries = append(queries, q)
		}
	}
	return queries
}

//Personal.AI order the ending
