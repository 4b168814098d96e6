package utils

import (
	"sort"
	"strconv"
	"strings"
)

// DetermineLocale picks a supported locale from an explicit query value, then
// the Accept-Language header by q-value, then def. Region subtags are reduced
// to their base language ("es-CO" -> "es").
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := map[string]struct{}{}
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}
	pick := func(lang string) (string, bool) {
		l := strings.ToLower(strings.TrimSpace(lang))
		if l == "" {
			return "", false
		}
		if _, ok := sup[l]; ok {
			return l, true
		}
		if i := strings.IndexAny(l, "-_"); i > 0 {
			if _, ok := sup[l[:i]]; ok {
				return l[:i], true
			}
		}
		return "", false
	}

	if v, ok := pick(queryLang); ok {
		return v
	}

	type cand struct {
		lang string
		q    float64
	}
	var cands []cand
	for _, part := range strings.Split(acceptLang, ",") {
		lang, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := 1.0
		if k, v, found := strings.Cut(strings.TrimSpace(params), "="); found && strings.TrimSpace(k) == "q" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || f < 0 || f > 1 {
				continue
			}
			q = f
		}
		if q == 0 {
			continue
		}
		if l, ok := pick(lang); ok {
			cands = append(cands, cand{lang: l, q: q})
		}
	}
	if len(cands) > 0 {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
		return cands[0].lang
	}
	if v, ok := pick(def); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "en"
}
