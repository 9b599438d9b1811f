package domain

import (
	"sort"
	"strings"
)

// ToggleBlockedCountry adds the code to the blocked set or removes it when
// already present. Applying it twice restores the original set.
func (r *ProjectRecord) ToggleBlockedCountry(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	var blocked bool
	r.Compliance.BlockedCountries, blocked = toggle(r.Compliance.BlockedCountries, code)
	return blocked
}

// ToggleMarketingChannel flips membership of a distribution channel.
func (r *ProjectRecord) ToggleMarketingChannel(channel string) bool {
	channel = strings.TrimSpace(channel)
	var member bool
	r.Distribution.MarketingChannels, member = toggle(r.Distribution.MarketingChannels, channel)
	return member
}

func toggle(set []string, v string) ([]string, bool) {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, s := range set {
		if s == v {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, !found
}

func normalizeSet(in []string, canon func(string) string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if canon != nil {
			v = canon(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
