package aggregate

import (
	"sort"
	"strings"

	"github.com/cadencehq/sprintpulse/internal/activity"
)

// minSnippetLen filters out fragments too short to identify a blocker.
const minSnippetLen = 5

// chainMinDays is how many distinct calendar days a complaint must recur on
// before it counts as a persistent blocker.
const chainMinDays = 3

// DetectBlockerChains groups blocker text by (member, normalized snippet) and
// returns the chains that recur on at least chainMinDays distinct days within
// the given entries (callers pass the 7-day lookback window).
func DetectBlockerChains(entries []activity.StandupEntry) []BlockerChain {
	type chainKey struct {
		user    string
		snippet string
	}
	type chainAcc struct {
		days     map[string]bool
		entryIDs []string
	}

	acc := make(map[chainKey]*chainAcc)
	var order []chainKey

	for _, e := range entries {
		if strings.TrimSpace(e.Blockers) == "" {
			continue
		}
		day := e.Date.Format("2006-01-02")
		for _, snippet := range normalizeSnippets(e.Blockers) {
			key := chainKey{user: e.UserID, snippet: snippet}
			c, ok := acc[key]
			if !ok {
				c = &chainAcc{days: make(map[string]bool)}
				acc[key] = c
				order = append(order, key)
			}
			c.days[day] = true
			c.entryIDs = append(c.entryIDs, e.ID)
		}
	}

	var chains []BlockerChain
	for _, key := range order {
		c := acc[key]
		if len(c.days) < chainMinDays {
			continue
		}
		chains = append(chains, BlockerChain{
			UserID:   key.user,
			Snippet:  key.snippet,
			Days:     len(c.days),
			EntryIDs: c.entryIDs,
		})
	}

	// Stable output order: longest-running chain first, snippet as tiebreak.
	sort.SliceStable(chains, func(i, j int) bool {
		if chains[i].Days != chains[j].Days {
			return chains[i].Days > chains[j].Days
		}
		return chains[i].Snippet < chains[j].Snippet
	})
	return chains
}

// normalizeSnippets splits free-form blocker text into comparable fragments:
// lowercase, whitespace collapsed, split on sentence-ish punctuation, short
// fragments dropped.
func normalizeSnippets(text string) []string {
	lowered := strings.ToLower(text)
	fragments := strings.FieldsFunc(lowered, func(r rune) bool {
		return r == '.' || r == ',' || r == ';' || r == '\n'
	})

	var out []string
	for _, f := range fragments {
		collapsed := strings.Join(strings.Fields(f), " ")
		if len(collapsed) > minSnippetLen {
			out = append(out, collapsed)
		}
	}
	return out
}

// standupQuality scores one day's standup completeness 0-100: a filled
// summary carries half the weight, progress and linked work the rest.
// Returns nil when there are no entries to judge.
func standupQuality(entries []activity.StandupEntry) *float64 {
	if len(entries) == 0 {
		return nil
	}
	var total float64
	for _, e := range entries {
		var score float64
		if strings.TrimSpace(e.SummaryToday) != "" {
			score += 50
		}
		if strings.TrimSpace(e.ProgressSinceYesterday) != "" {
			score += 30
		}
		if e.HasLinkedWork() {
			score += 20
		}
		total += score
	}
	avg := total / float64(len(entries))
	return &avg
}
