package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cadencehq/sprintpulse/internal/activity"
)

// capacityWindowDays is the lookback for workload-imbalance detection.
const capacityWindowDays = 14

// DetectCapacitySignals evaluates each member's workload over the capacity
// window against fixed thresholds. Members can emit several signal types at
// once (an overloaded member can also be multi-blocked).
func DetectCapacitySignals(
	members []activity.Member,
	issues []activity.Issue,
	windowEntries []activity.StandupEntry,
	dayEnd time.Time,
	th Thresholds,
) []CapacitySignal {
	openByAssignee := make(map[string][]string)
	for _, issue := range issues {
		if issue.Open() && issue.AssigneeID != "" {
			openByAssignee[issue.AssigneeID] = append(openByAssignee[issue.AssigneeID], issue.ID)
		}
	}

	openIssue := make(map[string]bool)
	for _, issue := range issues {
		if issue.Open() {
			openIssue[issue.ID] = true
		}
	}

	// Per member: entries, distinct blocked linked issues, last entry date.
	type memberActivity struct {
		entryIDs  []string
		blocked   map[string]bool
		lastEntry time.Time
	}
	byMember := make(map[string]*memberActivity)
	for _, e := range windowEntries {
		ma, ok := byMember[e.UserID]
		if !ok {
			ma = &memberActivity{blocked: make(map[string]bool)}
			byMember[e.UserID] = ma
		}
		ma.entryIDs = append(ma.entryIDs, e.ID)
		if e.Date.After(ma.lastEntry) {
			ma.lastEntry = e.Date
		}
		if strings.TrimSpace(e.Blockers) != "" {
			for _, id := range e.LinkedIssueIDs {
				if openIssue[id] {
					ma.blocked[id] = true
				}
			}
		}
	}

	var signals []CapacitySignal
	for _, m := range members {
		open := openByAssignee[m.UserID]
		ma := byMember[m.UserID]

		blockedItems := 0
		var blockedIDs []string
		var entryIDs []string
		idleDays := capacityWindowDays
		if ma != nil {
			blockedItems = len(ma.blocked)
			for id := range ma.blocked {
				blockedIDs = append(blockedIDs, id)
			}
			sort.Strings(blockedIDs)
			entryIDs = ma.entryIDs
			idleDays = int(dayEnd.Sub(ma.lastEntry).Hours() / 24)
			if idleDays < 0 {
				idleDays = 0
			}
		}

		base := CapacitySignal{
			UserID:       m.UserID,
			MemberName:   m.Name,
			OpenItems:    len(open),
			BlockedItems: blockedItems,
			IdleDays:     idleDays,
			Thresholds:   th,
		}

		if len(open) > th.OverloadedOpenItems {
			s := base
			s.Type = SignalOverloaded
			s.EntryIDs = entryIDs
			s.WorkItemIDs = open
			s.Evidence = append(append([]string{}, entryIDs...), open...)
			s.Message = fmt.Sprintf("%s carries %d open items (threshold %d)", m.Name, len(open), th.OverloadedOpenItems)
			signals = append(signals, s)
		}
		if blockedItems >= th.MultiBlockedItems {
			s := base
			s.Type = SignalMultiBlocked
			s.EntryIDs = entryIDs
			s.WorkItemIDs = blockedIDs
			s.Evidence = append(append([]string{}, entryIDs...), blockedIDs...)
			s.Message = fmt.Sprintf("%s is blocked on %d items (threshold %d)", m.Name, blockedItems, th.MultiBlockedItems)
			signals = append(signals, s)
		}
		if len(open) == 0 && idleDays >= th.IdleDays {
			s := base
			s.Type = SignalIdle
			s.EntryIDs = entryIDs
			s.Evidence = entryIDs
			s.Message = fmt.Sprintf("%s has no open items and %d idle days (threshold %d)", m.Name, idleDays, th.IdleDays)
			signals = append(signals, s)
		}
	}
	return signals
}
