// Package idalloc proposes the next sequential requirement id for a
// project. Proposals are advisory; the store enforces uniqueness on commit.
package idalloc

import (
	"fmt"
	"regexp"
	"strconv"
)

// Width is the minimum number of digits in a proposed id.
const Width = 3

// ProposeNextID scans existing for ids of the form PREFIX-<digits> (prefix
// matched case-insensitively), and returns PREFIX-<max+1> zero-padded to
// Width digits. It returns PREFIX-001 when nothing matches. Ids that do not
// match the pattern are ignored. The result is never a member of existing.
func ProposeNextID(existing map[string]struct{}, prefix string) string {
	pattern := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)

	var highest uint64
	for id := range existing {
		m := pattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			// Out of range; a larger counter cannot collide with it.
			continue
		}
		if n > highest {
			highest = n
		}
	}

	next := highest + 1
	for {
		id := format(prefix, next)
		if _, taken := existing[id]; !taken {
			return id
		}
		next++
	}
}

func format(prefix string, n uint64) string {
	return fmt.Sprintf("%s-%0*d", prefix, Width, n)
}
