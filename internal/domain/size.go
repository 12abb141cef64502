package domain

import (
	"sort"
	"strings"
)

// sizeOrder ranks the apparel sizes the storefront sells so option lists
// come out in the order shoppers expect.
var sizeOrder = map[string]int{
	"xxs": 0, "xs": 1, "s": 2, "m": 3, "l": 4, "xl": 5, "xxl": 6, "xxxl": 7,
}

// NormalizeSize returns the canonical (lower-case, trimmed) form of a size.
func NormalizeSize(size string) string {
	return strings.ToLower(strings.TrimSpace(size))
}

// DisplaySize returns the size as shown to shoppers.
func DisplaySize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}

// EligibleSizes normalizes a purchased-size list: canonical form, blanks
// dropped, duplicates removed, first occurrence order kept.
func EligibleSizes(sizes []string) []string {
	out := make([]string, 0, len(sizes))
	seen := make(map[string]struct{}, len(sizes))
	for _, s := range sizes {
		n := NormalizeSize(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// DefaultSize is the size a new review starts with: the first eligible one.
func DefaultSize(sizes []string) (string, bool) {
	eligible := EligibleSizes(sizes)
	if len(eligible) == 0 {
		return "", false
	}
	return eligible[0], true
}

// ContainsSize reports whether size is one of sizes, ignoring case.
func ContainsSize(sizes []string, size string) bool {
	n := NormalizeSize(size)
	for _, s := range sizes {
		if NormalizeSize(s) == n {
			return true
		}
	}
	return false
}

// SortSizes orders sizes by apparel order, unknown sizes last alphabetically.
func SortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool {
		ri, iok := sizeOrder[NormalizeSize(sizes[i])]
		rj, jok := sizeOrder[NormalizeSize(sizes[j])]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return sizes[i] < sizes[j]
		}
	})
}
