package archive

import "strings"

// matchGlob reports whether path matches pattern, supporting `*`
// (any run within a path segment), `?` (one byte, so a multi-byte
// UTF-8 character is not matched by a single `?`) and `**` (any run
// across segment boundaries, including none). Matching is
// case-insensitive and `/`-separated (§3.3, §4.2).
func matchGlob(pattern, path string) bool {
	return matchGlobSegments(strings.ToLower(pattern), strings.ToLower(path))
}

func matchGlobSegments(pattern, s string) bool {
	if strings.Contains(pattern, "**") {
		return matchDoubleStar(pattern, s)
	}
	return matchSingle(pattern, s)
}

// matchDoubleStar splits pattern on the first "**" and recursively
// tries every split point of s for the trailing half.
func matchDoubleStar(pattern, s string) bool {
	idx := strings.Index(pattern, "**")
	prefix, suffix := pattern[:idx], pattern[idx+2:]
	suffix = strings.TrimPrefix(suffix, "/")
	prefix = strings.TrimSuffix(prefix, "/")

	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '/' && i != 0 {
			continue
		}
		head, tail := s[:i], s[i:]
		tail = strings.TrimPrefix(tail, "/")
		if prefix == "" || matchSingle(prefix, head) {
			// The "**" consumes zero or more whole leading segments of tail.
			for j := 0; j <= len(tail); j++ {
				if (j == 0 || j == len(tail) || tail[j-1] == '/') && (suffix == "" || matchGlobSegments(suffix, tail[j:])) {
					return true
				}
			}
		}
	}
	return prefix == "" && suffix == "" && s == ""
}

// matchSingle matches pattern containing only `*` and `?` (no `**`)
// against s using a standard greedy-backtracking wildcard matcher.
func matchSingle(pattern, s string) bool {
	var pi, si int
	var starIdx = -1
	var matchIdx int
	for si < len(s) {
		if pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == s[si]) {
			pi++
			si++
		} else if pi < len(pattern) && pattern[pi] == '*' {
			starIdx = pi
			matchIdx = si
			pi++
		} else if starIdx != -1 && s[matchIdx] != '/' {
			pi = starIdx + 1
			matchIdx++
			si = matchIdx
		} else {
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
