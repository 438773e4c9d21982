package glob

// Match reports whether str matches the wildcard pattern.
// '*' matches any run of characters, '?' matches a single character.
func Match(pattern, str string) (bool, error) {
	return wildcardMatch(pattern, str), nil
}

// IsGlob returns true when the pattern contains wildcard characters.
func IsGlob(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*', '?':
			return true
		}
	}
	return false
}

func wildcardMatch(pattern, str string) bool {
	p, s := 0, 0
	star, mark := -1, 0
	for s < len(str) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == str[s]):
			p++
			s++
		case p < len(pattern) && pattern[p] == '*':
			star = p
			mark = s
			p++
		case star >= 0:
			p = star + 1
			mark++
			s = mark
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
