package loader

// findBalancedBraces returns the substring of s starting at the first
// '{' at or after start, through its matching closing '}', honoring
// string literals (so a brace inside a quoted string is not counted).
// It returns ok=false if no balanced block is found.
func findBalancedBraces(s string, start int) (block string, end int, ok bool) {
	begin := -1
	depth := 0
	var quote byte
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			if begin == -1 {
				begin = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && begin != -1 {
					return s[begin : i+1], i + 1, true
				}
			}
		}
	}
	return "", -1, false
}
