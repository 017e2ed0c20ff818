package httpparse

// Small ASCII byte-slice helpers in the teacher's zero-allocation style
// (see http11/method.go, http11/header.go): explicit byte comparisons
// instead of bytes.EqualFold/strings.ToLower, which would allocate or
// walk the whole string twice.

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func toLowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func equalFoldASCII(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if toLowerByte(b[i]) != toLowerByte(s[i]) {
			return false
		}
	}
	return true
}

func hasPrefixFoldASCII(b []byte, prefix string) bool {
	if len(b) < len(prefix) {
		return false
	}
	return equalFoldASCII(b[:len(prefix)], prefix)
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
