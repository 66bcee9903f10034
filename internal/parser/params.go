package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxParams is the largest number of parameters a single command may take.
const MaxParams = 10

// Parameter type letters used in command signatures.
const (
	typeInteger = 'I' // Bare token: numbers and tags
	typeString  = 'S' // Double-quoted text, quotes stripped
)

// splitStatement breaks `name(p1,"p2",...)` into its command name, the
// parameter values and the signature string ("IS" for Integer-String).
func splitStatement(stmt string) (name string, args []string, sig string, err error) {
	open := strings.IndexByte(stmt, '(')
	if open < 0 {
		return stmt, nil, "", nil
	}
	name = stmt[:open]
	rest := stmt[open+1:]
	if !strings.HasSuffix(rest, ")") {
		return name, nil, "", fmt.Errorf("%w in '%s'", errMissingParen, stmt)
	}
	inner := rest[:len(rest)-1]
	if inner == "" {
		return name, nil, "", nil
	}

	fields := splitFields(inner)
	if len(fields) > MaxParams {
		return name, nil, "", fmt.Errorf("%w: %d (max %d)", errTooManyParams, len(fields), MaxParams)
	}

	var sb strings.Builder
	args = make([]string, 0, len(fields))
	for _, f := range fields {
		switch {
		case len(f) >= 2 && f[0] == '"' && f[len(f)-1] == '"':
			sb.WriteByte(typeString)
			args = append(args, f[1:len(f)-1])
		case strings.ContainsRune(f, '"'):
			return name, nil, "", fmt.Errorf("%w in parameter %s", errMalformedQuoting, f)
		default:
			sb.WriteByte(typeInteger)
			args = append(args, f)
		}
	}
	return name, args, sb.String(), nil
}

// splitFields splits on commas that are not inside a quoted string.
func splitFields(s string) []string {
	var fields []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				fields = append(fields, s[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, s[start:])
}

// atoi converts a bare parameter to an integer.
func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w, got '%s'", errBadInteger, s)
	}
	return n, nil
}

// atois converts every bare parameter in args.
func atois(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := atoi(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
