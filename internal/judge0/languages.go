package judge0

import (
	"strconv"
	"strings"
)

// LanguageTable maps lowercase language names and aliases to the
// execution service's canonical numeric language ids. Tables are built
// once and treated as immutable; a deployment targeting a different
// provider version injects its own table into the client.
type LanguageTable struct {
	aliases  map[string]int
	validIDs map[int]bool
	fallback int
}

func NewLanguageTable(aliases map[string]int, fallbackID int) LanguageTable {
	valid := make(map[int]bool, len(aliases))
	for _, id := range aliases {
		valid[id] = true
	}
	return LanguageTable{
		aliases:  aliases,
		validIDs: valid,
		fallback: fallbackID,
	}
}

// Resolve maps user-supplied language input to a canonical id. Numeric
// input already in the valid id set passes through unchanged; names and
// aliases match case-insensitively; anything unresolvable falls back to
// the configured default rather than failing the request.
func (t LanguageTable) Resolve(input string) int {
	input = strings.TrimSpace(input)

	if id, err := strconv.Atoi(input); err == nil {
		if t.validIDs[id] {
			return id
		}
		return t.fallback
	}

	if id, ok := t.aliases[strings.ToLower(input)]; ok {
		return id
	}

	return t.fallback
}

func (t LanguageTable) Fallback() int {
	return t.fallback
}

// DefaultLanguages returns the alias table for the stock Judge0 CE
// language set.
func DefaultLanguages(fallbackID int) LanguageTable {
	return NewLanguageTable(map[string]int{
		// Python
		"python":             71,
		"python3":            71,
		"python2":            70,
		"python (3.8.1)":     71,
		"python (3.11.2)":    92,
		"python (3.12.5)":    100,
		"python (2.7.17)":    70,
		// C
		"c":                  50,
		"c (gcc 9.2.0)":      50,
		"c (gcc 8.3.0)":      49,
		"c (gcc 7.4.0)":      48,
		"c (clang 7.0.1)":    75,
		// C++
		"cpp":                54,
		"c++":                54,
		"c++ (gcc 9.2.0)":    54,
		"c++ (gcc 8.3.0)":    53,
		"c++ (gcc 7.4.0)":    52,
		"c++ (clang 7.0.1)":  76,
		// Java
		"java":                    62,
		"java (openjdk 13.0.1)":   62,
		"java (jdk 17.0.6)":       91,
		// JavaScript / TypeScript
		"javascript":                    63,
		"js":                            63,
		"javascript (node.js 12.14.0)":  63,
		"javascript (node.js 18.15.0)":  93,
		"typescript":                    74,
		"typescript (3.7.4)":            74,
		"typescript (5.0.3)":            94,
		// C#
		"c#":     51,
		"csharp": 51,
		// Go
		"go":           60,
		"go (1.13.5)":  60,
		"go (1.18.5)":  95,
		"go (1.22.0)":  106,
		// Others
		"ruby":     72,
		"rust":     73,
		"php":      68,
		"swift":    83,
		"kotlin":   78,
		"scala":    81,
		"r":        80,
		"bash":     46,
		"perl":     85,
		"lua":      64,
		"haskell":  61,
		"sql":      82,
		"pascal":   67,
		"fortran":  59,
		"assembly": 45,
	}, fallbackID)
}
