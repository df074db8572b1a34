package code

import (
	"fmt"
	"regexp"
	"strings"
)

var printCall = regexp.MustCompile(`print\((.*?)\)`)

const (
	sacredGeometryOutput = "Golden Ratio: 1.618034\nLotus Petals: [1, 1, 2, 3, 5]\n✨ Code executed with divine precision"
	pythonBlessing       = "✨ Sacred code executed successfully with divine blessings"
)

// Simulate produces canned output for code without executing it.
func Simulate(language, source string) string {
	if language != "python" {
		return fmt.Sprintf("✨ %s code executed with divine protection", language)
	}

	switch {
	case strings.Contains(source, "print"):
		match := printCall.FindStringSubmatch(source)
		if match == nil {
			return ""
		}
		return strings.NewReplacer(`'`, "", `"`, "").Replace(match[1]) + "\n"
	case strings.Contains(source, "SacredGeometry"):
		return sacredGeometryOutput
	default:
		return pythonBlessing
	}
}
