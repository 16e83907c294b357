package cli

import (
	"strconv"
	"strings"
)

var legacyFlags = map[string]string{
	"-in_corpus_path":  "--in",
	"-out_corpus_path": "--out",
}

// rewriteLegacyArgs turns the single-dash flags of the old degrade script
// into their degrade subcommand equivalents. The old script took any
// non-empty "-norm VALUE" as true, "-norm False" included, and so does this.
func rewriteLegacyArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	legacy := false

	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")

		if long, ok := legacyFlags[name]; ok {
			legacy = true
			if hasValue {
				out = append(out, long+"="+value)
			} else {
				out = append(out, long)
			}
			continue
		}

		if name == "-norm" {
			legacy = true
			if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				value, hasValue = args[i+1], true
				i++
			}
			out = append(out, "--norm="+strconv.FormatBool(!hasValue || value != ""))
			continue
		}

		out = append(out, args[i])
	}

	if legacy && (len(out) == 0 || out[0] != "degrade") {
		out = append([]string{"degrade"}, out...)
	}
	return out
}
