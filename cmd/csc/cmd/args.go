package cmd

import (
	"fmt"
	"os"
	"strings"
)

// dosFlagAliases maps the spec's /name and /alias spellings onto the long
// flag names compile.go registers with cobra.
var dosFlagAliases = map[string]string{
	"target":  "target",
	"debug":   "debug",
	"main":    "main",
	"out":     "out",
	"reference": "reference",
	"r":       "reference",
	"define":  "define",
	"d":       "define",
	"xml":     "xml",
	"_q":      "_Q",
	"help":    "help",
}

// preprocessArgs expands any leading-@ response files and rewrites
// `/name[:value]` tokens into the `--name[=value]` form pflag understands,
// so the rest of the driver can use an ordinary cobra command tree while
// still accepting the bit-compat option syntax spec §6 documents.
func preprocessArgs(args []string) ([]string, error) {
	expanded, err := expandResponseFiles(args)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(expanded))
	for _, a := range expanded {
		out = append(out, translateDOSFlag(a))
	}
	return out, nil
}

// expandResponseFiles replaces every `@file` token with the whitespace-
// separated tokens read from file, one level deep; lines beginning with #
// are comments. Source file names and already-expanded flags pass through
// unchanged.
func expandResponseFiles(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "@") {
			out = append(out, a)
			continue
		}
		path := strings.TrimPrefix(a, "@")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &usageError{fmt.Sprintf("reading response file %q: %v", path, err)}
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, strings.Fields(line)...)
		}
	}
	return out, nil
}

// translateDOSFlag rewrites one `/name:value` or `/name` token into pflag's
// `--name=value`/`--name` form. Tokens that don't start with `/` (source
// file names) pass through unchanged; an unrecognized `/name` is rewritten
// anyway, so pflag itself rejects it as an unknown flag and the overall run
// fails per spec §6 ("unknown option: reported, non-fatal for option
// processing but fatal overall").
func translateDOSFlag(a string) string {
	if !strings.HasPrefix(a, "/") {
		return a
	}
	body := strings.TrimPrefix(a, "/")
	name, value, hasValue := strings.Cut(body, ":")
	long, ok := dosFlagAliases[strings.ToLower(name)]
	if !ok {
		long = name
	}
	if !hasValue {
		return "--" + long
	}
	return "--" + long + "=" + value
}
