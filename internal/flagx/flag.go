// Package flagx contains helpers for letting several components read their
// own flags from one command line without tripping over each other.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args made of allowedFlags and their values.
//
// Both "-c conf.json" and "--config=conf.json" forms are recognised. A token
// following an allowed flag is taken as its value unless it starts with "-".
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlags returns the JSON config path given with -c or -config,
// or "" when neither is present.
func JsonConfigFlags() string {
	return stringFlag("json", "Path to config file", "config", "c")
}

// EnvFileFlags returns the dotenv path given with -env, or "" when absent.
func EnvFileFlags() string {
	return stringFlag("env", "Path to .env file", "env")
}

// stringFlag parses a single string flag known under several names from
// os.Args, ignoring everything else. The last occurrence wins.
func stringFlag(set, usage string, names ...string) string {
	var value string

	allowed := make([]string, 0, len(names))
	fs := flag.NewFlagSet(set, flag.ContinueOnError)
	for _, n := range names {
		allowed = append(allowed, "-"+n)
		fs.StringVar(&value, n, "", usage)
	}

	_ = fs.Parse(FilterArgs(os.Args[1:], allowed))
	return value
}

// InteractiveFlag reports whether -i or -interactive was given.
func InteractiveFlag() bool {
	var on bool
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	fs.BoolVar(&on, "i", false, "run the admin console after bootstrap")
	fs.BoolVar(&on, "interactive", false, "run the admin console after bootstrap")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-i", "-interactive"}))
	return on
}
