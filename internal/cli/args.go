package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// negativeArgs lets "clubsearch 'q' 5 -0.5" through cobra: the first bare
// negative number and the positionals after it are moved behind "--", flags
// after it are kept in front. Subcommands and argv that already has "--" are
// returned unchanged.
func negativeArgs(cmd *cobra.Command, args []string) []string {
	flags := cmd.PersistentFlags()

	first := -1
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args
		}
		if isNegativeNumber(arg) {
			first = i
			break
		}
		if strings.HasPrefix(arg, "-") {
			if takesValue(flags, arg) {
				i++
			}
			continue
		}
		if sub, _, err := cmd.Find([]string{arg}); err == nil && sub != cmd {
			return args
		}
	}
	if first < 0 {
		return args
	}

	out := append([]string{}, args[:first]...)
	var positional []string
	for i := first; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case isNegativeNumber(arg), !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		default:
			out = append(out, arg)
			if takesValue(flags, arg) && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
		}
	}
	out = append(out, "--")
	return append(out, positional...)
}

func isNegativeNumber(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// takesValue reports whether arg is a flag whose value is the next token.
func takesValue(flags *pflag.FlagSet, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	var f *pflag.Flag
	switch {
	case strings.HasPrefix(arg, "--"):
		f = flags.Lookup(arg[2:])
	case len(arg) == 2:
		f = flags.ShorthandLookup(arg[1:])
	default:
		return false
	}
	return f != nil && f.NoOptDefVal == ""
}
