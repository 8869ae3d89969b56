package ledger_repo

import "strings"

func prefixColumns(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
