package models

import "strings"

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var verbs = []string{"ClearMessage", "Request", "Success", "Failure"}

// splitType breaks "group/fetchAllGroupsSuccess" into its domain, operation and verb.
func splitType(t string) (domain, op, verb string) {
	domain, rest, ok := strings.Cut(t, "/")
	if !ok {
		return "", t, ""
	}
	for _, v := range verbs {
		if strings.HasSuffix(rest, v) {
			return domain, strings.TrimSuffix(rest, v), v
		}
	}
	return domain, rest, ""
}
