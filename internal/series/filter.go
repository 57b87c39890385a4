package series

import "strings"

// Filter returns, in table order, the UIDs whose Label contains query, ignoring case.
// An empty query matches every series.
func Filter(t *Table, query string) []string {
	needle := strings.ToLower(query)
	var out []string
	for _, r := range t.Records() {
		if strings.Contains(strings.ToLower(Label(r)), needle) {
			out = append(out, r.UID)
		}
	}
	return out
}
