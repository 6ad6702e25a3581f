package main

import "strings"

// parseAspectList separa la lista por comas, sin vacíos ni repetidos.
func parseAspectList(list string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, text := range strings.Split(list, ",") {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}
