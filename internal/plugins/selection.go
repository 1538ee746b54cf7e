package plugins

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrQuit is returned by ParseSelection when the user chose to quit.
var ErrQuit = errors.New("quit")

// ParseSelection turns "2" or "1, 3" into the chosen names. Numbers are
// 1-based positions in names. "n" returns ErrQuit. Repeated numbers are
// installed once.
func ParseSelection(input string, names []string) ([]string, error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "n") {
		return nil, ErrQuit
	}
	if input == "" {
		return nil, fmt.Errorf("no plugin selected")
	}

	seen := make(map[int]bool)
	var chosen []string
	for _, field := range strings.Split(input, ",") {
		field = strings.TrimSpace(field)
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q: must be a number", field)
		}
		if idx < 1 || idx > len(names) {
			return nil, fmt.Errorf("invalid selection %d: must be between 1 and %d", idx, len(names))
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		chosen = append(chosen, names[idx-1])
	}
	return chosen, nil
}
