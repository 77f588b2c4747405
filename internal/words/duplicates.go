package words

import (
	"bufio"
	"io"
)

// Duplicates returns every line of r that occurs more than once, in the
// order each first appears. Lines are compared exactly.
func Duplicates(r io.Reader) ([]string, error) {
	counts := make(map[string]int)
	var order []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if counts[line] == 0 {
			order = append(order, line)
		}
		counts[line]++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var dups []string
	for _, line := range order {
		if counts[line] > 1 {
			dups = append(dups, line)
		}
	}
	return dups, nil
}
