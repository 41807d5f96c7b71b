package reminder

import (
	"strconv"
	"strings"
)

func splitFields(spec string) []string {
	return strings.Fields(spec)
}

func parseDayList(s string, min, max int) ([]int, bool) {
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(p)
		if err != nil || d < min || d > max {
			return nil, false
		}
		days = append(days, d)
	}
	return days, len(days) > 0
}
