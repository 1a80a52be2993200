package timeline

import "strings"

// assistSeparator matches upstream formatting exactly, case and spacing included.
const assistSeparator = ", ass "

// ParseDetails turns a goal annotation such as "67 Anna Svensson, ass 3 Erik Berg"
// into a goal detail and, when present, an assist detail.
func ParseDetails(text string) []ActionDetail {
	goalText, assistText, hasAssist := strings.Cut(text, assistSeparator)
	if !hasAssist {
		return []ActionDetail{parseDetail(text, ActionGoal)}
	}

	return []ActionDetail{
		parseDetail(goalText, ActionGoal),
		parseDetail(assistText, ActionAssist),
	}
}

func parseDetail(text string, action Action) ActionDetail {
	detail := ActionDetail{Action: action}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return detail
	}

	detail.Number = fields[0]
	detail.Name = strings.Join(fields[1:], " ")
	return detail
}
