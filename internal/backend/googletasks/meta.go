package googletasks

import (
	"fmt"
	"strconv"
	"strings"
)

// Google Tasks has no fields for estimates, priorities or sort order. They
// are kept on the last line of the task notes, e.g.
//
//	[taskrush est=25 actual=10 prio=2 sort=1710406800]
const metaPrefix = "[taskrush "

// meta holds the task fields stored in the notes footer.
type meta struct {
	Estimated float64
	Actual    float64
	Priority  *int
	SortOrder int64
}

// encodeNotes appends the footer for m to the user's notes.
func encodeNotes(notes string, m meta) string {
	var b strings.Builder
	b.WriteString(metaPrefix)
	fmt.Fprintf(&b, "est=%s actual=%s",
		strconv.FormatFloat(m.Estimated, 'f', -1, 64),
		strconv.FormatFloat(m.Actual, 'f', -1, 64))
	if m.Priority != nil {
		fmt.Fprintf(&b, " prio=%d", *m.Priority)
	}
	fmt.Fprintf(&b, " sort=%d]", m.SortOrder)

	notes = strings.TrimRight(notes, "\n")
	if notes == "" {
		return b.String()
	}
	return notes + "\n\n" + b.String()
}

// decodeNotes splits stored notes into the user's notes and the footer.
// ok is false when there is no footer; notes are then returned as is.
func decodeNotes(stored string) (notes string, m meta, ok bool) {
	body, last := stored, stored
	if i := strings.LastIndex(stored, "\n"); i >= 0 {
		body, last = stored[:i], stored[i+1:]
	} else {
		body = ""
	}
	if !strings.HasPrefix(last, metaPrefix) || !strings.HasSuffix(last, "]") {
		return stored, meta{}, false
	}

	fields := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(last, metaPrefix), "]"))
	for _, f := range fields {
		key, value, found := strings.Cut(f, "=")
		if !found {
			return stored, meta{}, false
		}
		var err error
		switch key {
		case "est":
			m.Estimated, err = strconv.ParseFloat(value, 64)
		case "actual":
			m.Actual, err = strconv.ParseFloat(value, 64)
		case "prio":
			var p int
			p, err = strconv.Atoi(value)
			m.Priority = &p
		case "sort":
			m.SortOrder, err = strconv.ParseInt(value, 10, 64)
		}
		if err != nil {
			return stored, meta{}, false
		}
	}
	return strings.TrimRight(body, "\n"), m, true
}
