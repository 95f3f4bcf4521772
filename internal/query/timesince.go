package query

import (
	"fmt"
	"time"
)

// timeUnits is ordered largest first; TimeSince picks the first unit that
// fits at least once.
var timeUnits = []struct {
	seconds int64
	name    string
}{
	{31536000, "year"},
	{2592000, "month"},
	{604800, "week"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
	{1, "second"},
}

// TimeSince renders the time elapsed between t and now as the largest whole
// unit, floored, e.g. "1 minute" or "3 days". Sub-second and negative
// elapsed times clamp to "1 second".
func TimeSince(t, now time.Time) string {
	elapsed := now.Unix() - t.Unix()
	if elapsed < 1 {
		elapsed = 1
	}

	for _, u := range timeUnits {
		if elapsed < u.seconds {
			continue
		}
		n := elapsed / u.seconds
		if n > 1 {
			return fmt.Sprintf("%d %ss", n, u.name)
		}
		return fmt.Sprintf("1 %s", u.name)
	}
	return "1 second"
}
