package query

import (
	"fmt"
	"strings"
)

// Paginate renders the pager as markup: a sliding window of nearby pages
// around the active one, plus long-distance jump links. Empty when a single
// page holds everything.
func Paginate(p Pager) string {
	var b strings.Builder

	if p.TotalPages <= 1 {
		return ""
	}

	if p.Page > 3 {
		b.WriteString(`<a class="lhr-page first-page" data-page="1">&lt;&lt;</a>`)
	}
	if p.Page-10 > 1 {
		fmt.Fprintf(&b, `<a class="lhr-page" data-page="%d">%d</a>`, p.Page-10, p.Page-10)
	}
	for i := 2; i > 0; i-- {
		if p.Page-i > 0 {
			fmt.Fprintf(&b, `<a class="lhr-page" data-page="%d">%d</a>`, p.Page-i, p.Page-i)
		}
	}

	fmt.Fprintf(&b, `<a class="lhr-page active" data-page="%d">%d</a>`, p.Page, p.Page)

	for i := 1; i <= 2; i++ {
		if p.Page+i <= p.TotalPages {
			fmt.Fprintf(&b, `<a class="lhr-page" data-page="%d">%d</a>`, p.Page+i, p.Page+i)
		}
	}
	if p.TotalPages > p.Page+10 {
		fmt.Fprintf(&b, `<a class="lhr-page" data-page="%d">%d</a>`, p.Page+10, p.Page+10)
	}
	if p.TotalPages > p.Page+2 {
		fmt.Fprintf(&b, `<a class="lhr-page last-page" data-page="%d">&gt;&gt;</a>`, p.TotalPages)
	}

	return b.String()
}
