package query

import (
	"strings"
	"testing"
	"time"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		pager       Pager
		want        []string
		wantAbsent  []string
		wantEmpty   bool
		activeCount int
	}{
		{
			name:      "single page renders nothing",
			pager:     Pager{Page: 1, TotalPages: 1},
			wantEmpty: true,
		},
		{
			name:      "empty set renders nothing",
			pager:     Pager{Page: 1, TotalPages: 0},
			wantEmpty: true,
		},
		{
			name:  "first page of many",
			pager: Pager{Page: 1, TotalPages: 20},
			want: []string{
				`<a class="lhr-page active" data-page="1">1</a>`,
				`data-page="2"`,
				`data-page="3"`,
				`data-page="11"`, // forward 10
				`<a class="lhr-page last-page" data-page="20">&gt;&gt;</a>`,
			},
			wantAbsent:  []string{"first-page"},
			activeCount: 1,
		},
		{
			name:  "middle page exposes both jump links",
			pager: Pager{Page: 15, TotalPages: 30},
			want: []string{
				`<a class="lhr-page first-page" data-page="1">&lt;&lt;</a>`,
				`data-page="5"`,  // back 10
				`data-page="13"`, `data-page="14"`,
				`<a class="lhr-page active" data-page="15">15</a>`,
				`data-page="16"`, `data-page="17"`,
				`data-page="25"`, // forward 10
				`<a class="lhr-page last-page" data-page="30">&gt;&gt;</a>`,
			},
			activeCount: 1,
		},
		{
			name:  "page 5 of 20 has no back-10 jump",
			pager: Pager{Page: 5, TotalPages: 20},
			want: []string{
				`<a class="lhr-page first-page" data-page="1">&lt;&lt;</a>`,
				`data-page="3"`, `data-page="4"`,
				`<a class="lhr-page active" data-page="5">5</a>`,
				`data-page="15"`, // forward 10
			},
			wantAbsent:  []string{`data-page="-5"`},
			activeCount: 1,
		},
		{
			name:  "last page has no trailing links",
			pager: Pager{Page: 20, TotalPages: 20},
			want: []string{
				`<a class="lhr-page first-page" data-page="1">&lt;&lt;</a>`,
				`data-page="10"`, // back 10
				`data-page="18"`, `data-page="19"`,
				`<a class="lhr-page active" data-page="20">20</a>`,
			},
			wantAbsent:  []string{"last-page", `data-page="21"`},
			activeCount: 1,
		},
		{
			name:  "page 3 of 5 keeps window only",
			pager: Pager{Page: 3, TotalPages: 5},
			want: []string{
				`data-page="1"`, `data-page="2"`,
				`<a class="lhr-page active" data-page="3">3</a>`,
				`data-page="4"`, `data-page="5"`,
			},
			wantAbsent:  []string{"first-page", "last-page"},
			activeCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(tt.pager)
			if tt.wantEmpty {
				if got != "" {
					t.Fatalf("expected empty markup, got %q", got)
				}
				return
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("markup missing %q:\n%s", w, got)
				}
			}
			for _, w := range tt.wantAbsent {
				if strings.Contains(got, w) {
					t.Errorf("markup should not contain %q:\n%s", w, got)
				}
			}
			if n := strings.Count(got, `"lhr-page active"`); n != tt.activeCount {
				t.Errorf("expected exactly %d active link, got %d", tt.activeCount, n)
			}
		})
	}
}

func TestTimeSince(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "1 second"},
		{-5 * time.Second, "1 second"}, // clock skew clamps
		{500 * time.Millisecond, "1 second"},
		{1 * time.Second, "1 second"},
		{45 * time.Second, "45 seconds"},
		{90 * time.Second, "1 minute"},
		{2 * time.Minute, "2 minutes"},
		{3600 * time.Second, "1 hour"},
		{5 * time.Hour, "5 hours"},
		{25 * time.Hour, "1 day"},
		{6 * 24 * time.Hour, "6 days"},
		{7 * 24 * time.Hour, "1 week"},
		{20 * 24 * time.Hour, "2 weeks"},
		{31 * 24 * time.Hour, "1 month"},
		{70 * 24 * time.Hour, "2 months"},
		{366 * 24 * time.Hour, "1 year"},
		{800 * 24 * time.Hour, "2 years"},
	}

	for _, tt := range tests {
		if got := TimeSince(now.Add(-tt.elapsed), now); got != tt.want {
			t.Errorf("TimeSince(-%v) = %q, want %q", tt.elapsed, got, tt.want)
		}
	}
}
