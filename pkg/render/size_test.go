package render_test

import (
	"testing"

	"github.com/goliatone/go-formwizard/pkg/render"
)

func TestFormatFileSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{500, "500 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1234567, "1.18 MB"},
		{2 * 1024 * 1024, "2 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5120 GB"},
	}
	for _, tc := range cases {
		if got := render.FormatFileSize(tc.bytes); got != tc.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
