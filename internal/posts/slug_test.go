package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	for _, tc := range []struct {
		title string
		want  string
	}{
		{"Hello World", "hello_world"},
		{"Hello   World", "hello_world"},
		{"MIXED Case Title", "mixed_case_title"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"already_slugged", "already_slugged"},
	} {
		assert.Equal(t, tc.want, Slugify(tc.title))
	}
}
