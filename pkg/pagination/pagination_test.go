package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   Params
		want Params
	}{
		{"defaults", Params{}, Params{Page: 1, PageSize: DefaultPageSize}},
		{"negative page", Params{Page: -3, PageSize: 10}, Params{Page: 1, PageSize: 10}},
		{"capped page size", Params{Page: 2, PageSize: 500}, Params{Page: 2, PageSize: MaxPageSize}},
		{"in range", Params{Page: 4, PageSize: 50}, Params{Page: 4, PageSize: 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestOffsetAndLimit(t *testing.T) {
	t.Parallel()

	params := Params{Page: 3, PageSize: 25}
	assert.Equal(t, 50, params.Offset())
	assert.Equal(t, 25, params.Limit())

	assert.Equal(t, 0, Params{}.Offset())
	assert.Equal(t, DefaultPageSize, Params{}.Limit())
}

func TestMetaFor(t *testing.T) {
	t.Parallel()

	meta := MetaFor(Params{Page: 2, PageSize: 10}, 25)
	assert.Equal(t, Meta{Page: 2, PageSize: 10, TotalItems: 25, TotalPages: 3}, meta)

	meta = MetaFor(Params{}, 0)
	assert.Equal(t, int64(0), meta.TotalPages)
}
