package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"zero values", Params{}, Params{Page: 1, PerPage: 20}},
		{"negative page", Params{Page: -3, PerPage: 10}, Params{Page: 1, PerPage: 10}},
		{"per page too large", Params{Page: 2, PerPage: 500}, Params{Page: 2, PerPage: 100}},
		{"valid untouched", Params{Page: 4, PerPage: 50}, Params{Page: 4, PerPage: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestQuery(t *testing.T) {
	v := Params{Page: 3, PerPage: 25}.Query()
	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "25", v.Get("per_page"))
}

func TestNewResult(t *testing.T) {
	data := []string{"a", "b", "c"}
	res := NewResult(data, 45, Params{Page: 2, PerPage: 20})

	assert.Equal(t, 45, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestNewResult_LastPage(t *testing.T) {
	res := NewResult([]int{1}, 41, Params{Page: 3, PerPage: 20})
	assert.Equal(t, 3, res.TotalPages)
	assert.False(t, res.HasNext)
	assert.True(t, res.HasPrev)
}
