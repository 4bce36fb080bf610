package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntersects(t *testing.T) {
	tests := []struct {
		name   string
		query  []string
		skills []string
		want   bool
	}{
		{name: "direct overlap", query: []string{"go"}, skills: []string{"go", "sql"}, want: true},
		{name: "case insensitive", query: []string{"Go"}, skills: []string{"gO"}, want: true},
		{name: "whitespace trimmed", query: []string{" go "}, skills: []string{"go"}, want: true},
		{name: "no overlap", query: []string{"rust"}, skills: []string{"go", "sql"}, want: false},
		{name: "empty query", query: nil, skills: []string{"go"}, want: false},
		{name: "empty skills", query: []string{"go"}, skills: nil, want: false},
		{name: "blank strings ignored", query: []string{"", " "}, skills: []string{""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersects(tt.query, tt.skills))
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{name: "identical sets", a: []string{"go", "sql"}, b: []string{"go", "sql"}, want: 1},
		{name: "half overlap", a: []string{"go"}, b: []string{"go", "sql", "docker"}, want: 1.0 / 3.0},
		{name: "disjoint", a: []string{"go"}, b: []string{"rust"}, want: 0},
		{name: "both empty", a: nil, b: nil, want: 0},
		{name: "case insensitive", a: []string{"Go"}, b: []string{"gO"}, want: 1},
		{name: "duplicates collapse", a: []string{"go", "go"}, b: []string{"go"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}
