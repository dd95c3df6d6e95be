package posesource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByNumber(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "numeric not lexical, no digits first",
			in:   []string{"10_pose.json", "2_pose.json", "file.json"},
			want: []string{"file.json", "2_pose.json", "10_pose.json"},
		},
		{
			name: "leading zeros",
			in:   []string{"003_pose.json", "001_pose.json", "002_pose.json"},
			want: []string{"001_pose.json", "002_pose.json", "003_pose.json"},
		},
		{
			name: "first digit run wins",
			in:   []string{"clip2_take9.json", "clip1_take50.json"},
			want: []string{"clip1_take50.json", "clip2_take9.json"},
		},
		{
			name: "ties keep listing order",
			in:   []string{"b.json", "a.json", "0.json"},
			want: []string{"b.json", "a.json", "0.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string(nil), tt.in...)
			SortByNumber(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumericToken(t *testing.T) {
	assert.Equal(t, 0, NumericToken("pose.json"))
	assert.Equal(t, 7, NumericToken("v7_12.json"))
	assert.Equal(t, int(^uint(0)>>1), NumericToken("99999999999999999999999.json"))
}
