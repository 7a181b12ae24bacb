package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	assert := assert.New(t)
	base := MakerConfig{
		Kind:        "talea",
		Tag:         "base",
		Talea:       &TaleaConfig{Counts: []int64{1, 2}, Denominator: 16},
		ExtraCounts: []int64{1},
		Spelling:    &SpellingConfig{RewriteMeter: true},
	}
	override := MakerConfig{
		Talea:       &TaleaConfig{Denominator: 8},
		ExtraCounts: []int64{},
		Commands:    []CommandConfig{{Name: "beam"}},
	}
	got := Merge(base, override)
	assert.Equal("talea", got.Kind)
	assert.Equal("base", got.Tag)
	assert.Equal([]int64{1, 2}, got.Talea.Counts)
	assert.Equal(int64(8), got.Talea.Denominator)
	assert.Equal([]int64{}, got.ExtraCounts)
	assert.True(got.Spelling.RewriteMeter)
	assert.Equal([]CommandConfig{{Name: "beam"}}, got.Commands)
	// The inputs are left alone.
	assert.Equal(int64(16), base.Talea.Denominator)
}

func TestMergeNil(t *testing.T) {
	base := MakerConfig{Kind: "note", Burnish: &BurnishConfig{LeftCount: 1}}
	assert.Equal(t, base, Merge(base, MakerConfig{}))
	assert.Equal(t, base, Merge(MakerConfig{}, base))
}
