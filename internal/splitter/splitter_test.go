package splitter

import (
	"fmt"
	"testing"

	"record-splitter/internal/exclude"
	"record-splitter/internal/group"
	"record-splitter/internal/partitioner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	groups map[string]int
	sets   int
}

func (o *recordingObserver) ObserveGroup(group string, records int) {
	if o.groups == nil {
		o.groups = map[string]int{}
	}
	o.groups[group] = records
}

func (o *recordingObserver) ObserveResult(res *partitioner.Result) {
	o.sets = res.Len()
}

func TestSplit_FixedRecordCountExample(t *testing.T) {
	res, err := NewSplitter().Split(
		group.Config{Identifier: "set", RecordCount: group.IntPtr(2)},
		[]string{"a1", "a2", "b1", "b2", "c1"},
	)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"set.a": {"a1", "a2"},
		"set.b": {"b1", "b2"},
		"set.c": {"c1"},
	}, res.Map())
}

func TestSplit_Observer(t *testing.T) {
	obs := &recordingObserver{}

	cfg := group.Config{
		RecordCount: group.IntPtr(100),
		Groups: []group.Config{
			{Identifier: "g1", Patterns: []string{"unit_DVE/", "unit_VCSDVE/"}, RecordCount: group.IntPtr(5)},
			{Identifier: "g2", Patterns: []string{"OSCI"}, RecordCount: group.IntPtr(30)},
		},
	}

	_, err := NewSplitter().SetObserver(obs).Split(cfg, []string{"unit_DVE/x", "unit_VCSDVE/y", "OSCI/z", "misc/w"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"set": 1, "g1": 2, "g2": 1}, obs.groups)
	assert.Equal(t, 3, obs.sets)
}

func TestSplit_ConfigErrorIsTotal(t *testing.T) {
	res, err := NewSplitter().Split(
		group.Config{RecordCount: group.IntPtr(1), WeightBudget: group.IntPtr(1)},
		[]string{"a"},
	)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, group.ErrConflictingPolicy)
}

func TestSplit_CompletenessAfterExclusion(t *testing.T) {
	input := make([]string, 0, 200)
	weights := map[string]float64{}
	for i := range 200 {
		r := fmt.Sprintf("suite%d/case%03d", i%7, i)
		input = append(input, r)
		weights[r] = float64(i % 13)
	}

	kept, excluded, err := exclude.Apply(input, exclude.Spec{Patterns: []string{"case0[0-4]"}})
	require.NoError(t, err)
	require.NotEmpty(t, excluded)

	cfg := group.Config{
		SplitPattern: `^(suite\d)/`,
		WeightBudget: group.IntPtr(30),
		MaxRecords:   group.IntPtr(6),
		Weights:      weights,
		Groups: []group.Config{
			{Identifier: "odd", Patterns: []string{`[13579]$`}, SetCount: group.IntPtr(4)},
			{Identifier: "tens", Patterns: []string{`0$`}, RecordCount: group.IntPtr(3)},
		},
	}

	res, err := NewSplitter().Split(cfg, kept)
	require.NoError(t, err)

	var all []string
	for _, s := range res.Sets {
		all = append(all, s.Records...)
	}
	assert.ElementsMatch(t, kept, all)
	assert.Len(t, all, len(input)-len(excluded))
}

func TestSplit_Idempotent(t *testing.T) {
	cfg := group.Config{
		SplitPattern: `^(\w)`,
		SetCount:     group.IntPtr(3),
		Groups: []group.Config{
			{Identifier: "x", Patterns: []string{"^x"}, RecordCount: group.IntPtr(2)},
		},
	}
	input := []string{"a1", "x1", "b1", "a2", "x2", "x3", "a3", "b2"}

	first, err := NewSplitter().Split(cfg, input)
	require.NoError(t, err)
	second, err := NewSplitter().Split(cfg, input)
	require.NoError(t, err)

	assert.Equal(t, first.Sets, second.Sets)
}

func TestSplit_EmptyInput(t *testing.T) {
	res, err := NewSplitter().Split(group.Config{SetCount: group.IntPtr(3)}, nil)
	require.NoError(t, err)

	assert.Empty(t, res.Map())
}
