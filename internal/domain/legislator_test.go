package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegislator_Matches(t *testing.T) {
	l := Legislator{Party: "Unity", State: "CA", Chamber: "Assembly"}

	assert.True(t, l.Matches("parties", set("Unity", "Independent")))
	assert.False(t, l.Matches("parties", set("Independent")))
	assert.True(t, l.Matches("states", set("CA")))
	assert.True(t, l.Matches("chambers", set("Assembly")))
	assert.False(t, l.Matches("chambers", set("Senate")))
	assert.True(t, l.Matches("unknown", set("anything")))
}

func TestLegislator_CloneIsolation(t *testing.T) {
	l := Legislator{
		Name:           "Dana Whitfield",
		TopIssues:      []string{"water"},
		FundingRecords: []FundingRecord{{Source: "Water Alliance PAC", Amount: 12500}},
	}

	c := l.Clone()
	c.TopIssues[0] = "mutated"
	c.FundingRecords[0].Source = "mutated"

	assert.Equal(t, "water", l.TopIssues[0])
	assert.Equal(t, "Water Alliance PAC", l.FundingRecords[0].Source)
}
