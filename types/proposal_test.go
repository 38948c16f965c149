package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTally(t *testing.T) {
	cases := []struct {
		name                  string
		forV, against, absten uint64
		pass                  bool
	}{
		{"no votes", 0, 0, 0, false},
		{"unanimous for", 100, 0, 0, true},
		{"unanimous against", 0, 100, 0, false},
		{"exactly half", 50, 50, 0, true},
		{"just under half", 49, 51, 0, false},
		{"abstain dilutes below threshold", 40, 0, 60, false},
		{"abstain kept at threshold", 50, 0, 50, true},
		{"abstain only", 0, 0, 100, false},
		{"huge unanimous for", 1 << 62, 0, 0, true},
		{"huge exactly half", 1 << 63, 1 << 63, 0, true},
		{"huge abstain dilution", 1 << 62, 0, 3 << 62, false},
		{"huge against majority", 1 << 62, 3 << 62, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &Proposal{ForVotes: c.forV, AgainstVotes: c.against, AbstainVotes: c.absten}
			require.Equal(t, c.pass, p.Tally())
		})
	}
}

func TestHasVotes(t *testing.T) {
	require.False(t, (&Proposal{}).HasVotes())
	require.True(t, (&Proposal{AbstainVotes: 1}).HasVotes())
	require.True(t, (&Proposal{ForVotes: 1 << 63, AgainstVotes: 1 << 63}).HasVotes())
}

func TestHasFundingAction(t *testing.T) {
	require.False(t, (&Proposal{}).HasFundingAction())
	require.False(t, (&Proposal{Recipient: "aa", Amount: 0}).HasFundingAction())
	require.False(t, (&Proposal{Recipient: "", Amount: 10}).HasFundingAction())
	require.True(t, (&Proposal{Recipient: "aa", Amount: 10}).HasFundingAction())
}

func TestDeadline(t *testing.T) {
	p := &Proposal{CreatedAt: 1000}
	require.Equal(t, int64(1060), p.Deadline(60))
}
