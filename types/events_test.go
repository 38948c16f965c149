package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	created := &EventProposalCreated{
		Proposal:        7,
		Title:           "t",
		Proposer:        65536,
		ProposerAddress: "ABCD",
		Recipient:       "00112233445566778899aabbccddeeff00112233",
		Amount:          5,
	}
	require.Equal(t, created, DecodeEventProposalCreated(EncodeEventProposalCreated(created)))

	vote := &EventVoteCast{
		Proposal:     7,
		Voter:        65537,
		VoterAddress: "ABCD",
		Support:      true,
		Abstain:      false,
		Weight:       100,
	}
	require.Equal(t, vote, DecodeEventVoteCast(EncodeEventVoteCast(vote)))

	executed := &EventProposalExecuted{
		Proposal:  7,
		Passed:    true,
		Recipient: "00112233445566778899aabbccddeeff00112233",
		Amount:    5,
		Recovered: true,
	}
	require.Equal(t, executed, DecodeEventProposalExecuted(EncodeEventProposalExecuted(executed)))

	closed := &EventVotingClosed{Height: 12, Closer: "ABCD"}
	require.Equal(t, closed, DecodeEventVotingClosed(EncodeEventVotingClosed(closed)))
}

func TestDecodeEventBadAttribute(t *testing.T) {
	ev := EncodeEventVoteCast(&EventVoteCast{Proposal: 1, Weight: 2})
	ev.Attributes[0].Value = "not-a-number"
	require.Nil(t, DecodeEventVoteCast(ev))
}
