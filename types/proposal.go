package types

import "math/big"

// PassThresholdPercent is the share of for-votes, out of every cast vote,
// required for a proposal to pass.
const PassThresholdPercent = 50

type Proposal struct {
	Index           uint64 `json:"index"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Proposer        uint64 `json:"proposer"`
	ProposerAddress string `json:"proposer_address"`
	Recipient       string `json:"recipient,omitempty"`
	Amount          uint64 `json:"amount,omitempty"`
	ForVotes        uint64 `json:"for_votes"`
	AgainstVotes    uint64 `json:"against_votes"`
	AbstainVotes    uint64 `json:"abstain_votes"`
	Executed        bool   `json:"executed"`
	Passed          bool   `json:"passed"`
	CreatedAt       int64  `json:"created_at"`
	Height          uint64 `json:"height"`
}

// HasVotes reports whether any vote has been cast.
func (p *Proposal) HasVotes() bool {
	return p.ForVotes != 0 || p.AgainstVotes != 0 || p.AbstainVotes != 0
}

// Tally applies the majority rule. Abstain votes count toward the
// denominator but not the numerator, so heavy abstention dilutes the
// for-share. Returns false when no votes were cast. Weights are
// unbounded uint64s, so the share is computed in big integers; the
// for-votes times 100 alone can exceed 64 bits.
func (p *Proposal) Tally() bool {
	if !p.HasVotes() {
		return false
	}
	total := new(big.Int).SetUint64(p.ForVotes)
	total.Add(total, new(big.Int).SetUint64(p.AgainstVotes))
	total.Add(total, new(big.Int).SetUint64(p.AbstainVotes))
	share := new(big.Int).SetUint64(p.ForVotes)
	share.Mul(share, big.NewInt(100))
	share.Div(share, total)
	return share.Cmp(big.NewInt(PassThresholdPercent)) >= 0
}

// HasFundingAction reports whether executing this proposal mints tokens.
func (p *Proposal) HasFundingAction() bool {
	return p.Recipient != "" && p.Amount > 0
}

// Deadline is the unix time after which an unexecuted proposal may be
// force-closed. Measured from the proposal's own creation time.
func (p *Proposal) Deadline(durationSeconds int64) int64 {
	return p.CreatedAt + durationSeconds
}
