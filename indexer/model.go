package indexer

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primaryKey" json:"id"`
	Height uint64 `json:"height"`
}

type Member struct {
	Id      uint64 `gorm:"primaryKey" json:"id"`
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Height  uint64 `json:"height"`
}

type Proposal struct {
	Id              uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProposalIndex   uint64 `gorm:"unique_index" json:"proposal_index"`
	Title           string `json:"title"`
	ProposerIndex   uint64 `json:"proposer_index"`
	ProposerAddress string `json:"proposer_address"`
	Recipient       string `json:"recipient"`
	Amount          uint64 `json:"amount"`
	NewHeight       uint64 `json:"new_height"`
	ExecHeight      uint64 `json:"exec_height"`
	Executed        bool   `json:"executed"`
	Passed          bool   `json:"passed"`
	Recovered       bool   `json:"recovered"`
	CreateTimestamp int64  `json:"create_timestamp"`
}

type Vote struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal     uint64 `json:"proposal"`
	VoterIndex   uint64 `json:"voter_index"`
	VoterAddress string `json:"voter_address"`
	Support      bool   `json:"support"`
	Abstain      bool   `json:"abstain"`
	Weight       uint64 `json:"weight"`
	Height       uint64 `json:"height"`
}

type Session struct {
	Id          uint64 `gorm:"primaryKey" json:"id"`
	VotingOpen  bool   `json:"voting_open"`
	CloseHeight uint64 `json:"close_height"`
	Closer      string `json:"closer"`
}
