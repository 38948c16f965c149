package state

import "encoding/json"

// StateHeader carries the per-version metadata of the governance state:
// chain identity, block cursor, the account index counter, the session
// flag, and the owner authorized to close the session.
type StateHeader struct {
	ChainId    string `json:"chain_id"`
	Height     uint64 `json:"height"`
	Hash       []byte `json:"hash"`
	RootHash   []byte `json:"root_hash"`
	AccountIdx uint64 `json:"account_idx"`
	Time       int64  `json:"time"`
	VotingOpen bool   `json:"voting_open"`
	Owner      string `json:"owner"`
}

func (h *StateHeader) Clone() *StateHeader {
	n := &StateHeader{
		ChainId:    h.ChainId,
		Height:     h.Height,
		AccountIdx: h.AccountIdx,
		Time:       h.Time,
		VotingOpen: h.VotingOpen,
		Owner:      h.Owner,
	}
	if h.Hash != nil {
		n.Hash = make([]byte, len(h.Hash))
		copy(n.Hash, h.Hash)
	}
	if h.RootHash != nil {
		n.RootHash = make([]byte, len(h.RootHash))
		copy(n.RootHash, h.RootHash)
	}
	return n
}

func (h *StateHeader) Marshal() ([]byte, error) {
	return json.Marshal(h)
}

func (h *StateHeader) Unmarshal(dat []byte) error {
	return json.Unmarshal(dat, h)
}
