package tx

import (
	"encoding/json"
)

// GovTx is the signed envelope every governance transaction travels in.
// Member is the account index of the caller; Sig holds the caller's
// ed25519 signature over SigData.
type GovTx struct {
	Version uint8     `json:"version"`
	Type    GovTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	Member  uint64    `json:"member"`
	Tx      any       `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

// ProposeTx creates a proposal. Recipient is a hex account address; when
// empty the proposal carries no funding action.
type ProposeTx struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Recipient   string `json:"recipient,omitempty"`
	Amount      uint64 `json:"amount,omitempty"`
}

// VoteTx casts a weighted vote. Abstain takes precedence over Support.
type VoteTx struct {
	Proposal uint64 `json:"proposal"`
	Support  bool   `json:"support"`
	Abstain  bool   `json:"abstain"`
}

type ExecuteTx struct {
	Proposal uint64 `json:"proposal"`
}

type ExecuteBatchTx struct {
	Proposals []uint64 `json:"proposals"`
}

type CloseVotingTx struct{}

type RecoverTx struct{}

type govTxTmpl[Tx any] struct {
	Version uint8     `json:"version"`
	Type    GovTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	Member  uint64    `json:"member"`
	Tx      Tx        `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

// SigData is the byte string a caller signs: the envelope with the
// signature slot replaced by ext (the chain id), so signatures cannot be
// replayed across chains.
func (tx *GovTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseGovTxType(dat []byte) GovTxType {
	var tx struct {
		Type GovTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return GovTxTypeUnknown
	}
	return tx.Type
}

func unmarshalGovTx[Tx any](dat []byte) (btx *GovTx, err error) {
	var txt govTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	btx = new(GovTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Member = txt.Member
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalGovTx(dat []byte) (btx *GovTx, err error) {
	tp := parseGovTxType(dat)
	switch tp {
	case GovTxTypePropose:
		return unmarshalGovTx[ProposeTx](dat)
	case GovTxTypeVote:
		return unmarshalGovTx[VoteTx](dat)
	case GovTxTypeExecute:
		return unmarshalGovTx[ExecuteTx](dat)
	case GovTxTypeExecuteBatch:
		return unmarshalGovTx[ExecuteBatchTx](dat)
	case GovTxTypeCloseVoting:
		return unmarshalGovTx[CloseVotingTx](dat)
	case GovTxTypeRecover:
		return unmarshalGovTx[RecoverTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalGovTx(btx *GovTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
