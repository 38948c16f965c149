package state

import (
	"encoding/json"

	cmtcrypto "github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// Account is one entry in the token ledger. Balance is the membership
// token amount; any positive balance makes the account a member. Accounts
// created by minting to an unknown recipient carry only an address and no
// public key, so they can hold tokens but cannot sign transactions.
type Account struct {
	Index   uint64         `json:"index"`
	PubKey  ed25519.PubKey `json:"pubKey,omitempty"`
	Addr    []byte         `json:"addr,omitempty"`
	Balance uint64         `json:"balance"`
	Nonce   uint64         `json:"nonce"`
}

func (a *Account) MarshalJSON() (dat []byte, err error) {
	type accountSt Account
	o := accountSt(*a)
	return json.Marshal(&o)
}

func (a *Account) UnmarshalJSON(dat []byte) (err error) {
	type accountSt Account
	var o accountSt
	err = json.Unmarshal(dat, &o)
	if err != nil {
		return
	}
	*a = Account(o)
	return
}

func (a *Account) Clone() *Account {
	n := &Account{
		Index:   a.Index,
		Balance: a.Balance,
		Nonce:   a.Nonce,
	}
	if a.PubKey != nil {
		n.PubKey = make(ed25519.PubKey, len(a.PubKey))
		copy(n.PubKey, a.PubKey)
	}
	if a.Addr != nil {
		n.Addr = make([]byte, len(a.Addr))
		copy(n.Addr, a.Addr)
	}
	return n
}

func (a *Account) SetPubKey(pkey []byte) {
	if a.PubKey == nil {
		a.PubKey = make([]byte, len(pkey))
	}
	copy(a.PubKey, pkey)
}

func (a *Account) AddrBytes() []byte {
	if len(a.PubKey) > 0 {
		pk := ed25519.PubKey(a.PubKey[:])
		return pk.Address()[:]
	}
	return a.Addr
}

func (a *Account) Address() string {
	if len(a.PubKey) > 0 {
		pk := ed25519.PubKey(a.PubKey[:])
		return pk.Address().String()
	}
	return cmtcrypto.Address(a.Addr).String()
}

func (a *Account) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 {
		return false
	}
	if len(a.PubKey) == 0 {
		return false
	}
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.VerifySignature(msg, sigs[0])
}
