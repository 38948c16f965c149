package state

import (
	cmtcrypto "github.com/cometbft/cometbft/crypto"
)

// TokenLedger is the capability surface the execution engine consumes:
// a balance read and a mint. The governance state itself is the ledger
// here, but callers depend on the interface, not the tree.
type TokenLedger interface {
	BalanceOf(addr []byte) (uint64, error)
	Mint(addr []byte, amount uint64) error
}

// OwnerGate authorizes session closure.
type OwnerGate interface {
	IsAuthorizedOwner(a *Account) bool
}

var _ TokenLedger = (*State)(nil)
var _ OwnerGate = (*State)(nil)

// BalanceOf returns the token balance held by addr, zero for unknown
// accounts.
func (s *State) BalanceOf(addr []byte) (uint64, error) {
	a, err := s.FindAccount(addr)
	if err != nil {
		return 0, err
	}
	if a == nil {
		return 0, nil
	}
	return a.Balance, nil
}

// Mint credits amount to the account at addr, creating an address-only
// account when none exists yet.
func (s *State) Mint(addr []byte, amount uint64) error {
	return s.mint(addr, amount)
}

func (s *State) mint(addr []byte, amount uint64) error {
	a, err := s.FindAccount(addr)
	if err != nil {
		return err
	}
	if a == nil {
		a = &Account{
			Index:   s.header.AccountIdx,
			Addr:    append([]byte{}, addr...),
			Balance: amount,
		}
		s.header.AccountIdx += 1
		s.acnts[a.Index] = a.Clone()
		s.idxs[cmtcrypto.Address(addr).String()] = a.Index
		s.modifiedAcnts[a.Index] = ModifiedFlagNew
		return nil
	}
	a.Balance += amount
	v := s.modifiedAcnts[a.Index]
	v |= ModifiedFlagMod
	s.modifiedAcnts[a.Index] = v
	s.acnts[a.Index] = a.Clone()
	return nil
}

// IsAuthorizedOwner reports whether a is the account named as owner in
// the state header.
func (s *State) IsAuthorizedOwner(a *Account) bool {
	return s.header.Owner != "" && a.Address() == s.header.Owner
}
