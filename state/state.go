package state

import (
	"container/heap"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/agorahub/agora-node/config"
	"github.com/agorahub/agora-node/tx"
	"github.com/agorahub/agora-node/types"
	abci_types "github.com/cometbft/cometbft/abci/types"
	cmtcrypto "github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	StartAccountIdx = 65536

	ModifiedFlagNew = 1 << 0
	ModifiedFlagMod = 1 << 1
	ModifiedFlagPK  = 1 << 2

	MaxValidators = 100

	AddressLen = 20
)

var (
	ErrNotFound = errors.New("not found")
)

var (
	KeyState         = "s"
	KeyAccountIndex  = "i%s"
	KeyAccountBody   = "a%x"
	KeyProposalBody  = "p%v"
	KeyProposalCount = "pc"
	KeyVoterRecord   = "v%v:%v"
)

var (
	ErrTxMemberNoexists  = errors.New("member noexists")
	ErrTxNonceInvalid    = errors.New("nonce invalid")
	ErrTxSigInvalid      = errors.New("signature invalid")
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountNoexists   = errors.New("account noexists")
	ErrInvalidRecipient  = errors.New("invalid recipient address")
	ErrOneActionInBlock  = errors.New("one action in one block")

	// Creation-time validation.
	ErrEmptyDescription  = errors.New("proposal description is empty")
	ErrNotAMember        = errors.New("caller holds no membership tokens")
	ErrZeroFundingAmount = errors.New("funding amount must be positive")

	// Lifecycle-state violations.
	ErrVotingClosed     = errors.New("voting session closed")
	ErrAlreadyExecuted  = errors.New("proposal already executed")
	ErrDoubleVote       = errors.New("account already voted on proposal")
	ErrNoVotesCast      = errors.New("no votes cast on proposal")
	ErrProposalNotFound = errors.New("proposal not found")

	// Batch execution.
	ErrTooManyProposals = errors.New("too many proposals in batch")

	// Session closure.
	ErrUnauthorized        = errors.New("caller is not the authorized owner")
	ErrIncompleteProposals = errors.New("unexecuted proposals remain")
	ErrAlreadyClosed       = errors.New("voting session already closed")
)

// State is one working version of the governance state: the token ledger
// (accounts), the proposal store, voter-participation records and the
// session flag, all backed by a versioned IAVL tree. Mutations accumulate
// in the dirty maps and hit the tree on Update.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header     *StateHeader
	validators []abci_types.ValidatorUpdate
	idxs       map[string]uint64
	acnts      map[uint64]*Account

	modifiedAcnts map[uint64]uint32
	proposalCount uint64
	countDirty    bool
	modProposals  map[uint64]*types.Proposal
	newVotes      map[string]struct{}
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	s := &State{
		logger:        logger,
		db:            db,
		dbVer:         0,
		header:        new(StateHeader),
		validators:    []abci_types.ValidatorUpdate{},
		idxs:          make(map[string]uint64),
		acnts:         make(map[uint64]*Account),
		modifiedAcnts: make(map[uint64]uint32),
		proposalCount: 0,
		modProposals:  make(map[uint64]*types.Proposal),
		newVotes:      make(map[string]struct{}),
	}
	s.header.AccountIdx = StartAccountIdx
	s.header.VotingOpen = true
	return s
}

func (s *State) nextState() *State {
	n := &State{
		logger:        s.logger,
		db:            s.db,
		dbVer:         s.dbVer,
		validators:    deepCopySlice(s.validators),
		idxs:          make(map[string]uint64),
		acnts:         make(map[uint64]*Account),
		modifiedAcnts: make(map[uint64]uint32),
		proposalCount: s.proposalCount,
		modProposals:  make(map[uint64]*types.Proposal),
		newVotes:      make(map[string]struct{}),
	}
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

func deepCopyAccounts(source map[uint64]*Account) map[uint64]*Account {
	res := make(map[uint64]*Account, len(source))
	for k, v := range source {
		res[k] = v.Clone()
	}
	return res
}

func deepCopyMap[K comparable, V any](source map[K]V) map[K]V {
	res := make(map[K]V, len(source))
	for k, v := range source {
		res[k] = v
	}
	return res
}

func deepCopyProposals(source map[uint64]*types.Proposal) map[uint64]*types.Proposal {
	res := make(map[uint64]*types.Proposal, len(source))
	for k, v := range source {
		p := *v
		res[k] = &p
	}
	return res
}

func deepCopySlice[E any](source []E) []E {
	res := make([]E, len(source))
	copy(res, source)
	return res
}

func (s *State) Clone() *State {
	n := &State{
		logger:        s.logger,
		db:            s.db,
		dbVer:         s.dbVer,
		validators:    deepCopySlice(s.validators),
		idxs:          deepCopyMap(s.idxs),
		acnts:         deepCopyAccounts(s.acnts),
		modifiedAcnts: deepCopyMap(s.modifiedAcnts),
		proposalCount: s.proposalCount,
		countDirty:    s.countDirty,
		modProposals:  deepCopyProposals(s.modProposals),
		newVotes:      deepCopyMap(s.newVotes),
	}
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyProposalCount))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return err
		}
	}
	s.proposalCount = new(big.Int).SetBytes(val).Uint64()
	val, err = s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = s.header.Unmarshal(val)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		if s.header.RootHash == nil {
			s.header.RootHash = make([]byte, len(rootHash))
		}
		copy(s.header.RootHash, rootHash)
		if s.header.Hash == nil {
			s.header.Hash = make([]byte, len(h))
		}
		copy(s.header.Hash, h[:])
	}
	return
}

// Update flushes every pending mutation into the working tree and returns
// the would-be app hash. The tree is rolled back when any write fails, so
// a block either lands whole or not at all.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = s.header.Marshal()
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	if s.countDirty {
		_, err = s.db.Set([]byte(KeyProposalCount), big.NewInt(int64(s.proposalCount)).Bytes())
		if err != nil {
			return
		}
	}

	if len(s.modProposals) != 0 {
		idxs := make([]uint64, 0, len(s.modProposals))
		for idx := range s.modProposals {
			idxs = append(idxs, idx)
		}
		sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
		for _, idx := range idxs {
			key := fmt.Sprintf(KeyProposalBody, idx)
			proposalBz, _ := json.Marshal(s.modProposals[idx])
			_, err = s.db.Set([]byte(key), proposalBz)
			if err != nil {
				return
			}
		}
	}

	if len(s.newVotes) != 0 {
		keys := make([]string, 0, len(s.newVotes))
		for k := range s.newVotes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, err = s.db.Set([]byte(k), []byte{1})
			if err != nil {
				return
			}
		}
	}

	n := len(s.modifiedAcnts)
	if n > 0 {
		idxs := make([]uint64, n)
		i := 0
		for idx := range s.modifiedAcnts {
			idxs[i] = idx
			i += 1
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			flag := s.modifiedAcnts[idx]
			acnt := s.acnts[idx]
			key := fmt.Sprintf(KeyAccountBody, acnt.Index)
			val, err = acnt.MarshalJSON()
			if err != nil {
				return
			}
			_, err = s.db.Set([]byte(key), val)
			if err != nil {
				return
			}
			if (flag&ModifiedFlagNew == ModifiedFlagNew) || (flag&ModifiedFlagPK == ModifiedFlagPK) {
				key = fmt.Sprintf(KeyAccountIndex, acnt.Address())
				val, err = rlp.EncodeToBytes(acnt.Index)
				if err != nil {
					return
				}
				_, err = s.db.Set([]byte(key), val)
				if err != nil {
					return
				}
			}
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modifiedAcnts = make(map[uint64]uint32)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) ProposalCount() uint64 {
	return s.proposalCount
}

func (s *State) getProposal(idx uint64) (proposal *types.Proposal, err error) {
	if p, ok := s.modProposals[idx]; ok {
		return p, nil
	}
	if idx >= s.proposalCount {
		err = ErrProposalNotFound
		return
	}
	key := fmt.Sprintf(KeyProposalBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrProposalNotFound
		return
	}
	proposal = new(types.Proposal)
	err = json.Unmarshal(val, proposal)
	return
}

// GetProposal reads one proposal, pending mutations included.
func (s *State) GetProposal(idx uint64) (*types.Proposal, error) {
	p, err := s.getProposal(idx)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func voterKey(proposal, voter uint64) string {
	return fmt.Sprintf(KeyVoterRecord, proposal, voter)
}

func (s *State) hasVoted(proposal, voter uint64) (bool, error) {
	key := voterKey(proposal, voter)
	if _, ok := s.newVotes[key]; ok {
		return true, nil
	}
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return false, err
		}
	}
	return val != nil, nil
}

func (s *State) GetAccount(idx uint64) (acnt *Account, err error) {
	if idx >= s.header.AccountIdx {
		err = ErrAccountNoexists
		return
	}
	acnt = s.acnts[idx]
	if acnt != nil {
		return
	}
	key := fmt.Sprintf(KeyAccountBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	acnt = new(Account)
	err = acnt.UnmarshalJSON(val)
	if err != nil {
		acnt = nil
		return
	}
	s.acnts[idx] = acnt
	return
}

func (s *State) FindAccount(addr []byte) (acnt *Account, err error) {
	saddr := cmtcrypto.Address(addr).String()
	idx, ok := s.idxs[saddr]
	if !ok {
		key := fmt.Sprintf(KeyAccountIndex, saddr)
		val, err := s.db.Get([]byte(key))
		if err != nil {
			if err == leveldb.ErrNotFound {
				return nil, nil
			}
			return nil, err
		}
		if val == nil {
			return nil, nil
		}
		err = rlp.DecodeBytes(val, &idx)
		if err != nil {
			return nil, err
		}
		s.idxs[saddr] = idx
	}
	acnt, err = s.GetAccount(idx)

	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

func (s *State) SetOwner(addr string) {
	s.header.Owner = addr
}

func (s *State) SetTime(unix int64) {
	s.header.Time = unix
}

func (s *State) VotingOpen() bool {
	return s.header.VotingOpen
}

func (s *State) AddAccount(acnt *Account) (err error) {
	a, err := s.FindAccount(acnt.AddrBytes())
	if err != nil {
		return err
	}
	if a != nil {
		err = ErrAccountExists
		return
	}
	acnt.Index = s.header.AccountIdx
	s.header.AccountIdx += 1
	s.acnts[acnt.Index] = acnt.Clone()
	s.idxs[acnt.Address()] = acnt.Index
	s.modifiedAcnts[acnt.Index] = ModifiedFlagNew
	return
}

func (s *State) touchAccount(a *Account) {
	a.Nonce += 1
	v := s.modifiedAcnts[a.Index]
	v |= ModifiedFlagMod
	s.modifiedAcnts[a.Index] = v
	s.acnts[a.Index] = a.Clone()
}

func (s *State) Verify(btx *tx.GovTx, allowNonceGap bool) (succ bool, err error) {
	a, err := s.GetAccount(btx.Member)
	if err != nil {
		return succ, err
	}
	if a == nil {
		err = ErrTxMemberNoexists
		return
	}
	if !(a.Nonce == btx.Nonce || (allowNonceGap && a.Nonce < btx.Nonce)) {
		err = ErrTxNonceInvalid
		return
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return succ, err
	}
	succ = a.Verify(dat, btx.Sig)
	if !succ {
		err = ErrTxSigInvalid
	}
	return
}

func parseRecipient(recipient string) (addr []byte, err error) {
	if recipient == "" {
		return nil, nil
	}
	addr, err = hex.DecodeString(recipient)
	if err != nil || len(addr) != AddressLen {
		return nil, ErrInvalidRecipient
	}
	return addr, nil
}

// CreateProposal appends a proposal to the store. The caller must hold a
// positive token balance; vote tallies start at zero and the id equals the
// store length before the append. Creation is gated on the session being
// open: once voting closes, no further governance activity of any kind is
// accepted, so a closed session rejects new proposals with
// ErrVotingClosed.
func (s *State) CreateProposal(ptx *tx.ProposeTx, caller uint64, checkOnly bool) (event *types.EventProposalCreated, err error) {
	if !s.header.VotingOpen {
		err = ErrVotingClosed
		return
	}
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxMemberNoexists
		return
	}
	if ptx.Description == "" {
		err = ErrEmptyDescription
		return
	}
	if a.Balance == 0 {
		err = ErrNotAMember
		return
	}
	if _, err = parseRecipient(ptx.Recipient); err != nil {
		return
	}
	if config.StrictFunding() && ptx.Recipient != "" && ptx.Amount == 0 {
		err = ErrZeroFundingAmount
		return
	}
	if checkOnly {
		return
	}
	s.logger.Debug("apply create proposal", "member", caller, "height", s.header.Height)

	idx := s.proposalCount
	s.proposalCount += 1
	s.countDirty = true
	proposal := &types.Proposal{
		Index:           idx,
		Title:           ptx.Title,
		Description:     ptx.Description,
		Proposer:        a.Index,
		ProposerAddress: a.Address(),
		Recipient:       ptx.Recipient,
		Amount:          ptx.Amount,
		CreatedAt:       s.header.Time,
		Height:          s.header.Height,
	}
	s.modProposals[idx] = proposal

	s.touchAccount(a)

	event = &types.EventProposalCreated{
		Proposal:        idx,
		Title:           proposal.Title,
		Proposer:        a.Index,
		ProposerAddress: proposal.ProposerAddress,
		Recipient:       proposal.Recipient,
		Amount:          proposal.Amount,
	}
	return
}

// Vote records a weighted vote. The weight is the caller's token balance
// read at vote time, not a snapshot from proposal creation; an account
// that acquires tokens after creation votes with its full current balance.
func (s *State) Vote(vtx *tx.VoteTx, caller uint64, checkOnly bool) (event *types.EventVoteCast, err error) {
	if !s.header.VotingOpen {
		err = ErrVotingClosed
		return
	}
	proposal, err := s.getProposal(vtx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Executed {
		err = ErrAlreadyExecuted
		return
	}
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxMemberNoexists
		return
	}
	if a.Balance == 0 {
		err = ErrNotAMember
		return
	}
	voted, err := s.hasVoted(vtx.Proposal, caller)
	if err != nil {
		return nil, err
	}
	if voted {
		err = ErrDoubleVote
		return
	}
	if checkOnly {
		return
	}
	s.logger.Debug("apply vote", "member", caller, "proposal", vtx.Proposal, "height", s.header.Height)

	weight := a.Balance
	switch {
	case vtx.Abstain:
		proposal.AbstainVotes += weight
	case vtx.Support:
		proposal.ForVotes += weight
	default:
		proposal.AgainstVotes += weight
	}
	s.modProposals[proposal.Index] = proposal
	s.newVotes[voterKey(vtx.Proposal, caller)] = struct{}{}

	s.touchAccount(a)

	event = &types.EventVoteCast{
		Proposal:     vtx.Proposal,
		Voter:        a.Index,
		VoterAddress: a.Address(),
		Support:      vtx.Support,
		Abstain:      vtx.Abstain,
		Weight:       weight,
	}
	return
}

// executeOne finalizes a single proposal: tally, conditional mint, then
// the executed mark. Validation happens before any mutation so a failed
// execution leaves the proposal untouched.
func (s *State) executeOne(idx uint64, checkOnly bool) (event *types.EventProposalExecuted, err error) {
	proposal, err := s.getProposal(idx)
	if err != nil {
		return nil, err
	}
	if proposal.Executed {
		err = ErrAlreadyExecuted
		return
	}
	if !proposal.HasVotes() {
		err = ErrNoVotesCast
		return
	}
	recipient, err := parseRecipient(proposal.Recipient)
	if err != nil {
		return nil, err
	}
	if checkOnly {
		return
	}

	passed := proposal.Tally()
	if passed && proposal.HasFundingAction() {
		if err = s.mint(recipient, proposal.Amount); err != nil {
			return nil, err
		}
	}
	proposal.Passed = passed
	proposal.Executed = true
	s.modProposals[idx] = proposal

	event = &types.EventProposalExecuted{
		Proposal:  idx,
		Passed:    passed,
		Recipient: proposal.Recipient,
		Amount:    proposal.Amount,
	}
	return
}

// ExecuteProposal tallies and finalizes one proposal. Execution happens at
// most once per proposal, ever; a repeat attempt fails with
// ErrAlreadyExecuted and mints nothing.
func (s *State) ExecuteProposal(etx *tx.ExecuteTx, caller uint64, checkOnly bool) (event *types.EventProposalExecuted, err error) {
	if !s.header.VotingOpen {
		err = ErrVotingClosed
		return
	}
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxMemberNoexists
		return
	}
	event, err = s.executeOne(etx.Proposal, checkOnly)
	if err != nil {
		return nil, err
	}
	if !checkOnly {
		s.logger.Debug("apply execute proposal", "member", caller, "proposal", etx.Proposal, "height", s.header.Height)
		s.touchAccount(a)
	}
	return
}

// ExecuteProposals runs executeOne over the given ids in order, stopping
// at the first failure. The batch is not atomic: executions that succeeded
// before the failing id stay committed. The size cap is enforced before
// any proposal is touched.
func (s *State) ExecuteProposals(btx *tx.ExecuteBatchTx, caller uint64, checkOnly bool) (events []*types.EventProposalExecuted, err error) {
	if len(btx.Proposals) > tx.MaxBatchExecute {
		err = ErrTooManyProposals
		return
	}
	if !s.header.VotingOpen {
		err = ErrVotingClosed
		return
	}
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxMemberNoexists
		return
	}
	if !checkOnly {
		s.logger.Debug("apply execute batch", "member", caller, "proposals", len(btx.Proposals), "height", s.header.Height)
		s.touchAccount(a)
	}
	for _, idx := range btx.Proposals {
		var event *types.EventProposalExecuted
		event, err = s.executeOne(idx, checkOnly)
		if err != nil {
			return events, err
		}
		if event != nil {
			events = append(events, event)
		}
	}
	return
}

// CloseVoting irreversibly ends the governance session. Only the owner
// may close, only while open, and only once every proposal is executed.
func (s *State) CloseVoting(caller uint64, checkOnly bool) (event *types.EventVotingClosed, err error) {
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxMemberNoexists
		return
	}
	if !s.IsAuthorizedOwner(a) {
		err = ErrUnauthorized
		return
	}
	if !s.header.VotingOpen {
		err = ErrAlreadyClosed
		return
	}
	for idx := uint64(0); idx < s.proposalCount; idx++ {
		var p *types.Proposal
		p, err = s.getProposal(idx)
		if err != nil {
			return nil, err
		}
		if !p.Executed {
			err = ErrIncompleteProposals
			return
		}
	}
	if checkOnly {
		return
	}
	s.logger.Debug("apply close voting", "member", caller, "height", s.header.Height)

	s.header.VotingOpen = false
	s.touchAccount(a)

	event = &types.EventVotingClosed{
		Height: s.header.Height,
		Closer: a.Address(),
	}
	return
}

// RecoverExpired force-finalizes every unexecuted proposal whose deadline
// (creation time plus the configured duration) has passed: executed, not
// passed, no minting. Callable by any account and idempotent; proposals
// already executed are untouched.
func (s *State) RecoverExpired(caller uint64, checkOnly bool) (events []*types.EventProposalExecuted, err error) {
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxMemberNoexists
		return
	}
	if checkOnly {
		return
	}
	s.logger.Debug("apply recover expired", "member", caller, "height", s.header.Height)

	duration := config.ProposalDurationSeconds()
	for idx := uint64(0); idx < s.proposalCount; idx++ {
		var p *types.Proposal
		p, err = s.getProposal(idx)
		if err != nil {
			return nil, err
		}
		if p.Executed {
			continue
		}
		if s.header.Time <= p.Deadline(duration) {
			continue
		}
		p.Passed = false
		p.Executed = true
		s.modProposals[idx] = p
		events = append(events, &types.EventProposalExecuted{
			Proposal:  idx,
			Passed:    false,
			Recipient: p.Recipient,
			Amount:    p.Amount,
			Recovered: true,
		})
	}
	s.touchAccount(a)
	return
}

func (s *State) Validators() (updateVals map[string]abci_types.ValidatorUpdate, err error) {
	updateVals = make(map[string]abci_types.ValidatorUpdate, 0)
	start := []byte(fmt.Sprintf(KeyAccountBody, ""))
	end := PrefixEndBytes(start)
	aIterator, err := s.db.Iterator(start, end, false)
	if err != nil {
		return nil, err
	}

	valsQueue := &PowerQueue{}
	heap.Init(valsQueue)
	for ; aIterator.Valid(); aIterator.Next() {
		var act Account
		valBytes := aIterator.Value()
		err = act.UnmarshalJSON(valBytes)
		if err != nil {
			return nil, err
		}
		if len(act.PubKey) == 0 {
			continue
		}
		power := config.PowerPerBalance(act.Balance, s.header.Height)
		if power > 0 {
			heap.Push(valsQueue, validatorWithPower{
				Index:  act.Index,
				Pubkey: act.PubKey,
				Power:  power,
			})
		}
	}

	vals := make([]abci_types.ValidatorUpdate, 0)
	for valsQueue.Len() > 0 && len(vals) < MaxValidators {
		val := heap.Pop(valsQueue).(validatorWithPower)
		vals = append(vals, abci_types.Ed25519ValidatorUpdate(val.Pubkey, val.Power))
	}
	s.validators = vals

	for _, val := range vals {
		updateVals[val.PubKey.String()] = val
	}

	return updateVals, nil
}

func (s *State) ValidatorsUpdate(curVals map[string]abci_types.ValidatorUpdate) (updateVals []abci_types.ValidatorUpdate, err error) {
	nextVals, err := s.Validators()
	if err != nil {
		return nil, err
	}

	for key, val := range nextVals {
		if v, ok := curVals[key]; ok {
			if v.Power != val.Power {
				updateVals = append(updateVals, val)
			}
		} else {
			updateVals = append(updateVals, val)
		}
	}

	for key, curVal := range curVals {
		if _, ok := nextVals[key]; !ok {
			curVal.Power = 0
			updateVals = append(updateVals, curVal)
		}
	}
	return
}

func (s *State) ValidatorAccounts() (accounts []*Account, height uint64, err error) {
	vals := s.validators
	for _, val := range vals {
		pk := ed25519.PubKey(val.PubKey.GetEd25519()[:])
		addr := pk.Address()[:]
		act, _ := s.FindAccount(addr)
		if act != nil {
			accounts = append(accounts, act)
		}
	}
	height = s.header.Height
	return
}

type validatorWithPower struct {
	Index  uint64
	Pubkey []byte
	Power  int64
}

type PowerQueue []validatorWithPower

func (pq PowerQueue) Len() int { return len(pq) }

func (pq PowerQueue) Less(i, j int) bool {
	if pq[i].Power == pq[j].Power {
		return pq[i].Index < pq[j].Index
	}
	return pq[i].Power > pq[j].Power
}

func (pq PowerQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *PowerQueue) Push(x any) {
	item := x.(validatorWithPower)
	*pq = append(*pq, item)
}

func (pq *PowerQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
