package state

import (
	"encoding/hex"
	"testing"

	"github.com/agorahub/agora-node/config"
	"github.com/agorahub/agora-node/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *StateDB {
	t.Helper()
	db, err := NewStateDB(t.TempDir(), cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func addMember(t *testing.T, st *State, balance uint64) *Account {
	t.Helper()
	priv := ed25519.GenPrivKey()
	acnt := &Account{Balance: balance}
	acnt.SetPubKey(priv.PubKey().Bytes())
	require.NoError(t, st.AddAccount(acnt))
	return acnt
}

func propose(t *testing.T, st *State, caller uint64, description string) uint64 {
	t.Helper()
	event, err := st.CreateProposal(&tx.ProposeTx{Title: "t", Description: description}, caller, false)
	require.NoError(t, err)
	require.NotNil(t, event)
	return event.Proposal
}

func TestCreateProposal(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)

	event, err := st.CreateProposal(&tx.ProposeTx{Title: "fund the guild", Description: "send tokens"}, m.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(0), event.Proposal)
	require.Equal(t, uint64(1), st.ProposalCount())

	p, err := st.GetProposal(0)
	require.NoError(t, err)
	require.Equal(t, "fund the guild", p.Title)
	require.Equal(t, m.Index, p.Proposer)
	require.False(t, p.Executed)
	require.Zero(t, p.ForVotes)
	require.Zero(t, p.AgainstVotes)
	require.Zero(t, p.AbstainVotes)

	// ids equal the store length before the append
	idx := propose(t, st, m.Index, "second")
	require.Equal(t, uint64(1), idx)
}

func TestCreateProposalValidation(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	member := addMember(t, st, 100)
	broke := addMember(t, st, 0)

	_, err := st.CreateProposal(&tx.ProposeTx{Description: ""}, member.Index, false)
	require.ErrorIs(t, err, ErrEmptyDescription)

	_, err = st.CreateProposal(&tx.ProposeTx{Description: "d"}, broke.Index, false)
	require.ErrorIs(t, err, ErrNotAMember)

	_, err = st.CreateProposal(&tx.ProposeTx{Description: "d"}, 1<<40, false)
	require.ErrorIs(t, err, ErrAccountNoexists)

	_, err = st.CreateProposal(&tx.ProposeTx{Description: "d", Recipient: "zzzz"}, member.Index, false)
	require.ErrorIs(t, err, ErrInvalidRecipient)

	// checkOnly validates without appending
	_, err = st.CreateProposal(&tx.ProposeTx{Description: "d"}, member.Index, true)
	require.NoError(t, err)
	require.Zero(t, st.ProposalCount())
}

func TestStrictFundingValidation(t *testing.T) {
	defer config.SetGovernanceParams(0, true)
	recipient := hex.EncodeToString(make([]byte, AddressLen))

	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)

	config.SetGovernanceParams(0, true)
	_, err := st.CreateProposal(&tx.ProposeTx{Description: "d", Recipient: recipient, Amount: 0}, m.Index, false)
	require.ErrorIs(t, err, ErrZeroFundingAmount)

	config.SetGovernanceParams(0, false)
	_, err = st.CreateProposal(&tx.ProposeTx{Description: "d", Recipient: recipient, Amount: 0}, m.Index, false)
	require.NoError(t, err)
}

func TestVoteWeightIsBalanceAtVoteTime(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m1 := addMember(t, st, 100)
	m2 := addMember(t, st, 30)
	idx := propose(t, st, m1.Index, "d")

	// m2 acquires tokens after creation and votes with the full balance
	require.NoError(t, st.Mint(m2.AddrBytes(), 20))

	event, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m2.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(50), event.Weight)

	p, err := st.GetProposal(idx)
	require.NoError(t, err)
	require.Equal(t, uint64(50), p.ForVotes)
}

func TestVoteAbstainOverridesSupport(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)
	idx := propose(t, st, m.Index, "d")

	event, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true, Abstain: true}, m.Index, false)
	require.NoError(t, err)
	require.True(t, event.Abstain)

	p, err := st.GetProposal(idx)
	require.NoError(t, err)
	require.Equal(t, uint64(100), p.AbstainVotes)
	require.Zero(t, p.ForVotes)
}

func TestDoubleVoteRejected(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)
	idx := propose(t, st, m.Index, "d")

	_, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m.Index, false)
	require.NoError(t, err)
	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: false}, m.Index, false)
	require.ErrorIs(t, err, ErrDoubleVote)

	// a different proposal is a fresh ballot
	idx2 := propose(t, st, m.Index, "d2")
	_, err = st.Vote(&tx.VoteTx{Proposal: idx2, Support: false}, m.Index, false)
	require.NoError(t, err)
}

func TestVoteValidation(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)
	broke := addMember(t, st, 0)
	idx := propose(t, st, m.Index, "d")

	_, err := st.Vote(&tx.VoteTx{Proposal: 42, Support: true}, m.Index, false)
	require.ErrorIs(t, err, ErrProposalNotFound)

	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, broke.Index, false)
	require.ErrorIs(t, err, ErrNotAMember)

	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m.Index, false)
	require.NoError(t, err)
	_, err = st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, m.Index, false)
	require.NoError(t, err)

	// no votes after execution
	m2 := addMember(t, st, 10)
	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m2.Index, false)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestExecuteMajorityAndMint(t *testing.T) {
	recipientAddr := ed25519.GenPrivKey().PubKey().Address()
	recipient := hex.EncodeToString(recipientAddr)

	db := newTestDB(t)
	st := db.NewState()
	m1 := addMember(t, st, 60)
	m2 := addMember(t, st, 40)

	event, err := st.CreateProposal(&tx.ProposeTx{Description: "fund", Recipient: recipient, Amount: 500}, m1.Index, false)
	require.NoError(t, err)
	idx := event.Proposal

	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m1.Index, false)
	require.NoError(t, err)
	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: false}, m2.Index, false)
	require.NoError(t, err)

	execEvent, err := st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, m2.Index, false)
	require.NoError(t, err)
	require.True(t, execEvent.Passed)

	bal, err := st.BalanceOf(recipientAddr)
	require.NoError(t, err)
	require.Equal(t, uint64(500), bal)

	p, err := st.GetProposal(idx)
	require.NoError(t, err)
	require.True(t, p.Executed)
	require.True(t, p.Passed)

	// execution happens at most once, ever
	_, err = st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, m1.Index, false)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
	bal, err = st.BalanceOf(recipientAddr)
	require.NoError(t, err)
	require.Equal(t, uint64(500), bal)
}

func TestExecuteAbstainDilutesMajority(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m1 := addMember(t, st, 40)
	m2 := addMember(t, st, 60)
	idx := propose(t, st, m1.Index, "d")

	// 40 for, 60 abstain: 40*100/100 < 50, fails
	_, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m1.Index, false)
	require.NoError(t, err)
	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Abstain: true}, m2.Index, false)
	require.NoError(t, err)

	event, err := st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, m1.Index, false)
	require.NoError(t, err)
	require.False(t, event.Passed)
}

func TestExecuteExactThresholdPasses(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m1 := addMember(t, st, 50)
	m2 := addMember(t, st, 50)
	idx := propose(t, st, m1.Index, "d")

	_, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m1.Index, false)
	require.NoError(t, err)
	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: false}, m2.Index, false)
	require.NoError(t, err)

	event, err := st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, m1.Index, false)
	require.NoError(t, err)
	require.True(t, event.Passed)
}

func TestExecuteNoVotes(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)
	idx := propose(t, st, m.Index, "d")

	_, err := st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, m.Index, false)
	require.ErrorIs(t, err, ErrNoVotesCast)

	p, err := st.GetProposal(idx)
	require.NoError(t, err)
	require.False(t, p.Executed)
}

func TestExecuteBatchCapBeforeTouching(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)
	idx := propose(t, st, m.Index, "d")
	_, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m.Index, false)
	require.NoError(t, err)

	ids := make([]uint64, tx.MaxBatchExecute+1)
	for i := range ids {
		ids[i] = idx
	}
	events, err := st.ExecuteProposals(&tx.ExecuteBatchTx{Proposals: ids}, m.Index, false)
	require.ErrorIs(t, err, ErrTooManyProposals)
	require.Empty(t, events)

	p, err := st.GetProposal(idx)
	require.NoError(t, err)
	require.False(t, p.Executed)
}

func TestExecuteBatchPartialFailure(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)

	p0 := propose(t, st, m.Index, "d0")
	p1 := propose(t, st, m.Index, "d1")
	p2 := propose(t, st, m.Index, "d2")

	// votes on p0 and p2 only, p1 fails mid-batch
	_, err := st.Vote(&tx.VoteTx{Proposal: p0, Support: true}, m.Index, false)
	require.NoError(t, err)
	_, err = st.Vote(&tx.VoteTx{Proposal: p2, Support: true}, m.Index, false)
	require.NoError(t, err)

	events, err := st.ExecuteProposals(&tx.ExecuteBatchTx{Proposals: []uint64{p0, p1, p2}}, m.Index, false)
	require.ErrorIs(t, err, ErrNoVotesCast)
	require.Len(t, events, 1)
	require.Equal(t, p0, events[0].Proposal)

	// the earlier execution stays committed, the later id is untouched
	got0, err := st.GetProposal(p0)
	require.NoError(t, err)
	require.True(t, got0.Executed)
	got2, err := st.GetProposal(p2)
	require.NoError(t, err)
	require.False(t, got2.Executed)
}

func TestExecuteBatchDuplicateIds(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)
	idx := propose(t, st, m.Index, "d")
	_, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m.Index, false)
	require.NoError(t, err)

	events, err := st.ExecuteProposals(&tx.ExecuteBatchTx{Proposals: []uint64{idx, idx}}, m.Index, false)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
	require.Len(t, events, 1)
}

func TestCloseVoting(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	owner := addMember(t, st, 100)
	other := addMember(t, st, 100)
	st.SetOwner(owner.Address())

	idx := propose(t, st, other.Index, "d")

	_, err := st.CloseVoting(other.Index, false)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = st.CloseVoting(owner.Index, false)
	require.ErrorIs(t, err, ErrIncompleteProposals)

	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, owner.Index, false)
	require.NoError(t, err)
	_, err = st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, owner.Index, false)
	require.NoError(t, err)

	event, err := st.CloseVoting(owner.Index, false)
	require.NoError(t, err)
	require.Equal(t, owner.Address(), event.Closer)
	require.False(t, st.VotingOpen())

	// closure is irreversible and gates every session operation
	_, err = st.CloseVoting(owner.Index, false)
	require.ErrorIs(t, err, ErrAlreadyClosed)
	_, err = st.CreateProposal(&tx.ProposeTx{Description: "d"}, other.Index, false)
	require.ErrorIs(t, err, ErrVotingClosed)
	_, err = st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, other.Index, false)
	require.ErrorIs(t, err, ErrVotingClosed)
	_, err = st.ExecuteProposal(&tx.ExecuteTx{Proposal: idx}, other.Index, false)
	require.ErrorIs(t, err, ErrVotingClosed)
}

func TestCloseVotingAuthorityBeforeStateCheck(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	owner := addMember(t, st, 100)
	other := addMember(t, st, 100)
	st.SetOwner(owner.Address())

	_, err := st.CloseVoting(owner.Index, false)
	require.NoError(t, err)

	// a non-owner on a closed session still fails on authority
	_, err = st.CloseVoting(other.Index, false)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRecoverExpired(t *testing.T) {
	defer config.SetGovernanceParams(0, true)
	config.SetGovernanceParams(60, true)

	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)

	st.SetTime(1000)
	stale := propose(t, st, m.Index, "stale")
	executed := propose(t, st, m.Index, "done")
	_, err := st.Vote(&tx.VoteTx{Proposal: executed, Support: true}, m.Index, false)
	require.NoError(t, err)
	_, err = st.ExecuteProposal(&tx.ExecuteTx{Proposal: executed}, m.Index, false)
	require.NoError(t, err)

	st.SetTime(1060)
	events, err := st.RecoverExpired(m.Index, false)
	require.NoError(t, err)
	require.Empty(t, events, "deadline not yet passed")

	st.SetTime(1061)
	events, err = st.RecoverExpired(m.Index, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, stale, events[0].Proposal)
	require.True(t, events[0].Recovered)
	require.False(t, events[0].Passed)

	p, err := st.GetProposal(stale)
	require.NoError(t, err)
	require.True(t, p.Executed)
	require.False(t, p.Passed)

	// idempotent: recovered proposals are executed, a second sweep skips them
	events, err = st.RecoverExpired(m.Index, false)
	require.NoError(t, err)
	require.Empty(t, events)

	_, err = st.ExecuteProposal(&tx.ExecuteTx{Proposal: stale}, m.Index, false)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestRecoverSkipsFundedExpired(t *testing.T) {
	defer config.SetGovernanceParams(0, true)
	config.SetGovernanceParams(60, true)

	recipientAddr := ed25519.GenPrivKey().PubKey().Address()
	recipient := hex.EncodeToString(recipientAddr)

	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)

	st.SetTime(1000)
	event, err := st.CreateProposal(&tx.ProposeTx{Description: "fund", Recipient: recipient, Amount: 500}, m.Index, false)
	require.NoError(t, err)
	_, err = st.Vote(&tx.VoteTx{Proposal: event.Proposal, Support: true}, m.Index, false)
	require.NoError(t, err)

	// recovery never mints, even when the tally would pass
	st.SetTime(2000)
	events, err := st.RecoverExpired(m.Index, false)
	require.NoError(t, err)
	require.Len(t, events, 1)

	bal, err := st.BalanceOf(recipientAddr)
	require.NoError(t, err)
	require.Zero(t, bal)
}

func TestMint(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)

	// crediting an existing account
	require.NoError(t, st.Mint(m.AddrBytes(), 50))
	bal, err := st.BalanceOf(m.AddrBytes())
	require.NoError(t, err)
	require.Equal(t, uint64(150), bal)

	// minting to an unknown address creates an address-only account
	addr := ed25519.GenPrivKey().PubKey().Address()
	require.NoError(t, st.Mint(addr, 10))
	acnt, err := st.FindAccount(addr)
	require.NoError(t, err)
	require.NotNil(t, acnt)
	require.Equal(t, uint64(10), acnt.Balance)
	require.Empty(t, acnt.PubKey)

	// address-only accounts hold tokens but cannot sign
	require.False(t, acnt.Verify([]byte("x"), [][]byte{make([]byte, 64)}))
}

func TestStatePersistence(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	m := addMember(t, st, 100)
	st.SetChainId("agora-test")
	st.SetOwner(m.Address())
	st.SetTime(1000)
	idx := propose(t, st, m.Index, "persisted")
	_, err := st.Vote(&tx.VoteTx{Proposal: idx, Support: true}, m.Index, false)
	require.NoError(t, err)

	_, err = st.Update()
	require.NoError(t, err)
	_, err = db.SetState(st)
	require.NoError(t, err)

	st2 := db.NewState()
	require.Equal(t, uint64(1), st2.ProposalCount())
	p, err := st2.GetProposal(idx)
	require.NoError(t, err)
	require.Equal(t, "persisted", p.Description)
	require.Equal(t, uint64(100), p.ForVotes)

	voted, err := st2.hasVoted(idx, m.Index)
	require.NoError(t, err)
	require.True(t, voted)

	acnt, err := st2.GetAccount(m.Index)
	require.NoError(t, err)
	require.Equal(t, uint64(2), acnt.Nonce, "propose and vote each bump the nonce")
}

func TestVerify(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	st.SetChainId("agora-test")

	priv := ed25519.GenPrivKey()
	acnt := &Account{Balance: 100}
	acnt.SetPubKey(priv.PubKey().Bytes())
	require.NoError(t, st.AddAccount(acnt))

	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tx.GovTxTypePropose,
		Nonce:   0,
		Member:  acnt.Index,
		Tx:      &tx.ProposeTx{Description: "d"},
	}
	dat, err := btx.SigData([]byte("agora-test"))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}

	ok, err := st.Verify(btx, false)
	require.NoError(t, err)
	require.True(t, ok)

	// a signature bound to another chain id fails
	st.SetChainId("other-chain")
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxSigInvalid)
	st.SetChainId("agora-test")

	// nonce gaps pass only when allowed
	btx.Nonce = 5
	dat, err = btx.SigData([]byte("agora-test"))
	require.NoError(t, err)
	sig, err = priv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxNonceInvalid)
	ok, err = st.Verify(btx, true)
	require.NoError(t, err)
	require.True(t, ok)
}
