package handler

import (
	"context"

	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/tx"
	"github.com/agorahub/agora-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ProposeTxHandler struct {
	logger cmtlog.Logger

	memberSet map[uint64]bool
}

func NewProposeTxHandler(logger cmtlog.Logger) (h *ProposeTxHandler) {
	logger = logger.With("module", "proposeTx")
	h = &ProposeTxHandler{
		logger:    logger,
		memberSet: make(map[uint64]bool),
	}
	return
}

func (h *ProposeTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ProposeTx)
	_, err1 := st.CreateProposal(stx, btx.Member, true)
	if err1 != nil {
		h.logger.Info("CheckTx ProposeTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ProposeTxHandler) NewContext(ctx context.Context) {
	h.memberSet = make(map[uint64]bool)
}

func (h *ProposeTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	if _, ok := h.memberSet[btx.Member]; ok {
		res.Code = 1
		res.Log = state.ErrOneActionInBlock.Error()
		return
	}
	wtx := btx.Tx.(*tx.ProposeTx)
	event, err := st.CreateProposal(wtx, btx.Member, false)
	if err != nil {
		h.logger.Info("apply ProposeTx fail", "err", err)
		res.Code = 1
		res.Log = err.Error()
		err = nil
		return
	}
	h.memberSet[btx.Member] = true
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalCreated(event)}
	}
	return
}

func (h *ProposeTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ProposeTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
