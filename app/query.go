package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/agorahub/agora-node/state"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func (app *GovApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = 404
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

type AccountQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewAccountQuerier(db *state.StateDB, logger cmtlog.Logger) (q *AccountQuerier) {
	q = &AccountQuerier{
		db:     db,
		logger: logger,
	}
	return
}

// Query looks an account up by 20-byte address or by big-endian index.
func (q *AccountQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var a *state.Account
	var height uint64
	if len(req.Data) == 20 {
		a, height, _ = q.db.GetAccountByAddress(req.Data)
	} else if len(req.Data) <= 8 {
		var idx uint64
		for _, v := range req.Data {
			idx <<= 8
			idx |= uint64(v)
		}
		a, height, _ = q.db.GetAccountByIndex(idx)
	}
	if a != nil {
		res.Value, _ = a.MarshalJSON()
		res.Height = int64(height)
	} else {
		res.Code = 1
	}
	return
}

type ProposalQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewProposalQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ProposalQuerier) {
	q = &ProposalQuerier{
		db:     db,
		logger: logger,
	}
	return
}

// Query returns one proposal by big-endian index, or the proposal count
// when no data is given.
func (q *ProposalQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	if len(req.Data) == 0 {
		count, height := q.db.ProposalCount()
		res.Value, _ = json.Marshal(map[string]uint64{"count": count})
		res.Height = int64(height)
		return
	}
	if len(req.Data) > 8 {
		res.Code = 1
		return
	}
	var idx uint64
	for _, v := range req.Data {
		idx <<= 8
		idx |= uint64(v)
	}
	proposal, height, err := q.db.GetProposalByIndex(idx)
	if err != nil || proposal == nil {
		res.Code = 1
		err = nil
		return
	}
	res.Value, _ = json.Marshal(proposal)
	res.Height = int64(height)
	return
}

type SessionQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewSessionQuerier(db *state.StateDB, logger cmtlog.Logger) (q *SessionQuerier) {
	q = &SessionQuerier{
		db:     db,
		logger: logger,
	}
	return
}

type sessionInfo struct {
	VotingOpen bool   `json:"votingOpen"`
	Owner      string `json:"owner"`
	Height     uint64 `json:"height"`
	Proposals  uint64 `json:"proposals"`
}

func (q *SessionQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	header := q.db.Header()
	count, _ := q.db.ProposalCount()
	info := sessionInfo{
		VotingOpen: header.VotingOpen,
		Owner:      header.Owner,
		Height:     header.Height,
		Proposals:  count,
	}
	res.Value, _ = json.Marshal(&info)
	res.Height = int64(header.Height)
	return
}
