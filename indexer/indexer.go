package indexer

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/agorahub/agora-node/state"
	"github.com/agorahub/agora-node/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// ChainIndexer tails block results from the node RPC and mirrors the
// governance ledger into sqlite for the HTTP API.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	cli           *comethttp.HTTP
	eventHandlers map[string]eventHandler
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Proposal{}, &Vote{}, &Member{}, &Session{}, &Height{}).Error; err != nil {
		return nil, err
	}
	h := Height{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := ChainIndexer{
		logger:        logger.With("module", "indexer"),
		Url:           chainUrl,
		Height:        int64(h.Height + 1),
		db:            db,
		cli:           cli,
		eventHandlers: map[string]eventHandler{},
	}

	c.eventHandlers = map[string]eventHandler{
		types.EventProposalCreatedType:  c.handleEventProposalCreated,
		types.EventVoteCastType:         c.handleEventVoteCast,
		types.EventProposalExecutedType: c.handleEventProposalExecuted,
		types.EventVotingClosedType:     c.handleEventVotingClosed,
	}
	return &c, nil
}

type eventHandler func(ctx context.Context, event abci.Event, height int64)

func (c *ChainIndexer) handleEvent(ctx context.Context, event abci.Event, height int64) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, event, height)
	}
}

func (c *ChainIndexer) handleEventProposalCreated(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalCreated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	proposal := Proposal{
		ProposalIndex:   ev.Proposal,
		Title:           ev.Title,
		ProposerIndex:   ev.Proposer,
		ProposerAddress: ev.ProposerAddress,
		Recipient:       ev.Recipient,
		Amount:          ev.Amount,
		NewHeight:       uint64(height),
		CreateTimestamp: time.Now().Unix(),
	}
	var existing Proposal
	err := c.db.Where("proposal_index = ?", ev.Proposal).First(&existing).Error
	if err == nil {
		proposal.Id = existing.Id
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
	c.refreshMember(ctx, ev.Proposer, "", uint64(height))
}

func (c *ChainIndexer) handleEventVoteCast(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventVoteCast(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	vote := Vote{
		Proposal:     ev.Proposal,
		VoterIndex:   ev.Voter,
		VoterAddress: ev.VoterAddress,
		Support:      ev.Support,
		Abstain:      ev.Abstain,
		Weight:       ev.Weight,
		Height:       uint64(height),
	}
	if err := c.db.Create(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
	}
	c.refreshMember(ctx, ev.Voter, "", uint64(height))
}

func (c *ChainIndexer) handleEventProposalExecuted(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalExecuted(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.Where("proposal_index = ?", ev.Proposal).First(&proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.Executed = true
	proposal.Passed = ev.Passed
	proposal.Recovered = ev.Recovered
	proposal.ExecHeight = uint64(height)
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
	// A passing funded proposal minted tokens to the recipient; pull the
	// fresh balance.
	if ev.Passed && ev.Recipient != "" {
		c.refreshMember(ctx, 0, ev.Recipient, uint64(height))
	}
}

func (c *ChainIndexer) handleEventVotingClosed(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventVotingClosed(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	session := Session{
		Id:          1,
		VotingOpen:  false,
		CloseHeight: ev.Height,
		Closer:      ev.Closer,
	}
	if err := c.db.Save(&session).Error; err != nil {
		c.logger.Error("save session fail", "err", err)
	}
}

// refreshMember re-queries one account from the node and upserts its row.
func (c *ChainIndexer) refreshMember(ctx context.Context, index uint64, address string, height uint64) {
	acc, err := c.queryAccount(ctx, index, address)
	if err != nil || acc == nil {
		c.logger.Error("query account fail", "index", index, "address", address, "err", err)
		return
	}
	member := Member{
		Id:      acc.Index,
		Address: acc.Address(),
		Balance: acc.Balance,
		Height:  height,
	}
	if err := c.db.Save(&member).Error; err != nil {
		c.logger.Error("save member fail", "err", err)
	}
}

func (c *ChainIndexer) Start(ctx context.Context) {
	var err error
	ticker := time.NewTicker(time.Second)
	time.Sleep(10 * time.Second)
	c.syncGenesisMembers(ctx)

	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.cli == nil {
				c.cli, err = comethttp.New(c.Url, "/websocket")
				if err != nil {
					c.logger.Error("connect fail", "err", err)
					continue
				}
			}
			b, err := c.cli.Status(context.TODO())
			if err != nil {
				c.logger.Error("get status fail", "err", err)
				if !c.cli.IsRunning() {
					c.cli.Stop()
					c.cli, err = comethttp.New(c.Url, "/websocket")
					if err != nil {
						c.logger.Error("reconnect fail", "err", err)
						continue
					}
				}
				continue
			}
			for b.SyncInfo.LatestBlockHeight > c.Height {
				time.Sleep(time.Millisecond * 100)
				c.logger.Info("indexer syncing", "height", c.Height)
				events, err := c.cli.BlockResults(ctx, &c.Height)
				if err != nil {
					c.logger.Error("get block results fail", "err", err)
					if !c.cli.IsRunning() {
						c.cli.Stop()
						c.cli, err = comethttp.New(c.Url, "/websocket")
						if err != nil {
							c.logger.Error("reconnect fail", "err", err)
							continue
						}
					}
					break
				}
				for _, res := range events.TxsResults {
					for _, event := range res.Events {
						c.handleEvent(ctx, event, c.Height)
					}
				}
				if err := c.db.Save(&Height{
					Id:     1,
					Height: uint64(c.Height),
				}).Error; err != nil {
					c.logger.Error("save height fail", "err", err)
					continue
				}
				c.Height++
			}
		}
	}
}

// syncGenesisMembers seeds the member table from the current validator
// set, since genesis accounts never appear in any event.
func (c *ChainIndexer) syncGenesisMembers(ctx context.Context) {
	res, err := c.cli.Validators(ctx, nil, nil, nil)
	if err != nil {
		c.logger.Error("get validators fail", "err", err)
		return
	}
	for _, v := range res.Validators {
		acc, err := c.queryAccount(ctx, 0, v.Address.String())
		if err != nil || acc == nil {
			c.logger.Error("query validator account fail", "err", err)
			continue
		}
		member := Member{
			Id:      acc.Index,
			Address: acc.Address(),
			Balance: acc.Balance,
		}
		if err := c.db.Save(&member).Error; err != nil {
			c.logger.Error("save member fail", "err", err)
		}
	}
}

func (c *ChainIndexer) queryAccount(ctx context.Context, index uint64, address string) (*state.Account, error) {
	var err error
	var dat []byte
	if len(address) > 0 {
		dat, err = hex.DecodeString(address)
		if err != nil {
			return nil, err
		}
	} else {
		s := fmt.Sprintf("0%x", index)
		if len(s)&1 == 1 {
			s = s[1:]
		}
		dat, _ = hex.DecodeString(s)
	}
	res, err := c.cli.ABCIQuery(ctx, "/accounts/", dat)
	if err != nil {
		c.logger.Error("ABCIQuery fail", "err", err)
		if !c.cli.IsRunning() {
			c.cli.Stop()
			c.cli, err = comethttp.New(c.Url, "/websocket")
			if err != nil {
				c.logger.Error("reconnect fail", "err", err)
				return nil, err
			}
		}
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, errors.New("account not found")
	}
	var act state.Account
	err = act.UnmarshalJSON(res.Response.Value)
	if err != nil {
		return nil, err
	}
	return &act, err
}

func (c *ChainIndexer) getProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Order("proposal_index desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalByIndex(idx uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("proposal_index = ?", idx).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *ChainIndexer) getProposalsByProposerAddr(proposerAddr string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("proposer_address = ?", proposerAddr).Order("proposal_index desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("proposer_address = ?", proposerAddr).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("voter_address = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("voter_address = ?", voter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getMembers(page int, pageSize int) ([]Member, uint64, error) {
	var members []Member
	err := c.db.Order("id asc").Offset(page * pageSize).Limit(pageSize).Find(&members).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Member{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (c *ChainIndexer) getSession() (Session, error) {
	session := Session{Id: 1, VotingOpen: true}
	err := c.db.First(&session).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return session, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session.VotingOpen = true
	}
	return session, nil
}
