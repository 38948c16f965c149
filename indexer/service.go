package indexer

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Service exposes the indexed governance ledger over HTTP.
type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
}

func NewService(listenAddr string, indexer *ChainIndexer) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: listenAddr,
	}
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getMembers", s.handleGetMembers)
	s.engine.POST("/getSession", s.handleGetSession)
	return s
}

func (s *Service) Start() {
	s.engine.Run(s.listenAddr)
}

type ProposalInfo struct {
	Proposal Proposal `json:"proposal"`
	Votes    []Vote   `json:"votes"`
	VoteCnt  uint64   `json:"voteCnt"`
}

type GetProposalsReq struct {
	ProposalIndex   *uint64 `json:"proposalIndex"`
	ProposerAddress string  `json:"proposer"`
	Page            int     `json:"page"`
	PageSize        int     `json:"pageSize"`
}

type GetProposalResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalResponse
	response.Proposals = make([]ProposalInfo, 0)
	var err error
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.ProposalIndex != nil {
		proposalInfo, err := s.getProposalInfoByIndex(*requestData.ProposalIndex)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	proposalTotal := uint64(0)
	proposals := make([]Proposal, 0)
	if requestData.ProposerAddress != "" {
		proposals, proposalTotal, err = s.indexer.getProposalsByProposerAddr(requestData.ProposerAddress, requestData.Page, requestData.PageSize)
	} else {
		proposals, proposalTotal, err = s.indexer.getProposals(requestData.Page, requestData.PageSize)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response.Total = proposalTotal
	for _, proposal := range proposals {
		proposalInfo, err := s.getProposalInfoByIndex(proposal.ProposalIndex)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
	}
	c.JSON(http.StatusOK, response)
}

func (s *Service) getProposalInfoByIndex(idx uint64) (ProposalInfo, error) {
	proposal, err := s.indexer.getProposalByIndex(idx)
	if err != nil {
		return ProposalInfo{}, err
	}
	votes, total, err := s.indexer.getVotesByProposal(idx, 0, 1000)
	if err != nil {
		return ProposalInfo{}, err
	}
	return ProposalInfo{
		Proposal: proposal,
		Votes:    votes,
		VoteCnt:  total,
	}, nil
}

type GetVotesReq struct {
	ProposalIndex *uint64 `json:"proposalIndex"`
	VoterAddress  string  `json:"voter"`
	Page          int     `json:"page"`
	PageSize      int     `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []Vote `json:"votes"`
	Total uint64 `json:"total"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var response GetVotesResponse
	response.Votes = make([]Vote, 0)
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var votes []Vote
	var total uint64
	var err error
	switch {
	case requestData.ProposalIndex != nil:
		votes, total, err = s.indexer.getVotesByProposal(*requestData.ProposalIndex, requestData.Page, requestData.PageSize)
	case requestData.VoterAddress != "":
		votes, total, err = s.indexer.getVotesByVoter(requestData.VoterAddress, requestData.Page, requestData.PageSize)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalIndex or voter is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Votes = votes
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetMembersReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type GetMembersResponse struct {
	Members []Member `json:"members"`
	Total   uint64   `json:"total"`
}

func (s *Service) handleGetMembers(c *gin.Context) {
	var response GetMembersResponse
	response.Members = make([]Member, 0)
	var requestData GetMembersReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	members, total, err := s.indexer.getMembers(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Members = members
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetSessionResponse struct {
	Session Session `json:"session"`
}

func (s *Service) handleGetSession(c *gin.Context) {
	session, err := s.indexer.getSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetSessionResponse{Session: session})
}
