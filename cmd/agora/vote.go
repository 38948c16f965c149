package main

import (
	"github.com/agorahub/agora-node/tx"
	"github.com/spf13/cobra"
)

type voteArguments struct {
	Url      string
	Index    uint64
	Nonce    uint64
	Skey     string
	Proposal uint64
	Support  bool
	Abstain  bool
	NoSend   bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast a weighted vote on a proposal",
	Long:  ``,
	Run:   voteRun,
}

func init() {
	urlFlag(voteCmd, &voteArgs.Url)
	voteCmd.Flags().Uint64VarP(&voteArgs.Index, "index", "i", 0, "account index")
	voteCmd.Flags().Uint64VarP(&voteArgs.Nonce, "nonce", "n", 0, "account nonce")
	voteCmd.Flags().StringVarP(&voteArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	voteCmd.Flags().Uint64VarP(&voteArgs.Proposal, "proposal", "p", 0, "proposal index")
	voteCmd.Flags().BoolVarP(&voteArgs.Support, "support", "y", false, "vote in favor")
	voteCmd.Flags().BoolVarP(&voteArgs.Abstain, "abstain", "b", false, "abstain, overrides support")
	voteCmd.Flags().BoolVarP(&voteArgs.NoSend, "nosend", "", false, "not send transaction but print signed payload")
}

func voteRun(cmd *cobra.Command, args []string) {
	stx := &tx.VoteTx{
		Proposal: voteArgs.Proposal,
		Support:  voteArgs.Support,
		Abstain:  voteArgs.Abstain,
	}
	sendGovTx(voteArgs.Url, voteArgs.Index, voteArgs.Nonce, voteArgs.Skey, tx.GovTxTypeVote, stx, voteArgs.NoSend)
}
