package main

import (
	"github.com/agorahub/agora-node/tx"
	"github.com/spf13/cobra"
)

type proposeArguments struct {
	Url         string
	Index       uint64
	Nonce       uint64
	Skey        string
	Title       string
	Description string
	Recipient   string
	Amount      uint64
	NoSend      bool
}

var proposeArgs proposeArguments

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Submit a new proposal",
	Long:  ``,
	Run:   proposeRun,
}

func init() {
	urlFlag(proposeCmd, &proposeArgs.Url)
	proposeCmd.Flags().Uint64VarP(&proposeArgs.Index, "index", "i", 0, "account index")
	proposeCmd.Flags().Uint64VarP(&proposeArgs.Nonce, "nonce", "n", 0, "account nonce")
	proposeCmd.Flags().StringVarP(&proposeArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	proposeCmd.Flags().StringVarP(&proposeArgs.Title, "title", "t", "", "proposal title")
	proposeCmd.Flags().StringVarP(&proposeArgs.Description, "description", "m", "", "proposal description")
	proposeCmd.Flags().StringVarP(&proposeArgs.Recipient, "recipient", "r", "", "funding recipient address, empty for none")
	proposeCmd.Flags().Uint64VarP(&proposeArgs.Amount, "amount", "a", 0, "funding amount")
	proposeCmd.Flags().BoolVarP(&proposeArgs.NoSend, "nosend", "", false, "not send transaction but print signed payload")
}

func proposeRun(cmd *cobra.Command, args []string) {
	stx := &tx.ProposeTx{
		Title:       proposeArgs.Title,
		Description: proposeArgs.Description,
		Recipient:   proposeArgs.Recipient,
		Amount:      proposeArgs.Amount,
	}
	sendGovTx(proposeArgs.Url, proposeArgs.Index, proposeArgs.Nonce, proposeArgs.Skey, tx.GovTxTypePropose, stx, proposeArgs.NoSend)
}
