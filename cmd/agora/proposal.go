package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type proposalArguments struct {
	Url   string
	Index uint64
	Count bool
}

var proposalArgs proposalArguments

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Query a proposal by index, or the proposal count",
	Long:  ``,
	Run:   proposalRun,
}

func init() {
	urlFlag(proposalCmd, &proposalArgs.Url)
	proposalCmd.Flags().Uint64VarP(&proposalArgs.Index, "index", "i", 0, "proposal index")
	proposalCmd.Flags().BoolVarP(&proposalArgs.Count, "count", "c", false, "query the proposal count instead")
}

func proposalRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(proposalArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	ctx := context.Background()
	var dat []byte
	if !proposalArgs.Count {
		dat = make([]byte, 8)
		binary.BigEndian.PutUint64(dat, proposalArgs.Index)
	}
	res, err := cli.ABCIQuery(ctx, "/proposals/", dat)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Printf("proposal not found, code:%v\n", res.Response.Code)
		return
	}
	var out json.RawMessage = res.Response.Value
	pretty, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(pretty))
}
