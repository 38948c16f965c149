package types

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventProposalCreatedType  = "proposal_created"
	EventVoteCastType         = "vote_cast"
	EventProposalExecutedType = "proposal_executed"
	EventVotingClosedType     = "voting_closed"
	EventUpdateValidatorType  = "update_validator"
)

type EventProposalCreated struct {
	Proposal        uint64 `json:"proposal"`
	Title           string `json:"title"`
	Proposer        uint64 `json:"proposerIndex"`
	ProposerAddress string `json:"proposerAddress"`
	Recipient       string `json:"recipient"`
	Amount          uint64 `json:"amount"`
}

func EncodeEventProposalCreated(event *EventProposalCreated) abci.Event {
	return abci.Event{
		Type: EventProposalCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "title", Value: event.Title, Index: false},
			{Key: "proposer", Value: fmt.Sprintf("%v", event.Proposer), Index: true},
			{Key: "proposerAddress", Value: event.ProposerAddress, Index: false},
			{Key: "recipient", Value: event.Recipient, Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventProposalCreated(originEvent abci.Event) *EventProposalCreated {
	event := &EventProposalCreated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "title":
			event.Title = v.Value
		case "proposer":
			proposer, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposer = proposer
		case "proposerAddress":
			event.ProposerAddress = v.Value
		case "recipient":
			event.Recipient = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}

type EventVoteCast struct {
	Proposal     uint64 `json:"proposal"`
	Voter        uint64 `json:"voterIndex"`
	VoterAddress string `json:"voterAddress"`
	Support      bool   `json:"support"`
	Abstain      bool   `json:"abstain"`
	Weight       uint64 `json:"weight"`
}

func EncodeEventVoteCast(event *EventVoteCast) abci.Event {
	return abci.Event{
		Type: EventVoteCastType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "voter", Value: fmt.Sprintf("%v", event.Voter), Index: true},
			{Key: "voterAddress", Value: event.VoterAddress, Index: false},
			{Key: "support", Value: fmt.Sprintf("%v", event.Support), Index: false},
			{Key: "abstain", Value: fmt.Sprintf("%v", event.Abstain), Index: false},
			{Key: "weight", Value: fmt.Sprintf("%v", event.Weight), Index: false},
		},
	}
}

func DecodeEventVoteCast(originEvent abci.Event) *EventVoteCast {
	event := &EventVoteCast{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "voter":
			voter, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Voter = voter
		case "voterAddress":
			event.VoterAddress = v.Value
		case "support":
			support, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Support = support
		case "abstain":
			abstain, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Abstain = abstain
		case "weight":
			weight, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Weight = weight
		}
	}
	return event
}

type EventProposalExecuted struct {
	Proposal  uint64 `json:"proposal"`
	Passed    bool   `json:"passed"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Recovered bool   `json:"recovered"`
}

func EncodeEventProposalExecuted(event *EventProposalExecuted) abci.Event {
	return abci.Event{
		Type: EventProposalExecutedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "passed", Value: fmt.Sprintf("%v", event.Passed), Index: false},
			{Key: "recipient", Value: event.Recipient, Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "recovered", Value: fmt.Sprintf("%v", event.Recovered), Index: false},
		},
	}
}

func DecodeEventProposalExecuted(originEvent abci.Event) *EventProposalExecuted {
	event := &EventProposalExecuted{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "passed":
			passed, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Passed = passed
		case "recipient":
			event.Recipient = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "recovered":
			recovered, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Recovered = recovered
		}
	}
	return event
}

type EventVotingClosed struct {
	Height uint64 `json:"height"`
	Closer string `json:"closer"`
}

func EncodeEventVotingClosed(event *EventVotingClosed) abci.Event {
	return abci.Event{
		Type: EventVotingClosedType,
		Attributes: []abci.EventAttribute{
			{Key: "height", Value: fmt.Sprintf("%v", event.Height), Index: false},
			{Key: "closer", Value: event.Closer, Index: false},
		},
	}
}

func DecodeEventVotingClosed(originEvent abci.Event) *EventVotingClosed {
	event := &EventVotingClosed{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "height":
			height, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Height = height
		case "closer":
			event.Closer = v.Value
		}
	}
	return event
}

type EventUpdateValidators struct {
	Updates []abci.ValidatorUpdate `json:"updates"`
}

func EncodeEventUpdateValidators(event *EventUpdateValidators) abci.Event {
	pks := make([]string, len(event.Updates))
	powers := make([]string, len(event.Updates))
	for i := range event.Updates {
		ed25519PK := event.Updates[i].PubKey.GetEd25519()
		pks[i] = hex.EncodeToString(ed25519PK)
		powers[i] = fmt.Sprintf("%v", event.Updates[i].Power)
	}
	return abci.Event{
		Type: EventUpdateValidatorType,
		Attributes: []abci.EventAttribute{
			{Key: "pks", Value: strings.Join(pks, ","), Index: false},
			{Key: "powers", Value: strings.Join(powers, ","), Index: false},
		},
	}
}

func ParseEventUpdateValidators(originEvent abci.Event) *EventUpdateValidators {
	event := &EventUpdateValidators{
		Updates: []abci.ValidatorUpdate{},
	}
	pks := make([]string, 0)
	powers := make([]uint64, 0)
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "pks":
			pks = strings.Split(v.Value, ",")
		case "powers":
			powerStrs := strings.Split(v.Value, ",")
			for _, powerStr := range powerStrs {
				power, err := strconv.ParseUint(powerStr, 10, 64)
				if err != nil {
					return nil
				}
				powers = append(powers, power)
			}
		}
	}
	if len(pks) != len(powers) {
		return nil
	}
	for i := range pks {
		pk, err := hex.DecodeString(pks[i])
		if err != nil {
			return nil
		}
		event.Updates = append(event.Updates, abci.Ed25519ValidatorUpdate(pk, int64(powers[i])))
	}
	return event
}
