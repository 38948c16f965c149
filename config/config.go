package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
)

// DefaultProposalDuration is how long a proposal may stay unexecuted
// before the recovery sweep can force-close it.
const DefaultProposalDuration = 7 * 24 * time.Hour

var (
	proposalDurationSeconds = int64(DefaultProposalDuration / time.Second)
	strictFunding           = true
)

// ProposalDurationSeconds returns the configured proposal lifetime.
func ProposalDurationSeconds() int64 {
	return proposalDurationSeconds
}

// StrictFunding reports whether proposals naming a recipient must carry a
// positive amount. On by default; a policy knob, not an invariant.
func StrictFunding() bool {
	return strictFunding
}

// SetGovernanceParams installs the governance policy knobs, typically from
// the [app] section of config.toml. Zero duration keeps the default.
func SetGovernanceParams(durationSeconds int64, strict bool) {
	if durationSeconds > 0 {
		proposalDurationSeconds = durationSeconds
	}
	strictFunding = strict
}

type GovAppConfig struct {
	Home          string `mapstructure:"-"`
	TimeoutCommit uint64 `mapstructure:"-"`

	// ProposalDuration is the proposal lifetime in seconds.
	ProposalDuration int64 `mapstructure:"proposal_duration"`
	// StrictFunding rejects proposals with a recipient but no amount.
	StrictFunding bool `mapstructure:"strict_funding"`
	// IndexerListen is the listen address of the indexer HTTP API.
	IndexerListen string `mapstructure:"indexer_listen"`
}

func DefaultGovAppConfig(home string) *GovAppConfig {
	return &GovAppConfig{
		Home:             home,
		ProposalDuration: int64(DefaultProposalDuration / time.Second),
		StrictFunding:    true,
		IndexerListen:    "127.0.0.1:8547",
	}
}

// Apply pushes the config values into the package-level governance params
// consumed by the state machine.
func (c *GovAppConfig) Apply() {
	SetGovernanceParams(c.ProposalDuration, c.StrictFunding)
}

func WeiPerPower(height uint64) uint64 {
	return 1000000000
}

func PowerPerBalance(balance uint64, height uint64) int64 {
	return int64(balance / WeiPerPower(height))
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *GovAppConfig `mapstructure:"app"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.agora")
	}
	config := &Config{
		DefaultGovCometConfig(),
		DefaultGovAppConfig(home),
	}
	config.RootDir = home
	_ = os.MkdirAll(home+"/config", 0755)
	return config
}

func NewGovConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.agora")
	}
	_ = os.MkdirAll(home+"/config", 0755)
	config := &Config{
		DefaultGovCometConfig(),
		DefaultGovAppConfig(home),
	}
	config.RootDir = home
	return config
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func InitializeNodeOnly(config *Config) {
	_, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return
	}

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return
	}
	privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	os.Remove(pvKeyFile)
}

func DefaultGovCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 10
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
