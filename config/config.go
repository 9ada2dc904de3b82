package config

type Configuration struct {
	// Server config
	Server struct {
		UseSSL    bool   `yaml:"ssl"`
		Port      int    `yaml:"port"`
		RedisPort int    `yaml:"redis_port"`
		RedisHost string `yaml:"redis_host"`
	} `yaml:"server"`
	// Signer config, one EOA used on both networks
	Signer struct {
		PublicAddress string `yaml:"address" envconfig:"SIGNER_ADDRESS"`
		PrivateKey    string `yaml:"private_key" envconfig:"SIGNER_PRIVATE_KEY"`
	} `yaml:"signer"`
	// Polygon attestation/status API
	Attestation struct {
		URL    string `yaml:"url" envconfig:"ATTESTATION_URL"`
		APIKey string `yaml:"api_key" envconfig:"ATTESTATION_API_KEY"`
	} `yaml:"attestation"`
	// SMT proof API used to build claim payloads
	ProofAPI string `yaml:"proof_api" envconfig:"PROOF_API"`
	// Debug knobs. AmountOverride, when set to a whole-token decimal
	// string, replaces the caller-supplied amount on every swap. Off by
	// default.
	Debug struct {
		AmountOverride string `yaml:"amount_override" envconfig:"DEBUG_AMOUNT_OVERRIDE"`
	} `yaml:"debug"`
}

var Config Configuration

// maximum number of transient RPC retries
const RPC_MAX_RETRIES = 5

// initial backoff before the first transient retry, doubles each attempt
const RPC_BACKOFF_SECONDS = 2

// how long a cached transaction status stays fresh
const STATUS_CACHE_TTL_SECONDS = 30

// deadline window attached to destination swap calldata
const SWAP_DEADLINE_SECONDS = 3600

// deadline window for a same-chain router swap
const TOKEN_SWAP_DEADLINE_SECONDS = 600

// receipt polling cadence after a broadcast
const RECEIPT_POLL_SECONDS = 5

// how long to wait for a broadcast transaction to confirm before giving up
const TX_CONFIRMATION_TIMEOUT_SECONDS = 300

// bridge index identifying the message half of a bridge-and-call
const MESSAGE_BRIDGE_INDEX = 1

// gas limits mirror what the flows were tuned with
const GAS_LIMIT_APPROVE = 300000
const GAS_LIMIT_BRIDGE_AND_CALL = 1500000
const GAS_LIMIT_CLAIM = 1000000
const GAS_LIMIT_SWAP = 500000

// per-network configs
type NetworkConfig struct {
	Name    string
	ID      uint32
	ChainID int64
	// primary RPC first, then ordered fallbacks
	RPCList                []string
	BridgeAddress          string
	BridgeExtensionAddress string
	RouterAddress          string // destination swap router, empty on source-only networks
	WrapperAddress         string
	IsEIP1559Supported     bool
}

var Networks = map[uint32]NetworkConfig{
	0: {
		Name:    "Sepolia",
		ID:      0,
		ChainID: 11155111,
		RPCList: []string{
			"https://rpc.ankr.com/eth_sepolia",
			"https://ethereum-sepolia.publicnode.com",
			"https://sepolia.gateway.tenderly.co",
		},
		IsEIP1559Supported: true,
	},
	1: {
		Name:    "Cardona",
		ID:      1,
		ChainID: 2442,
		RPCList: []string{
			"https://rpc.cardona.zkevm-rpc.com",
			"https://cardona-testnet.rpc.caldera.xyz/http",
		},
		IsEIP1559Supported: false,
	},
}

// token catalog, addresses per network id
var Tokens = map[uint32]map[string]string{
	0: {
		"TOKEN_A": "0x794203e2982EDA39b4cfC3e1F802D6ab635FcDcB",
		"TOKEN_B": "0x5eE2DeAd28817153F6317a3A21F1e8609da0c498",
	},
	1: {
		"TOKEN_A": "0x19956fa010ECAeA67bd8eAa91b18A0026F1c31D7",
		"TOKEN_B": "0xD6395Ee1b7DFDB64ba691fdB5B71b3624F168C4C",
	},
}

const TOKEN_A_NAME = "Token A"
const TOKEN_B_NAME = "Token B"

var RedisStatusSets = map[string]string{
	"PENDING":        "bridgetx:PENDING",
	"BRIDGED":        "bridgetx:BRIDGED",
	"READY_TO_CLAIM": "bridgetx:READY_TO_CLAIM",
	"CLAIMED":        "bridgetx:CLAIMED",
	"FAILED":         "bridgetx:FAILED",
}
