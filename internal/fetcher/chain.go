package fetcher

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

const oracleABIJSON = `[{"inputs":[],"name":"latestIndex","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var oracleABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(oracleABIJSON))
	if err != nil {
		panic("failed to parse oracle ABI: " + err.Error())
	}
	oracleABI = parsed
}

// ChainOptions parameterise the on-chain index oracle read.
type ChainOptions struct {
	RPCURL        string
	OracleAddress string
	Timeout       time.Duration
}

// Chain reads the admin-managed coin-price index from the oracle contract.
type Chain struct {
	opts      ChainOptions
	logger    zerolog.Logger
	client    *ethclient.Client
	clientMux sync.Mutex
}

// NewChain builds a new on-chain index fetcher.
func NewChain(opts ChainOptions, logger zerolog.Logger) *Chain {
	return &Chain{opts: opts, logger: logger.With().Str("component", "chain_fetcher").Logger()}
}

// CurrentIndex calls latestIndex() on the oracle contract.
func (c *Chain) CurrentIndex(ctx context.Context) (int64, error) {
	if c.opts.RPCURL == "" {
		return 0, errors.New("oracle rpc url not configured")
	}
	if c.opts.OracleAddress == "" {
		return 0, errors.New("oracle contract address not configured")
	}

	timeout := c.opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}

	addr := common.HexToAddress(c.opts.OracleAddress)

	payload, err := oracleABI.Pack("latestIndex")
	if err != nil {
		return 0, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: payload}, nil)
	if err != nil {
		return 0, err
	}

	outputs, err := oracleABI.Unpack("latestIndex", res)
	if err != nil {
		return 0, err
	}

	if len(outputs) != 1 {
		return 0, errors.New("unexpected latestIndex response")
	}

	value, ok := outputs[0].(*big.Int)
	if !ok {
		return 0, errors.New("failed to decode latestIndex output")
	}
	if !value.IsInt64() || value.Sign() <= 0 {
		return 0, errors.New("latestIndex out of range")
	}

	return value.Int64(), nil
}

func (c *Chain) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.clientMux.Lock()
	defer c.clientMux.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := ethclient.DialContext(ctx, c.opts.RPCURL)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

var _ IndexFetcher = (*Chain)(nil)
