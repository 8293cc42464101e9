package app

import (
	"path/filepath"
	"testing"

	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/htlctest"
	"github.com/iov-one/htlc/store"
	"github.com/iov-one/htlc/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisValidate(t *testing.T) {
	owner := htlctest.NewCondition().Address()
	cases := map[string]struct {
		gen     Genesis
		wantErr *errors.Error
	}{
		"valid": {
			gen: Genesis{ChainID: "local-htlc", Balances: []GenesisBalance{
				{Owner: owner, Ticker: "IOV", Amount: coin.NewAmount(10)},
			}},
		},
		"no balances": {
			gen: Genesis{ChainID: "local-htlc"},
		},
		"short chain id": {
			gen:     Genesis{ChainID: "abc"},
			wantErr: errors.ErrInput,
		},
		"lowercase ticker": {
			gen: Genesis{ChainID: "local-htlc", Balances: []GenesisBalance{
				{Owner: owner, Ticker: "iov", Amount: coin.NewAmount(10)},
			}},
			wantErr: errors.ErrInput,
		},
		"missing owner": {
			gen: Genesis{ChainID: "local-htlc", Balances: []GenesisBalance{
				{Ticker: "IOV", Amount: coin.NewAmount(10)},
			}},
			wantErr: errors.ErrInput,
		},
		"zero amount": {
			gen: Genesis{ChainID: "local-htlc", Balances: []GenesisBalance{
				{Owner: owner, Ticker: "IOV"},
			}},
			wantErr: errors.ErrInvalidAmount,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.gen.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestGenesisFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	gen := &Genesis{
		ChainID: "local-htlc",
		Balances: []GenesisBalance{
			{Owner: htlctest.NewCondition().Address(), Ticker: "ETH", Amount: coin.MustParseAmount("18446744073709551616")},
		},
	}
	require.NoError(t, gen.Save(path))

	loaded, err := LoadGenesis(path)
	require.NoError(t, err)
	assert.Equal(t, gen, loaded)

	_, err = LoadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestGenesisInitState(t *testing.T) {
	db := store.MemStore()
	bank := cash.NewController()
	owner := htlctest.NewCondition().Address()
	gen := &Genesis{
		ChainID: "local-htlc",
		Balances: []GenesisBalance{
			{Owner: owner, Ticker: "IOV", Amount: coin.NewAmount(7)},
			{Owner: owner, Ticker: "IOV", Amount: coin.NewAmount(3)},
		},
	}
	require.NoError(t, gen.initState(db, bank))

	got, err := bank.Balance(db, cash.AssetAddress("IOV"), owner)
	require.NoError(t, err)
	assert.Equal(t, coin.NewAmount(10), got)

	chainID, err := loadChainID(db)
	require.NoError(t, err)
	assert.Equal(t, "local-htlc", chainID)

	err = saveChainID(db, "other-chain")
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
