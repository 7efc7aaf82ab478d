package session

import (
	"context"
	"math/big"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/chain"
	"vaultScope/internal/contracts"
	"vaultScope/internal/model"
	"vaultScope/internal/notify"
	"vaultScope/internal/wallet"
)

var (
	accountA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	accountB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	bsc      = wallet.Network{ChainID: big.NewInt(56), Name: "Binance Smart Chain", RPCURL: "http://127.0.0.1:8545"}
)

type fakeWallet struct {
	mu sync.Mutex

	chainID    *big.Int
	known      map[string]bool
	switchErr  error
	requestErr error
	accounts   []common.Address
	authorized []common.Address

	switchCalls  int
	addCalls     int
	requestCalls int

	events chan wallet.Event
}

func newFakeWallet(chainID int64) *fakeWallet {
	return &fakeWallet{
		chainID:  big.NewInt(chainID),
		known:    map[string]bool{"56": true},
		accounts: []common.Address{accountA},
		events:   make(chan wallet.Event, 4),
	}
}

func (f *fakeWallet) ChainID(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.chainID), nil
}

func (f *fakeWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switchCalls++
	if f.switchErr != nil {
		return f.switchErr
	}
	if !f.known[chainID.String()] {
		return &wallet.RPCError{Code: wallet.CodeUnrecognizedChain, Message: "unrecognized chain"}
	}
	f.chainID = new(big.Int).Set(chainID)
	return nil
}

func (f *fakeWallet) AddChain(ctx context.Context, network wallet.Network) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	f.known[network.ChainID.String()] = true
	return nil
}

func (f *fakeWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestCalls++
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	f.authorized = append([]common.Address(nil), f.accounts...)
	return f.authorized, nil
}

func (f *fakeWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]common.Address(nil), f.authorized...), nil
}

func (f *fakeWallet) Backend() chain.Backend           { return nil }
func (f *fakeWallet) Transactor() contracts.Transactor { return nil }
func (f *fakeWallet) Events() <-chan wallet.Event      { return f.events }

type hookRecorder struct {
	mu        sync.Mutex
	binds     []bool
	refreshes []common.Address
	resets    int
}

func (h *hookRecorder) hooks() Hooks {
	return Hooks{
		Bind: func(ctx context.Context, w wallet.Wallet) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.binds = append(h.binds, w != nil)
			return nil
		},
		Refresh: func(ctx context.Context, addr common.Address) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.refreshes = append(h.refreshes, addr)
		},
		Reset: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.resets++
		},
	}
}

func newTestManager(t *testing.T, w wallet.Wallet) (*Manager, *hookRecorder, *FileFlagStore, *notify.Recorder) {
	t.Helper()
	rec := &hookRecorder{}
	flags := &FileFlagStore{Path: filepath.Join(t.TempDir(), "session.json")}
	notes := &notify.Recorder{}
	m := NewManager(Config{Network: bsc, RefreshInterval: time.Hour}, w, flags, rec.hooks(), notes, nil)
	t.Cleanup(m.Close)
	return m, rec, flags, notes
}

func TestConnectBindsAccountAndStartsTimer(t *testing.T) {
	w := newFakeWallet(56)
	m, rec, flags, notes := newTestManager(t, w)
	before := m.Token()

	require.NoError(t, m.Connect(context.Background()))

	st := m.Current()
	require.True(t, st.Connected)
	require.Equal(t, accountA, st.Address)
	require.NotEqual(t, before, st.Token)
	require.Equal(t, 0, w.switchCalls)
	require.Equal(t, 1, m.ActiveTimers())
	require.Equal(t, []bool{true}, rec.binds)
	require.Equal(t, []common.Address{accountA}, rec.refreshes)

	connected, err := flags.Load(context.Background())
	require.NoError(t, err)
	require.True(t, connected)
	require.Equal(t, []string{"Wallet connected!"}, notes.Messages())
}

func TestReconnectKeepsSingleTimer(t *testing.T) {
	w := newFakeWallet(56)
	m, rec, flags, _ := newTestManager(t, w)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Connect(ctx))
		require.Equal(t, 1, m.ActiveTimers())
	}

	m.Disconnect(ctx)
	require.Equal(t, 0, m.ActiveTimers())
	require.False(t, m.Current().Connected)
	require.Equal(t, 1, rec.resets)
	require.False(t, rec.binds[len(rec.binds)-1], "disconnect must fall back to passive handles")

	connected, err := flags.Load(ctx)
	require.NoError(t, err)
	require.False(t, connected)

	require.NoError(t, m.Connect(ctx))
	require.Equal(t, 1, m.ActiveTimers())
}

func TestConnectRegistersUnknownNetwork(t *testing.T) {
	w := newFakeWallet(1)
	w.known = map[string]bool{}
	m, _, _, _ := newTestManager(t, w)

	require.NoError(t, m.Connect(context.Background()))
	require.Equal(t, 1, w.addCalls)
	require.Equal(t, 2, w.switchCalls)
	require.Equal(t, int64(56), w.chainID.Int64())
}

func TestConnectFailures(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		m, _, _, notes := newTestManager(t, nil)
		err := m.Connect(context.Background())
		require.ErrorIs(t, err, model.ErrNoProvider)
		last, ok := notes.Last()
		require.True(t, ok)
		require.Equal(t, notify.LevelError, last.Level)
	})

	t.Run("switch refused", func(t *testing.T) {
		w := newFakeWallet(1)
		w.switchErr = &wallet.RPCError{Code: -32603, Message: "internal"}
		m, _, _, _ := newTestManager(t, w)
		err := m.Connect(context.Background())
		require.ErrorIs(t, err, model.ErrNetworkMismatch)
		require.Equal(t, 0, w.addCalls)
		require.Equal(t, 0, m.ActiveTimers())
	})

	t.Run("switch rejected", func(t *testing.T) {
		w := newFakeWallet(1)
		w.switchErr = &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "denied"}
		m, _, _, _ := newTestManager(t, w)
		require.ErrorIs(t, m.Connect(context.Background()), model.ErrUserRejected)
	})

	t.Run("accounts rejected", func(t *testing.T) {
		w := newFakeWallet(56)
		w.requestErr = &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "denied"}
		m, rec, _, notes := newTestManager(t, w)
		err := m.Connect(context.Background())
		require.ErrorIs(t, err, model.ErrUserRejected)
		require.False(t, m.Current().Connected)
		require.Empty(t, rec.refreshes)
		require.Equal(t, 0, m.ActiveTimers())
		last, _ := notes.Last()
		require.Contains(t, last.Message, "Connection failed: ")
	})
}

func TestAccountsChanged(t *testing.T) {
	w := newFakeWallet(56)
	m, rec, _, _ := newTestManager(t, w)
	ctx := context.Background()
	require.NoError(t, m.Connect(ctx))
	token := m.Token()

	m.HandleEvent(ctx, wallet.Event{Kind: wallet.EventAccountsChanged, Accounts: []common.Address{accountA}})
	require.Equal(t, token, m.Token(), "same account must not rebind")

	m.HandleEvent(ctx, wallet.Event{Kind: wallet.EventAccountsChanged, Accounts: []common.Address{accountB}})
	st := m.Current()
	require.Equal(t, accountB, st.Address)
	require.NotEqual(t, token, st.Token)
	require.Equal(t, accountB, rec.refreshes[len(rec.refreshes)-1])
	require.Equal(t, 1, m.ActiveTimers())

	m.HandleEvent(ctx, wallet.Event{Kind: wallet.EventAccountsChanged})
	require.False(t, m.Current().Connected)
	require.Equal(t, 0, m.ActiveTimers())
}

func TestDisconnectEventActsLikeEmptyAccounts(t *testing.T) {
	w := newFakeWallet(56)
	m, _, flags, _ := newTestManager(t, w)
	ctx := context.Background()
	require.NoError(t, m.Connect(ctx))

	m.HandleEvent(ctx, wallet.Event{Kind: wallet.EventDisconnect})
	require.False(t, m.Current().Connected)
	connected, err := flags.Load(ctx)
	require.NoError(t, err)
	require.False(t, connected)
}

func TestChainChangedReloads(t *testing.T) {
	w := newFakeWallet(56)
	m, rec, _, _ := newTestManager(t, w)
	ctx := context.Background()
	require.NoError(t, m.Connect(ctx))
	token := m.Token()

	m.HandleEvent(ctx, wallet.Event{Kind: wallet.EventChainChanged, ChainID: big.NewInt(56)})

	st := m.Current()
	require.True(t, st.Connected, "flag and authorized account allow silent reconnect")
	require.NotEqual(t, token, st.Token)
	require.Equal(t, 1, rec.resets)
	require.Equal(t, 1, m.ActiveTimers())
	require.Equal(t, 2, w.requestCalls)
}

func TestSilentReconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("without flag", func(t *testing.T) {
		w := newFakeWallet(56)
		w.authorized = []common.Address{accountA}
		m, _, _, _ := newTestManager(t, w)
		require.False(t, m.SilentReconnect(ctx))
		require.Equal(t, 0, w.requestCalls)
	})

	t.Run("flag without authorized accounts", func(t *testing.T) {
		w := newFakeWallet(56)
		m, _, flags, notes := newTestManager(t, w)
		require.NoError(t, flags.Save(ctx, true))
		require.False(t, m.SilentReconnect(ctx))
		require.Equal(t, 0, w.requestCalls)
		require.Empty(t, notes.Messages())
	})

	t.Run("flag with authorized account", func(t *testing.T) {
		w := newFakeWallet(56)
		w.authorized = []common.Address{accountA}
		m, _, flags, _ := newTestManager(t, w)
		require.NoError(t, flags.Save(ctx, true))
		require.True(t, m.SilentReconnect(ctx))
		require.Equal(t, accountA, m.Current().Address)
	})
}

func TestFileFlagStoreMissingFile(t *testing.T) {
	store := &FileFlagStore{Path: filepath.Join(t.TempDir(), "nested", "flag.json")}
	connected, err := store.Load(context.Background())
	require.NoError(t, err)
	require.False(t, connected)
	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, store.Save(context.Background(), true))

	var nilStore *FileFlagStore
	require.NoError(t, nilStore.Save(context.Background(), true))
	require.NoError(t, nilStore.Clear(context.Background()))
}
