package store

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/localcache"
	"github.com/phytolab/orderport/internal/remote"
	"github.com/phytolab/orderport/pkg/common"
)

// testClient is an in-memory remote store double. Collections hold the raw
// JSON the store last pushed or the test pre-seeded.
type testClient struct {
	mu          sync.Mutex
	configured  bool
	failInserts bool
	collections map[string][]byte
	inserted    [][]byte
	onInsert    func([]byte)
	onUpdate    func([]byte)
}

func newTestClient(configured bool) *testClient {
	return &testClient{configured: configured, collections: make(map[string][]byte)}
}

func (c *testClient) Configured() bool { return c.configured }

func (c *testClient) FetchCollection(ctx context.Context, name string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.collections[name]; ok {
		return data, nil
	}
	return []byte("[]"), nil
}

func (c *testClient) ReplaceCollection(ctx context.Context, name string, records []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[name] = records
	return nil
}

func (c *testClient) InsertRecord(ctx context.Context, name string, record []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failInserts {
		return errors.New("remote down")
	}
	c.inserted = append(c.inserted, record)
	return nil
}

func (c *testClient) UpdateRecord(ctx context.Context, name string, record []byte) error {
	return nil
}

func (c *testClient) Subscribe(channel string, onInsert, onUpdate func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInsert = onInsert
	c.onUpdate = onUpdate
	return nil
}

// recordingNotifier captures alerts for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	placed []domain.Order
	alerts []string
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, order domain.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order)
}

func (n *recordingNotifier) Notify(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, title+": "+body)
}

func (n *recordingNotifier) lastAlert() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.alerts) == 0 {
		return ""
	}
	return n.alerts[len(n.alerts)-1]
}

func (n *recordingNotifier) alertCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

func newTestStore(t *testing.T) (*StateStore, *localcache.Cache, *testClient, *recordingNotifier) {
	t.Helper()
	cache, err := localcache.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	client := newTestClient(true)
	notifier := &recordingNotifier{}
	st := New(cache, client, nil, notifier)
	st.Hydrate()
	return st, cache, client, notifier
}

func testProduct(id int64, name string, price float64) domain.Product {
	return domain.Product{ID: id, Code: name, Name: name, Price: price, InStock: true}
}

func TestColdStartYieldsDefaults(t *testing.T) {
	st, _, _, _ := newTestStore(t)

	assert.Empty(t, st.Products())
	assert.Empty(t, st.Orders())
	assert.Empty(t, st.Cart("any-session"))
	assert.Equal(t, domain.DefaultSettings().BrandName, st.Settings().BrandName)
	assert.Equal(t, LocallyHydrated, st.State(remote.CollectionProducts))
}

func TestHydrateReadsCachedCollections(t *testing.T) {
	dir := t.TempDir()
	cache, err := localcache.Open(dir)
	require.NoError(t, err)

	first := New(cache, newTestClient(false), nil, nil)
	first.Hydrate()
	first.SetProducts([]domain.Product{testProduct(1, "CUR001", 10)})
	first.AddToCart("sid-1", testProduct(1, "CUR001", 10), 3)
	require.NoError(t, cache.Close())

	reopened, err := localcache.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	second := New(reopened, newTestClient(false), nil, nil)
	second.Hydrate()

	require.Len(t, second.Products(), 1)
	assert.Equal(t, "CUR001", second.Products()[0].Code)

	// the cart is visible before any remote fetch resolves
	cart := second.Cart("sid-1")
	require.Len(t, cart, 1)
	assert.Equal(t, 3, cart[0].Quantity)
}

func TestAddToCartSumsQuantities(t *testing.T) {
	st, _, _, _ := newTestStore(t)
	p := testProduct(1, "CUR001", 10)

	st.AddToCart("sid", p, 2)
	st.AddToCart("sid", p, 3)

	cart := st.Cart("sid")
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)
	assert.Equal(t, 50.0, st.CartTotal("sid"))
}

func TestRemoveThenAddStartsFresh(t *testing.T) {
	st, _, _, _ := newTestStore(t)
	p := testProduct(1, "CUR001", 10)

	st.AddToCart("sid", p, 5)
	st.RemoveFromCart("sid", p.ID)
	assert.Empty(t, st.Cart("sid"))

	st.AddToCart("sid", p, 2)
	cart := st.Cart("sid")
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
}

func TestUpdateCartQuantityClampsToOne(t *testing.T) {
	st, _, _, _ := newTestStore(t)
	p := testProduct(1, "CUR001", 10)
	st.AddToCart("sid", p, 4)

	st.UpdateCartQuantity("sid", p.ID, 0)
	assert.Equal(t, 1, st.Cart("sid")[0].Quantity)

	st.UpdateCartQuantity("sid", p.ID, -3)
	assert.Equal(t, 1, st.Cart("sid")[0].Quantity)

	st.UpdateCartQuantity("sid", p.ID, 7)
	assert.Equal(t, 7, st.Cart("sid")[0].Quantity)
}

func TestCartsAreSessionScoped(t *testing.T) {
	st, _, _, _ := newTestStore(t)
	st.AddToCart("sid-a", testProduct(1, "CUR001", 10), 1)

	assert.Len(t, st.Cart("sid-a"), 1)
	assert.Empty(t, st.Cart("sid-b"))
}

func TestSettingsMergeOverDefaults(t *testing.T) {
	st, cache, _, _ := newTestStore(t)

	// a snapshot from an older version knows only two fields
	cache.Write(localcache.KeySettings, []byte(`{"brandName":"ACME","minOrderValue":250}`))
	st.Hydrate()

	settings := st.Settings()
	assert.Equal(t, "ACME", settings.BrandName)
	assert.Equal(t, 250.0, settings.MinOrderValue)
	// absent keys keep their defaults
	assert.Equal(t, domain.DefaultSettings().BillingOptions, settings.BillingOptions)
	assert.True(t, settings.HideOutOfStock)
}

func TestSetSettingsLastWriteWins(t *testing.T) {
	st, _, _, _ := newTestStore(t)

	a := st.Settings()
	a.BrandName = "FIRST"
	st.SetSettings(a)

	b := st.Settings()
	b.BrandName = "SECOND"
	st.SetSettings(b)

	assert.Equal(t, "SECOND", st.Settings().BrandName)
}

func TestDirectoryDedupFirstWriteWins(t *testing.T) {
	st, _, _, _ := newTestStore(t)

	first := st.AddUserToList(domain.User{Email: "a@b.com", TaxID: "111", CompanyName: "First Co"})
	dupTax := st.AddUserToList(domain.User{Email: "other@b.com", TaxID: "111", CompanyName: "Other Co"})
	dupMail := st.AddUserToList(domain.User{Email: "A@B.COM", TaxID: "222", CompanyName: "Case Co"})

	assert.Equal(t, first.ID, dupTax.ID)
	assert.Equal(t, first.ID, dupMail.ID, "e-mail match is case-insensitive")
	assert.Len(t, st.Users(), 1)
	assert.Equal(t, "First Co", st.Users()[0].CompanyName)
}

func TestSaveUserBindsSessionAndLogout(t *testing.T) {
	st, _, _, _ := newTestStore(t)

	saved := st.SaveUser("sid", domain.User{Email: "a@b.com", TaxID: "111", CompanyName: "Co"})
	got, logged := st.User("sid")
	require.True(t, logged)
	assert.Equal(t, saved.ID, got.ID)

	st.Logout("sid")
	_, logged = st.User("sid")
	assert.False(t, logged)
	// directory entry remains
	assert.Len(t, st.Users(), 1)
}

func TestPlaceOrderAwaitsRemoteInsert(t *testing.T) {
	st, _, client, notifier := newTestStore(t)

	placed, err := st.PlaceOrder(context.Background(), domain.Order{
		CustomerEmail: "a@b.com",
		Customer:      domain.OrderCustomer{CompanyName: "Co"},
		Total:         600,
	})
	require.NoError(t, err)
	assert.NotZero(t, placed.ID)
	assert.Equal(t, domain.OrderReceived, placed.Status)
	assert.NotEmpty(t, placed.Date)

	require.Len(t, st.Orders(), 1)
	assert.Len(t, client.inserted, 1)
	assert.Len(t, notifier.placed, 1)
}

func TestPlaceOrderKeepsLocalOnRemoteFailure(t *testing.T) {
	st, _, client, _ := newTestStore(t)
	client.failInserts = true

	placed, err := st.PlaceOrder(context.Background(), domain.Order{Total: 600})
	assert.Error(t, err)
	assert.NotZero(t, placed.ID)

	// locally recorded despite the failed confirmation
	require.Len(t, st.Orders(), 1)
}

func TestPlaceOrderWithoutRemoteSucceedsLocally(t *testing.T) {
	cache, err := localcache.Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	client := newTestClient(false)
	st := New(cache, client, nil, nil)
	st.Hydrate()

	placed, err := st.PlaceOrder(context.Background(), domain.Order{Total: 600})
	require.NoError(t, err, "unconfigured remote is not an error at checkout")
	assert.NotZero(t, placed.ID)
	assert.Len(t, st.Orders(), 1)
	assert.Empty(t, client.inserted)
}

func TestPlaceOrderPrependsNewestFirst(t *testing.T) {
	st, _, _, _ := newTestStore(t)

	first, err := st.PlaceOrder(context.Background(), domain.Order{Total: 1})
	require.NoError(t, err)
	second, err := st.PlaceOrder(context.Background(), domain.Order{Total: 2})
	require.NoError(t, err)

	orders := st.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestOrdersByEmail(t *testing.T) {
	st, _, _, _ := newTestStore(t)
	_, err := st.PlaceOrder(context.Background(), domain.Order{CustomerEmail: "a@b.com"})
	require.NoError(t, err)
	_, err = st.PlaceOrder(context.Background(), domain.Order{CustomerEmail: "c@d.com"})
	require.NoError(t, err)

	assert.Len(t, st.OrdersByEmail("a@b.com"), 1)
	assert.Empty(t, st.OrdersByEmail("x@y.com"))
}

func TestUpdateOrderStatus(t *testing.T) {
	st, _, _, _ := newTestStore(t)
	placed, err := st.PlaceOrder(context.Background(), domain.Order{Total: 1})
	require.NoError(t, err)

	updated, err := st.UpdateOrderStatus(placed.ID, domain.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, updated.Status)

	_, err = st.UpdateOrderStatus(99999, domain.OrderCompleted)
	assert.Error(t, err)
}

func TestOrderInsertPushPrependsAndNotifies(t *testing.T) {
	st, _, _, notifier := newTestStore(t)
	_, err := st.PlaceOrder(context.Background(), domain.Order{Total: 1})
	require.NoError(t, err)

	pushed, _ := json.Marshal(domain.Order{
		ID:       42,
		Total:    1234.56,
		Customer: domain.OrderCustomer{CompanyName: "Pharma Ltda"},
	})
	st.handleOrderInsert(pushed)

	orders := st.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, int64(42), orders[0].ID, "pushed order is prepended")

	alert := notifier.lastAlert()
	assert.Contains(t, alert, "NEW ORDER RECEIVED")
	assert.Contains(t, alert, "Pharma Ltda")
	assert.Contains(t, alert, common.FormatBRL(1234.56))
}

func TestOrderInsertPushIsIdempotent(t *testing.T) {
	st, _, _, notifier := newTestStore(t)

	pushed, _ := json.Marshal(domain.Order{ID: 42, Total: 10})
	st.handleOrderInsert(pushed)
	before := notifier.alertCount()
	st.handleOrderInsert(pushed)

	assert.Len(t, st.Orders(), 1)
	assert.Equal(t, before, notifier.alertCount(), "duplicate delivery stays silent")
}

func TestOrderUpdatePushReplacesInPlace(t *testing.T) {
	st, _, _, notifier := newTestStore(t)
	first, err := st.PlaceOrder(context.Background(), domain.Order{Total: 1})
	require.NoError(t, err)
	second, err := st.PlaceOrder(context.Background(), domain.Order{Total: 2})
	require.NoError(t, err)

	changed := first
	changed.Status = domain.OrderCompleted
	pushed, _ := json.Marshal(changed)
	st.handleOrderUpdate(pushed)

	orders := st.Orders()
	require.Len(t, orders, 2)
	// position preserved: second is still newest
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, domain.OrderCompleted, orders[1].Status)
	assert.Contains(t, notifier.lastAlert(), "ORDER UPDATE")
}

func TestOrderUpdatePushIgnoresUnknown(t *testing.T) {
	st, _, _, notifier := newTestStore(t)
	before := notifier.alertCount()

	pushed, _ := json.Marshal(domain.Order{ID: 777, Status: domain.OrderCompleted})
	st.handleOrderUpdate(pushed)

	assert.Empty(t, st.Orders())
	assert.Equal(t, before, notifier.alertCount())
}

func TestSyncRemoteOverwritesAndSubscribes(t *testing.T) {
	st, _, client, _ := newTestStore(t)

	seeded, _ := json.Marshal([]domain.Product{testProduct(9, "OMG002", 30)})
	client.collections[remote.CollectionProducts] = seeded

	require.NoError(t, st.SyncRemote(context.Background()))

	require.Len(t, st.Products(), 1)
	assert.Equal(t, int64(9), st.Products()[0].ID)
	assert.Equal(t, RemotelySynced, st.State(remote.CollectionProducts))
	assert.NotNil(t, client.onInsert, "realtime order handlers are registered")
	assert.NotNil(t, client.onUpdate)
}

func TestSyncRemoteUnconfiguredStaysLocal(t *testing.T) {
	cache, err := localcache.Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	st := New(cache, newTestClient(false), nil, nil)
	st.Hydrate()

	err = st.SyncRemote(context.Background())
	assert.ErrorIs(t, err, remote.ErrNotConfigured)
	assert.Equal(t, LocallyHydrated, st.State(remote.CollectionProducts))
}

func TestBroadcastFromForeignOriginMerges(t *testing.T) {
	st, cache, _, _ := newTestStore(t)

	foreign, _ := json.Marshal([]domain.Product{testProduct(5, "EXT005", 99)})
	cache.Broadcaster().Publish("another-instance", localcache.KeyProducts, foreign)

	require.Len(t, st.Products(), 1)
	assert.Equal(t, int64(5), st.Products()[0].ID)
}

func TestBroadcastFromOwnOriginIsSkipped(t *testing.T) {
	st, cache, _, _ := newTestStore(t)
	st.SetProducts([]domain.Product{testProduct(1, "CUR001", 10)})

	// an own-origin event carrying stale data must not clobber memory
	stale, _ := json.Marshal([]domain.Product{})
	cache.Broadcaster().Publish(cache.Origin(), localcache.KeyProducts, stale)

	assert.Len(t, st.Products(), 1)
}
