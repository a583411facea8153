package search

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func boolClauses(t *testing.T, q map[string]any) map[string]any {
	t.Helper()
	b, ok := q["query"].(map[string]any)["bool"].(map[string]any)
	require.True(t, ok)
	return b
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	q := buildQuery("origin-a", "a@x.com", "", 0, 10)
	b := boolClauses(t, q)
	filter := b["filter"].([]any)
	require.Len(t, filter, 2)
	assert.Equal(t, map[string]any{"term": map[string]any{"origin": "origin-a"}}, filter[0])
	assert.Equal(t, map[string]any{"term": map[string]any{"user.email": "a@x.com"}}, filter[1])
	assert.NotContains(t, b, "must")
	assert.Equal(t, 10, q["size"])

	q = buildQuery("origin-a", "a@x.com", "baguette", 20, 10)
	b = boolClauses(t, q)
	require.Len(t, b["filter"].([]any), 2)
	must := b["must"].([]any)
	require.Len(t, must, 1)
	mm := must[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "baguette", mm["query"])
	assert.Equal(t, 20, q["from"])
}

func TestDocIDIncludesOrigin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "origin-a:1700000000000", docID("origin-a", 1_700_000_000_000))
	assert.NotEqual(t, docID("origin-a", 1), docID("origin-b", 1))
}

func TestOrderDocEncodesOrigin(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(orderDoc{Origin: "origin-a", Order: models.Order{ID: 7, User: models.Session{Email: "a@x.com"}}})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "origin-a", doc["origin"])
	assert.EqualValues(t, 7, doc["id"])
}

func TestOrderIndex_Integration(t *testing.T) {
	url := os.Getenv("ES_TEST_URL")
	if url == "" {
		t.Skip("ES_TEST_URL is required for tests")
	}
	ctx := context.Background()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	require.NoError(t, err)

	idx := &OrderIndex{ES: client, Index: "orders-test-" + uuid.NewString()}
	require.NoError(t, idx.EnsureIndex(ctx))
	order := models.Order{
		ID:     time.Now().UnixMilli(),
		User:   models.Session{ID: 1, Name: "Ana", Email: "a@x.com"},
		Items:  []models.CartItem{{ID: "b1", Name: "Baguette", Price: decimal.RequireFromString("1.20"), Quantity: 2}},
		Total:  decimal.RequireFromString("2.40"),
		Date:   models.FormatTime(time.Now()),
		Status: models.OrderStatusConfirmed,
	}
	require.NoError(t, idx.IndexOrder(ctx, "origin-a", order))
	require.NoError(t, idx.IndexOrder(ctx, "origin-b", order))

	_, err = client.Indices.Refresh(client.Indices.Refresh.WithIndex(idx.Index))
	require.NoError(t, err)

	total, orders, err := idx.Search(ctx, "origin-a", "a@x.com", "baguette", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	total, _, err = idx.Search(ctx, "origin-c", "a@x.com", "baguette", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
