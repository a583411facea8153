package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/models"
)

const DefaultIndex = "orders"

// OrderIndex mirrors confirmed orders into Elasticsearch so they can be
// searched by item name. Documents are scoped by origin: order ids are only
// unique within one origin's log.
type OrderIndex struct {
	ES    *elasticsearch.Client
	Index string
}

type orderDoc struct {
	Origin string `json:"origin"`
	models.Order
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "origin": {"type": "keyword"},
      "id":     {"type": "long"},
      "date":   {"type": "date"},
      "status": {"type": "keyword"},
      "user": {
        "properties": {
          "id":    {"type": "long"},
          "name":  {"type": "text"},
          "email": {"type": "keyword"}
        }
      },
      "items": {
        "properties": {
          "id":   {"type": "keyword"},
          "name": {"type": "text"}
        }
      }
    }
  }
}`

func (x *OrderIndex) index() string {
	if x.Index == "" {
		return DefaultIndex
	}
	return x.Index
}

func docID(origin string, orderID int64) string {
	return origin + ":" + strconv.FormatInt(orderID, 10)
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (x *OrderIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.ES.Indices.Exists([]string{x.index()}, x.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = x.ES.Indices.Create(
		x.index(),
		x.ES.Indices.Create.WithContext(ctx),
		x.ES.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("create index %s: %s: %s", x.index(), res.Status(), body)
	}
	return nil
}

func (x *OrderIndex) IndexOrder(ctx context.Context, origin string, order models.Order) error {
	data, err := json.Marshal(orderDoc{Origin: origin, Order: order})
	if err != nil {
		return fmt.Errorf("index order: %w", err)
	}

	res, err := x.ES.Index(
		x.index(),
		bytes.NewReader(data),
		x.ES.Index.WithContext(ctx),
		x.ES.Index.WithDocumentID(docID(origin, order.ID)),
	)
	if err != nil {
		return fmt.Errorf("index order: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index order %d: %s: %s", order.ID, res.Status(), body)
	}
	return nil
}

func buildQuery(origin, email, query string, from, size int) map[string]any {
	filter := []any{
		map[string]any{"term": map[string]any{"origin": origin}},
		map[string]any{"term": map[string]any{"user.email": email}},
	}
	boolQuery := map[string]any{"filter": filter}
	if query != "" {
		boolQuery["must"] = []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":     query,
					"fields":    []string{"items.name^2", "items.id"},
					"fuzziness": "AUTO",
				},
			},
		}
	}
	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort":  []any{map[string]any{"id": map[string]any{"order": "desc"}}},
		"from":  from,
		"size":  size,
	}
}

// Search returns the orders placed by email within origin whose items
// match query.
func (x *OrderIndex) Search(ctx context.Context, origin, email, query string, from, size int) (int64, []models.Order, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(origin, email, query, from, size)); err != nil {
		return 0, nil, fmt.Errorf("search error: %w", err)
	}

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.index()),
		x.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search error %s: %s", res.Status(), body)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source orderDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		orders[i] = hit.Source.Order
	}
	return r.Hits.Total.Value, orders, nil
}
