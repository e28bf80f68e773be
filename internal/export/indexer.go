// internal/export/indexer.go

// Package export projects committed routing decisions into the
// Elasticsearch audit index. The admin inventory UI and the per-channel
// listing exporters query this index; it is a projection, never a gate,
// so indexing failures are reported but do not fail routing.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/routing"
)

// Indexer implements routing.AuditRecorder.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewIndexer creates an audit indexer writing into the given index.
func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "audit-indexer"}),
	}
}

type auditDocument struct {
	ItemID            string                              `json:"itemId"`
	Primary           string                              `json:"primary,omitempty"`
	Secondary         string                              `json:"secondary,omitempty"`
	Scores            map[routing.Channel]int             `json:"scores,omitempty"`
	Disqualifications map[routing.Channel][]string        `json:"disqualifications,omitempty"`
	NeedsReview       bool                                `json:"needsReview"`
	MissingFields     []string                            `json:"missingRequiredFields,omitempty"`
	DecidedAt         time.Time                           `json:"decidedAt"`
}

// RecordDecision indexes one decision document keyed by item ID, so
// re-routes overwrite the previous audit record.
func (ix *Indexer) RecordDecision(ctx context.Context, itemID string, d *routing.Decision) error {
	doc := auditDocument{
		ItemID:            itemID,
		Primary:           string(d.Primary),
		Secondary:         string(d.Secondary),
		Scores:            d.Scores,
		Disqualifications: d.Disqualifications,
		NeedsReview:       d.NeedsReview,
		MissingFields:     d.MissingRequiredFields,
		DecidedAt:         time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return stderrors.NewAuditIndexError(err)
	}

	res, err := ix.es.Index(
		ix.index,
		bytes.NewReader(body),
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(itemID),
	)
	if err != nil {
		return stderrors.NewAuditIndexError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return stderrors.NewAuditIndexError(fmt.Errorf("index %s: %s", ix.index, string(msg)))
	}

	ix.logger.Debug("decision indexed", map[string]interface{}{"itemId": itemID})
	return nil
}
