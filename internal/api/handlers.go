// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/models"
	"marketplace-routing/internal/routing"
	"marketplace-routing/internal/upc"
)

const maxBodyBytes = 1 << 20

// ItemCreator is the store surface intake needs.
type ItemCreator interface {
	CreateItem(ctx context.Context, item *models.Item) error
}

// Router is the orchestrator surface the handlers need.
type Router interface {
	Route(ctx context.Context, item *models.Item) (*routing.Decision, error)
	Reroute(ctx context.Context, itemID string) (*routing.Decision, error)
}

// UPCLookup resolves raw UPC codes during intake.
type UPCLookup interface {
	Lookup(ctx context.Context, code string) (*upc.Product, error)
}

// Handlers implements the item routing endpoints.
type Handlers struct {
	router  Router
	creator ItemCreator
	upc     UPCLookup
	logger  logger.Logger
}

// NewHandlers builds the handler set. upcClient may be nil when lookup is
// disabled.
func NewHandlers(router Router, creator ItemCreator, upcClient UPCLookup, log logger.Logger) *Handlers {
	return &Handlers{
		router:  router,
		creator: creator,
		upc:     upcClient,
		logger:  log.WithFields(map[string]interface{}{"component": "api-handlers"}),
	}
}

type routeResponse struct {
	ItemID   string            `json:"itemId"`
	Decision *routing.Decision `json:"decision"`
}

// RouteItem handles intake: validate the payload, create the item record,
// optionally enrich it from the UPC lookup, and run the routing decision.
func (h *Handlers) RouteItem(schema *gojsonschema.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, stderrors.NewItemValidationError("unreadable request body"))
			return
		}

		result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
		if err != nil {
			writeError(w, stderrors.NewItemValidationError("request body is not valid JSON"))
			return
		}
		if !result.Valid() {
			details := make([]string, 0, len(result.Errors()))
			for _, verr := range result.Errors() {
				details = append(details, verr.String())
			}
			writeError(w, stderrors.NewItemValidationError(strings.Join(details, "; ")))
			return
		}

		var item models.Item
		if err := json.Unmarshal(body, &item); err != nil {
			writeError(w, stderrors.NewItemValidationError(err.Error()))
			return
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}

		h.enrichFromUPC(r.Context(), &item)

		if err := h.creator.CreateItem(r.Context(), &item); err != nil {
			h.logger.WithError(err).Error("item create failed", map[string]interface{}{"itemId": item.ID})
			writeError(w, stderrors.NewDecisionPersistError(err))
			return
		}

		decision, err := h.router.Route(r.Context(), &item)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, routeResponse{ItemID: item.ID, Decision: decision})
	}
}

// RerouteItem recomputes the decision for an existing item.
func (h *Handlers) RerouteItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		writeError(w, stderrors.NewItemValidationError("item id is required"))
		return
	}

	decision, err := h.router.Reroute(r.Context(), itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, routeResponse{ItemID: itemID, Decision: decision})
}

// enrichFromUPC fills upcMatched (and empty descriptive fields) from the
// lookup service. Lookup failure degrades to no match and never blocks
// routing.
func (h *Handlers) enrichFromUPC(ctx context.Context, item *models.Item) {
	if h.upc == nil || item.UPC == "" || item.UPCMatched {
		return
	}

	product, err := h.upc.Lookup(ctx, item.UPC)
	if err != nil {
		h.logger.WithError(err).Warn("UPC lookup failed, continuing unmatched", map[string]interface{}{
			"itemId": item.ID,
			"upc":    item.UPC,
		})
		return
	}

	item.UPCMatched = product.Matched
	if product.Matched {
		if item.Title == "" {
			item.Title = product.Title
		}
		if item.Brand == "" {
			item.Brand = product.Brand
		}
		if item.Category == "" {
			item.Category = product.Category
		}
	}
}
