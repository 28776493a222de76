package directory

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"

	dirsvc "yuime-backend/internal/application/directory"
	"yuime-backend/internal/application/filter"
	"yuime-backend/internal/middleware"
	"yuime-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const searchQueryKey = "q"

// Handlers serves one list view (staff or organizations).
type Handlers struct {
	Source   dirsvc.Source
	Registry *dirsvc.Registry
}

// FilterState is the filter part of a list response.
type FilterState struct {
	RawSearch     string                      `json:"raw_search"`
	Term          string                      `json:"term"`
	Selectors     map[filter.Dimension]string `json:"selectors"`
	SearchPending bool                        `json:"search_pending"`
}

// View is the data of every list response.
type View struct {
	Rows          []any                 `json:"rows"`
	Total         int                   `json:"total"`
	Visible       int                   `json:"visible"`
	NoResults     bool                  `json:"no_results"`
	Filters       FilterState           `json:"filters"`
	ActiveFilters []dirsvc.ActiveFilter `json:"active_filters"`
}

type valueBody struct {
	Value *string `json:"value"`
}

// List GET /api/v1/{list}: rows visible under the console session's filter state.
func (h *Handlers) List(c *fiber.Ctx) error {
	sess := h.session(c)
	return h.render(c, sess.State(), sess.SearchPending())
}

// Search GET /api/v1/{list}/search?q=&<dimension>=: stateless, no debounce.
// Every query key other than q must name a facet of the list.
func (h *Handlers) Search(c *fiber.Ctx) error {
	schema := h.Source.Schema()
	st := filter.Reduce(filter.State{}, filter.SetRawSearch(c.Query("q")))
	st = filter.Reduce(st, filter.CommitTerm(c.Query("q")))
	queries := c.Queries()
	for _, key := range slices.Sorted(maps.Keys(queries)) {
		if key == searchQueryKey {
			continue
		}
		d, v := filter.Dimension(key), queries[key]
		if err := schema.Check(d, v); err != nil {
			return badFilter(c, err)
		}
		st = filter.Reduce(st, filter.SetSelector(d, v))
	}
	return h.render(c, st, false)
}

// UpdateSearch PUT /api/v1/{list}/filters/search {"value": "..."}.
// The raw value is echoed at once; the term follows after the quiet period.
func (h *Handlers) UpdateSearch(c *fiber.Ctx) error {
	var body valueBody
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.Value == nil {
		return response.BadRequest(c, "value is required", nil)
	}
	sess := h.session(c)
	sess.UpdateSearchInput(*body.Value)
	return h.render(c, sess.State(), sess.SearchPending())
}

// SetFilter PUT /api/v1/{list}/filters/:dimension {"value": "..."}.
// "all" or "" clears the dimension.
func (h *Handlers) SetFilter(c *fiber.Ctx) error {
	var body valueBody
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.Value == nil {
		return response.BadRequest(c, "value is required", nil)
	}
	sess := h.session(c)
	if err := sess.SetCategoricalFilter(filter.Dimension(c.Params("dimension")), *body.Value); err != nil {
		return badFilter(c, err)
	}
	return h.render(c, sess.State(), sess.SearchPending())
}

// Clear DELETE /api/v1/{list}/filters.
func (h *Handlers) Clear(c *fiber.Ctx) error {
	sess := h.session(c)
	sess.ClearAllFilters()
	return h.render(c, sess.State(), sess.SearchPending())
}

// Facets GET /api/v1/{list}/facets: select options for every dimension.
func (h *Handlers) Facets(c *fiber.Ctx) error {
	items, err := h.Source.Load(c.UserContext())
	if err != nil {
		return err
	}
	options := dirsvc.FacetOptions(h.Source.Schema(), dirsvc.Records(items))
	return response.Success(c, "Facets fetched", options, nil)
}

func (h *Handlers) session(c *fiber.Ctx) *filter.Session {
	return h.Registry.Get(c.UserContext(), middleware.GetConsoleSessionID(c))
}

func (h *Handlers) render(c *fiber.Ctx, st filter.State, pending bool) error {
	items, err := h.Source.Load(c.UserContext())
	if err != nil {
		log.Error().Err(err).Str("scope", h.Source.Scope()).Msg("List load failed")
		return err
	}
	schema := h.Source.Schema()
	visible := slices.Collect(filter.Visible(dirsvc.Records(items), schema, st.Criteria()))

	selectors := make(map[filter.Dimension]string)
	for _, f := range schema.Facets() {
		selectors[f.Dimension] = st.Selector(f.Dimension)
	}
	view := View{
		Rows:      dirsvc.Rows(items, visible),
		Total:     len(items),
		Visible:   len(visible),
		NoResults: len(visible) == 0,
		Filters: FilterState{
			RawSearch:     st.RawSearch,
			Term:          st.Term,
			Selectors:     selectors,
			SearchPending: pending,
		},
		ActiveFilters: dirsvc.ActiveFilters(schema, st),
	}
	return response.Success(c, "List fetched", view, nil)
}

func badFilter(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, filter.ErrUnknownDimension):
		return response.BadRequest(c, err.Error(), fiber.Map{"kind": "unknown_dimension"})
	case errors.Is(err, filter.ErrUnknownValue):
		return response.BadRequest(c, err.Error(), fiber.Map{"kind": "unknown_value"})
	}
	return err
}

// Register mounts the list routes under group.
func (h *Handlers) Register(group fiber.Router) {
	group.Get("/", h.List)
	group.Get("/search", h.Search)
	group.Get("/facets", h.Facets)
	group.Put("/filters/search", h.UpdateSearch)
	group.Put("/filters/:dimension", h.SetFilter)
	group.Delete("/filters", h.Clear)
}
