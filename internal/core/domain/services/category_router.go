package services

import (
	"errors"
	"fmt"
	"sort"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/order"
)

var (
	// ErrUnroutableCategory is returned for a category without a registered route.
	ErrUnroutableCategory = errors.New("no route for category")

	// ErrMixedCategories is returned when an order's lines span several categories.
	ErrMixedCategories = errors.New("order lines span more than one category")
)

// Step names a unit of work in an order process. The engine invokes the work
// handler registered for the step; StepApproval is a human task.
type Step string

const (
	StepValidate Step = "validate"
	StepPay      Step = "pay"
	StepApproval Step = "approval"
	StepFulfill  Step = "fulfill"
	StepShip     Step = "ship"
	StepReject   Step = "reject"
)

const (
	QATeam         = "qa-team"
	FoodSafetyTeam = "food-safety-team"
)

// Route is what the router resolves a category to.
type Route struct {
	Category catalog.Category
	// ProcessKey is the sole coupling to the engine's process catalog.
	ProcessKey string
	// ApprovalTeam is the candidate group of the approval task; empty when the
	// category needs no human sign-off.
	ApprovalTeam string
	// ApprovalTask is the display name of the approval task.
	ApprovalTask string
	Steps        []Step
}

// RequiresApproval reports whether the process contains a human approval task.
func (r Route) RequiresApproval() bool {
	return r.ApprovalTeam != ""
}

// ProcessKey returns the "<category>-order-process" key convention.
func ProcessKey(category catalog.Category) string {
	return string(category) + "-order-process"
}

func defaultRoutes() []Route {
	return []Route{
		{
			Category:     catalog.Electronics,
			ProcessKey:   ProcessKey(catalog.Electronics),
			ApprovalTeam: QATeam,
			ApprovalTask: "Quality Assurance Inspection",
			Steps:        []Step{StepValidate, StepPay, StepApproval, StepFulfill, StepShip},
		},
		{
			Category:   catalog.Clothing,
			ProcessKey: ProcessKey(catalog.Clothing),
			Steps:      []Step{StepValidate, StepPay, StepFulfill, StepShip},
		},
		{
			Category:     catalog.Food,
			ProcessKey:   ProcessKey(catalog.Food),
			ApprovalTeam: FoodSafetyTeam,
			ApprovalTask: "Food Safety Check",
			Steps:        []Step{StepValidate, StepApproval, StepPay, StepFulfill, StepShip},
		},
	}
}

// CategoryRouter resolves categories to routes. It holds no mutable state.
type CategoryRouter struct {
	routes map[catalog.Category]Route
}

type RouterOption func(map[catalog.Category]Route)

// WithRoute registers or replaces the route of r.Category. An empty ProcessKey
// defaults to the naming convention.
func WithRoute(r Route) RouterOption {
	return func(routes map[catalog.Category]Route) {
		if r.ProcessKey == "" {
			r.ProcessKey = ProcessKey(r.Category)
		}
		routes[r.Category] = r
	}
}

// NewCategoryRouter returns a router with the electronics, clothing and food routes.
func NewCategoryRouter(opts ...RouterOption) CategoryRouter {
	routes := make(map[catalog.Category]Route)
	for _, r := range defaultRoutes() {
		routes[r.Category] = r
	}
	for _, opt := range opts {
		opt(routes)
	}
	return CategoryRouter{routes: routes}
}

// PrimaryCategory is the category of the first line. Orders are expected to be
// single-category; see CheckSingleCategory.
func (r CategoryRouter) PrimaryCategory(items []*order.LineItem) (catalog.Category, error) {
	if len(items) == 0 {
		return "", order.ErrNoItems
	}
	return items[0].Category(), nil
}

// CheckSingleCategory rejects line sets that span several categories.
func (r CategoryRouter) CheckSingleCategory(items []*order.LineItem) error {
	primary, err := r.PrimaryCategory(items)
	if err != nil {
		return err
	}
	for _, l := range items[1:] {
		if l.Category() != primary {
			return fmt.Errorf("%w: %s and %s", ErrMixedCategories, primary, l.Category())
		}
	}
	return nil
}

func (r CategoryRouter) RouteFor(category catalog.Category) (Route, error) {
	route, ok := r.routes[category]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnroutableCategory, category)
	}
	return route, nil
}

// RouteOrder resolves the route of the order's primary category.
func (r CategoryRouter) RouteOrder(o *order.Order) (Route, error) {
	category, err := r.PrimaryCategory(o.Items())
	if err != nil {
		return Route{}, err
	}
	return r.RouteFor(category)
}

// Routes lists every registered route ordered by category.
func (r CategoryRouter) Routes() []Route {
	routes := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Category < routes[j].Category })
	return routes
}

// ApprovalTeams returns the candidate groups of all categories that require approval.
func (r CategoryRouter) ApprovalTeams() []string {
	teams := make([]string, 0, len(r.routes))
	seen := make(map[string]bool)
	for _, route := range r.Routes() {
		if route.RequiresApproval() && !seen[route.ApprovalTeam] {
			seen[route.ApprovalTeam] = true
			teams = append(teams, route.ApprovalTeam)
		}
	}
	return teams
}
