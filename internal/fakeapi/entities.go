package fakeapi

import (
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var productResource = resource[bizapi.Product]{
	path:  "products",
	kind:  "product",
	items: func(d *Dataset) *[]bizapi.Product { return &d.Products },
	id:    func(p *bizapi.Product) string { return p.ID },
	setID: func(p *bizapi.Product, id string) { p.ID = id },
	prepare: func(item, existing *bizapi.Product, now time.Time) error {
		err := required("name", item.Name)
		if err != nil {
			return err
		}

		if item.Price < 0 {
			return badRequest("price must not be negative")
		}

		if item.Stock < 0 {
			return badRequest("stock must not be negative")
		}

		item.CreatedAt = now
		if existing != nil {
			item.CreatedAt = existing.CreatedAt
		}

		item.UpdatedAt = now

		return nil
	},
	match: func(item *bizapi.Product, query url.Values) bool {
		if q := query.Get("q"); q != "" {
			if !containsFold(item.Name, q) && !containsFold(item.SKU, q) && !containsFold(item.Description, q) {
				return false
			}
		}

		return matchesParam(query, "category", item.Category)
	},
}

var orderResource = resource[bizapi.Order]{
	path:  "orders",
	kind:  "order",
	items: func(d *Dataset) *[]bizapi.Order { return &d.Orders },
	id:    func(o *bizapi.Order) string { return o.ID },
	setID: func(o *bizapi.Order, id string) { o.ID = id },
	prepare: func(item, existing *bizapi.Order, now time.Time) error {
		err := required("customerId", item.CustomerID)
		if err != nil {
			return err
		}

		if len(item.Items) == 0 {
			return badRequest("an order needs at least one item")
		}

		item.Total = 0

		for _, line := range item.Items {
			if line.Quantity < 1 {
				return badRequest("quantity of %s must be at least 1", line.ProductID)
			}

			item.Total += float64(line.Quantity) * line.UnitPrice
		}

		switch item.Status {
		case "":
			item.Status = bizapi.OrderStatusPending
		case bizapi.OrderStatusPending, bizapi.OrderStatusPaid, bizapi.OrderStatusShipped,
			bizapi.OrderStatusDelivered, bizapi.OrderStatusCancelled:
		default:
			return badRequest("unknown order status %q", item.Status)
		}

		item.CreatedAt = now
		if existing != nil {
			item.CreatedAt = existing.CreatedAt
		}

		item.UpdatedAt = now

		return nil
	},
	match: func(item *bizapi.Order, query url.Values) bool {
		return matchesParam(query, "customerId", item.CustomerID) &&
			matchesParam(query, "agentId", item.AgentID) &&
			matchesParam(query, "status", string(item.Status))
	},
	extra: func(s *Server, r chi.Router) {
		r.Post("/{id}/cancel", s.wrap(s.cancelOrder))
	},
}

var customerResource = resource[bizapi.Customer]{
	path:  "customers",
	kind:  "customer",
	items: func(d *Dataset) *[]bizapi.Customer { return &d.Customers },
	id:    func(c *bizapi.Customer) string { return c.ID },
	setID: func(c *bizapi.Customer, id string) { c.ID = id },
	prepare: func(item, existing *bizapi.Customer, now time.Time) error {
		err := required("name", item.Name)
		if err != nil {
			return err
		}

		err = required("email", item.Email)
		if err != nil {
			return err
		}

		item.CreatedAt = now
		if existing != nil {
			item.CreatedAt = existing.CreatedAt
		}

		return nil
	},
	match: func(item *bizapi.Customer, query url.Values) bool {
		q := query.Get("q")

		return q == "" || containsFold(item.Name, q) || containsFold(item.Email, q)
	},
}

var userResource = resource[bizapi.User]{
	path:  "users",
	kind:  "user",
	items: func(d *Dataset) *[]bizapi.User { return &d.Users },
	id:    func(u *bizapi.User) string { return u.ID },
	setID: func(u *bizapi.User, id string) { u.ID = id },
	prepare: func(item, existing *bizapi.User, now time.Time) error {
		err := required("username", item.Username)
		if err != nil {
			return err
		}

		switch item.Role {
		case "":
			item.Role = RoleAgent
		case RoleAdmin, RoleAgent:
		default:
			return badRequest("unknown role %q", item.Role)
		}

		item.CreatedAt = now
		if existing != nil {
			item.CreatedAt = existing.CreatedAt
		}

		return nil
	},
	match: func(item *bizapi.User, query url.Values) bool {
		return matchesParam(query, "role", item.Role)
	},
	adminWrites: true,
}

var agentRequestResource = resource[bizapi.AgentRequest]{
	path:  "agent-requests",
	kind:  "agent request",
	items: func(d *Dataset) *[]bizapi.AgentRequest { return &d.AgentRequests },
	id:    func(a *bizapi.AgentRequest) string { return a.ID },
	setID: func(a *bizapi.AgentRequest, id string) { a.ID = id },
	prepare: func(item, existing *bizapi.AgentRequest, now time.Time) error {
		err := required("name", item.Name)
		if err != nil {
			return err
		}

		err = required("email", item.Email)
		if err != nil {
			return err
		}

		// Review state only changes through approve and reject.
		if existing == nil {
			item.Status = bizapi.AgentRequestPending
			item.Reason = ""
			item.ReviewedAt = nil
			item.CreatedAt = now

			return nil
		}

		item.Status = existing.Status
		item.Reason = existing.Reason
		item.ReviewedAt = existing.ReviewedAt
		item.CreatedAt = existing.CreatedAt

		return nil
	},
	match: func(item *bizapi.AgentRequest, query url.Values) bool {
		return matchesParam(query, "status", string(item.Status))
	},
	extra: func(s *Server, r chi.Router) {
		admin := r.With(s.requireRole(RoleAdmin))
		admin.Post("/{id}/approve", s.wrap(s.approveAgentRequest))
		admin.Post("/{id}/reject", s.wrap(s.rejectAgentRequest))
	},
}

var commissionResource = resource[bizapi.Commission]{
	path:  "commissions",
	kind:  "commission",
	items: func(d *Dataset) *[]bizapi.Commission { return &d.Commissions },
	id:    func(c *bizapi.Commission) string { return c.ID },
	setID: func(c *bizapi.Commission, id string) { c.ID = id },
	prepare: func(item, existing *bizapi.Commission, now time.Time) error {
		err := required("agentId", item.AgentID)
		if err != nil {
			return err
		}

		err = required("orderId", item.OrderID)
		if err != nil {
			return err
		}

		if item.Rate < 0 || item.Rate > 1 {
			return badRequest("rate must be between 0 and 1")
		}

		if item.Amount < 0 {
			return badRequest("amount must not be negative")
		}

		item.CreatedAt = now
		if existing != nil {
			item.CreatedAt = existing.CreatedAt
		}

		return nil
	},
	match: func(item *bizapi.Commission, query url.Values) bool {
		if !matchesParam(query, "agentId", item.AgentID) {
			return false
		}

		switch query.Get("paid") {
		case "true":
			return item.Paid
		case "false":
			return !item.Paid
		default:
			return true
		}
	},
}
