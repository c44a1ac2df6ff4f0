package bizapi

import "time"

// Product is a catalog entry.
type Product struct {
	ID          string    `json:"id"          yaml:"id"`
	SKU         string    `json:"sku"         yaml:"sku"`
	Name        string    `json:"name"        yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Category    string    `json:"category"    yaml:"category"`
	Price       float64   `json:"price"       yaml:"price"`
	Stock       int       `json:"stock"       yaml:"stock"`
	Active      bool      `json:"active"      yaml:"active"`
	CreatedAt   time.Time `json:"createdAt"   yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"   yaml:"updatedAt"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order states.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"productId" yaml:"productId"`
	Name      string  `json:"name"      yaml:"name"`
	Quantity  int     `json:"quantity"  yaml:"quantity"`
	UnitPrice float64 `json:"unitPrice" yaml:"unitPrice"`
}

// Order is a customer purchase.
type Order struct {
	ID         string      `json:"id"         yaml:"id"`
	Number     string      `json:"number"     yaml:"number"`
	CustomerID string      `json:"customerId" yaml:"customerId"`
	AgentID    string      `json:"agentId"    yaml:"agentId"`
	Status     OrderStatus `json:"status"     yaml:"status"`
	Items      []OrderItem `json:"items"      yaml:"items"`
	Total      float64     `json:"total"      yaml:"total"`
	CreatedAt  time.Time   `json:"createdAt"  yaml:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"  yaml:"updatedAt"`
}

// Customer is a buyer.
type Customer struct {
	ID        string    `json:"id"        yaml:"id"`
	Name      string    `json:"name"      yaml:"name"`
	Email     string    `json:"email"     yaml:"email"`
	Phone     string    `json:"phone"     yaml:"phone"`
	Address   string    `json:"address"   yaml:"address"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// User is an operator account of the back office.
type User struct {
	ID        string    `json:"id"        yaml:"id"`
	Username  string    `json:"username"  yaml:"username"`
	Email     string    `json:"email"     yaml:"email"`
	FullName  string    `json:"fullName"  yaml:"fullName"`
	Role      string    `json:"role"      yaml:"role"`
	Active    bool      `json:"active"    yaml:"active"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// AgentRequestStatus is the review state of an agent request.
type AgentRequestStatus string

// Agent request states.
const (
	AgentRequestPending  AgentRequestStatus = "pending"
	AgentRequestApproved AgentRequestStatus = "approved"
	AgentRequestRejected AgentRequestStatus = "rejected"
)

// AgentRequest is an application to become a sales agent.
type AgentRequest struct {
	ID         string             `json:"id"                   yaml:"id"`
	UserID     string             `json:"userId"               yaml:"userId"`
	Name       string             `json:"name"                 yaml:"name"`
	Email      string             `json:"email"                yaml:"email"`
	Region     string             `json:"region"               yaml:"region"`
	Status     AgentRequestStatus `json:"status"               yaml:"status"`
	Reason     string             `json:"reason,omitempty"     yaml:"reason,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"            yaml:"createdAt"`
	ReviewedAt *time.Time         `json:"reviewedAt,omitempty" yaml:"reviewedAt,omitempty"`
}

// Commission is an agent's share of an order.
type Commission struct {
	ID        string    `json:"id"        yaml:"id"`
	AgentID   string    `json:"agentId"   yaml:"agentId"`
	OrderID   string    `json:"orderId"   yaml:"orderId"`
	Rate      float64   `json:"rate"      yaml:"rate"`
	Amount    float64   `json:"amount"    yaml:"amount"`
	Paid      bool      `json:"paid"      yaml:"paid"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// ProductSales is one product's line in a sales report.
type ProductSales struct {
	ProductID string  `json:"productId" yaml:"productId"`
	Name      string  `json:"name"      yaml:"name"`
	Quantity  int     `json:"quantity"  yaml:"quantity"`
	Revenue   float64 `json:"revenue"   yaml:"revenue"`
}

// SalesReport aggregates orders over a date range.
type SalesReport struct {
	From        string         `json:"from"        yaml:"from"`
	To          string         `json:"to"          yaml:"to"`
	OrderCount  int            `json:"orderCount"  yaml:"orderCount"`
	Revenue     float64        `json:"revenue"     yaml:"revenue"`
	Commissions float64        `json:"commissions" yaml:"commissions"`
	TopProducts []ProductSales `json:"topProducts" yaml:"topProducts"`
}

// LoginRequest is the body of a sign-in call.
type LoginRequest struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"-"`
}

// Session is what a successful sign-in returns.
type Session struct {
	Token     string    `json:"token"     yaml:"token"`
	ExpiresAt time.Time `json:"expiresAt" yaml:"expiresAt"`
	User      User      `json:"user"      yaml:"user"`
}

// RejectRequest carries the reason for rejecting an agent request.
type RejectRequest struct {
	Reason string `json:"reason" yaml:"reason"`
}

// Summary holds collection totals for a dashboard.
type Summary struct {
	Products      int `json:"products"      yaml:"products"`
	Orders        int `json:"orders"        yaml:"orders"`
	Customers     int `json:"customers"     yaml:"customers"`
	Users         int `json:"users"         yaml:"users"`
	AgentRequests int `json:"agentRequests" yaml:"agentRequests"`
	Commissions   int `json:"commissions"   yaml:"commissions"`
}
