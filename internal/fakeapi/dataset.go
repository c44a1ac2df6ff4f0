package fakeapi

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// Account is a sign-in identity of the fixture backend.
type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UserID   string `yaml:"userId"`
}

// Dataset is the content the fixture backend serves.
type Dataset struct {
	Accounts      []Account             `yaml:"accounts"`
	Products      []bizapi.Product      `yaml:"products"`
	Orders        []bizapi.Order        `yaml:"orders"`
	Customers     []bizapi.Customer     `yaml:"customers"`
	Users         []bizapi.User         `yaml:"users"`
	AgentRequests []bizapi.AgentRequest `yaml:"agentRequests"`
	Commissions   []bizapi.Commission   `yaml:"commissions"`
}

// LoadDataset reads a YAML fixture file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", path, err)
	}

	dataset := &Dataset{}

	err = yaml.Unmarshal(data, dataset)
	if err != nil {
		return nil, fmt.Errorf("parsing fixtures %s: %w", path, err)
	}

	return dataset, nil
}

// seedEpoch anchors every seeded timestamp so seeds are reproducible.
var seedEpoch = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

var (
	seedCategories = []string{"hardware", "garden", "kitchen", "office"}
	seedRegions    = []string{"north", "south", "east", "west"}
	seedStatuses   = []bizapi.OrderStatus{
		bizapi.OrderStatusPending,
		bizapi.OrderStatusPaid,
		bizapi.OrderStatusShipped,
		bizapi.OrderStatusDelivered,
	}
)

// SeedDataset builds a deterministic dataset with n records of each entity.
// It contains an "admin" and an "agent" account, both with password
// "secret".
func SeedDataset(n int) *Dataset {
	dataset := &Dataset{
		Users: []bizapi.User{
			{ID: "usr-admin", Username: "admin", Email: "admin@example.com", FullName: "Ada Admin", Role: RoleAdmin, Active: true, CreatedAt: seedEpoch},
			{ID: "usr-agent", Username: "agent", Email: "agent@example.com", FullName: "Sam Agent", Role: RoleAgent, Active: true, CreatedAt: seedEpoch},
		},
		Accounts: []Account{
			{Username: "admin", Password: "secret", UserID: "usr-admin"},
			{Username: "agent", Password: "secret", UserID: "usr-agent"},
		},
	}

	for i := 1; i <= n; i++ {
		day := seedEpoch.AddDate(0, 0, i)

		product := bizapi.Product{
			ID:          fmt.Sprintf("prd-%03d", i),
			SKU:         fmt.Sprintf("SKU-%05d", i*7),
			Name:        fmt.Sprintf("Product %d", i),
			Description: fmt.Sprintf("Seeded product number %d", i),
			Category:    seedCategories[i%len(seedCategories)],
			Price:       float64(i*5) + 0.99,
			Stock:       (i * 13) % 50,
			Active:      i%5 != 0,
			CreatedAt:   day,
			UpdatedAt:   day,
		}
		dataset.Products = append(dataset.Products, product)

		customer := bizapi.Customer{
			ID:        fmt.Sprintf("cus-%03d", i),
			Name:      fmt.Sprintf("Customer %d", i),
			Email:     fmt.Sprintf("customer%d@example.com", i),
			Phone:     fmt.Sprintf("+1-555-%04d", i),
			Address:   fmt.Sprintf("%d Main Street", i),
			CreatedAt: day,
		}
		dataset.Customers = append(dataset.Customers, customer)

		quantity := i%3 + 1
		order := bizapi.Order{
			ID:         fmt.Sprintf("ord-%03d", i),
			Number:     fmt.Sprintf("SO-%04d", 1000+i),
			CustomerID: customer.ID,
			AgentID:    "usr-agent",
			Status:     seedStatuses[i%len(seedStatuses)],
			Items: []bizapi.OrderItem{
				{ProductID: product.ID, Name: product.Name, Quantity: quantity, UnitPrice: product.Price},
			},
			Total:     float64(quantity) * product.Price,
			CreatedAt: day,
			UpdatedAt: day,
		}
		dataset.Orders = append(dataset.Orders, order)

		dataset.Commissions = append(dataset.Commissions, bizapi.Commission{
			ID:        fmt.Sprintf("com-%03d", i),
			AgentID:   order.AgentID,
			OrderID:   order.ID,
			Rate:      0.05,
			Amount:    order.Total * 0.05,
			Paid:      i%2 == 0,
			CreatedAt: day,
		})

		dataset.AgentRequests = append(dataset.AgentRequests, bizapi.AgentRequest{
			ID:        fmt.Sprintf("agr-%03d", i),
			UserID:    fmt.Sprintf("usr-applicant-%03d", i),
			Name:      fmt.Sprintf("Applicant %d", i),
			Email:     fmt.Sprintf("applicant%d@example.com", i),
			Region:    seedRegions[i%len(seedRegions)],
			Status:    bizapi.AgentRequestPending,
			CreatedAt: day,
		})
	}

	return dataset
}
