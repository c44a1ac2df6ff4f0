package fakeapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

const topProductsLimit = 5

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	index := indexOf(s.data.Orders, func(o *bizapi.Order) string { return o.ID }, id)
	if index < 0 {
		return notFound("order", id)
	}

	order := &s.data.Orders[index]

	switch order.Status {
	case bizapi.OrderStatusShipped, bizapi.OrderStatusDelivered:
		return conflict("order %s is already %s", order.Number, order.Status)
	case bizapi.OrderStatusCancelled:
	default:
		order.Status = bizapi.OrderStatusCancelled
		order.UpdatedAt = s.now().UTC()
	}

	writeEnvelope(w, http.StatusOK, "order cancelled", *order)

	return nil
}

func (s *Server) approveAgentRequest(w http.ResponseWriter, r *http.Request) error {
	return s.reviewAgentRequest(w, chi.URLParam(r, "id"), bizapi.AgentRequestApproved, "")
}

func (s *Server) rejectAgentRequest(w http.ResponseWriter, r *http.Request) error {
	var request bizapi.RejectRequest

	err := decodeBody(r, &request)
	if err != nil {
		return err
	}

	err = required("reason", request.Reason)
	if err != nil {
		return err
	}

	return s.reviewAgentRequest(w, chi.URLParam(r, "id"), bizapi.AgentRequestRejected, request.Reason)
}

func (s *Server) reviewAgentRequest(w http.ResponseWriter, id string, status bizapi.AgentRequestStatus, reason string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	index := indexOf(s.data.AgentRequests, func(a *bizapi.AgentRequest) string { return a.ID }, id)
	if index < 0 {
		return notFound("agent request", id)
	}

	request := &s.data.AgentRequests[index]
	if request.Status != bizapi.AgentRequestPending {
		return conflict("agent request %s is already %s", id, request.Status)
	}

	reviewedAt := s.now().UTC()
	request.Status = status
	request.Reason = reason
	request.ReviewedAt = &reviewedAt

	writeEnvelope(w, http.StatusOK, "agent request "+string(status), *request)

	return nil
}

func (s *Server) salesReport(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	from, err := dateParam(query.Get("from"), "from")
	if err != nil {
		return err
	}

	to, err := dateParam(query.Get("to"), "to")
	if err != nil {
		return err
	}

	if to.Before(from) {
		return badRequest("from must not be after to")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	report := bizapi.SalesReport{
		From:        from.Format(constants.DateFormat),
		To:          to.Format(constants.DateFormat),
		TopProducts: []bizapi.ProductSales{},
	}

	end := to.AddDate(0, 0, 1)
	included := make(map[string]bool)
	products := make(map[string]*bizapi.ProductSales)

	for _, order := range s.data.Orders {
		if order.Status == bizapi.OrderStatusCancelled || order.CreatedAt.Before(from) || !order.CreatedAt.Before(end) {
			continue
		}

		included[order.ID] = true
		report.OrderCount++
		report.Revenue += order.Total

		for _, line := range order.Items {
			sales, ok := products[line.ProductID]
			if !ok {
				sales = &bizapi.ProductSales{ProductID: line.ProductID, Name: line.Name}
				products[line.ProductID] = sales
			}

			sales.Quantity += line.Quantity
			sales.Revenue += float64(line.Quantity) * line.UnitPrice
		}
	}

	for _, commission := range s.data.Commissions {
		if included[commission.OrderID] {
			report.Commissions += commission.Amount
		}
	}

	for _, sales := range products {
		report.TopProducts = append(report.TopProducts, *sales)
	}

	sort.Slice(report.TopProducts, func(i, j int) bool {
		left, right := report.TopProducts[i], report.TopProducts[j]
		if left.Revenue != right.Revenue {
			return left.Revenue > right.Revenue
		}

		return left.ProductID < right.ProductID
	})

	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}

	writeEnvelope(w, http.StatusOK, "ok", report)

	return nil
}

func dateParam(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, badRequest("%s is required", name)
	}

	value, err := time.Parse(constants.DateFormat, raw)
	if err != nil {
		return time.Time{}, badRequest("%s must be a date like 2006-01-02, got %q", name, raw)
	}

	return value, nil
}
