// Package http exposes the monitoring and order-intake surface of the
// dispatch engine over REST.
package http

import (
	"errors"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/partner"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler  commands.CreateOrderCommandHandler
	getAllOrdersHandler queries.GetAllOrdersQueryHandler
	pool                *partner.Pool
}

// NewServer creates a new HTTP server with the required command and
// query handlers plus the partner pool for availability snapshots.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	getAllOrdersHandler queries.GetAllOrdersQueryHandler,
	pool *partner.Pool,
) *Server {
	return &Server{
		createOrderHandler:  createOrderHandler,
		getAllOrdersHandler: getAllOrdersHandler,
		pool:                pool,
	}
}

// RegisterRoutes attaches all server routes to the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.GetHealth)
	e.GET("/api/v1/orders", s.GetOrders)
	e.POST("/api/v1/orders", s.CreateOrder)
	e.GET("/api/v1/partners", s.GetPartners)
}

// ErrorResponse is the JSON error envelope returned by all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OrderResponse is one order row as exposed over the API.
type OrderResponse struct {
	ID               string     `json:"id"`
	CreatedAt        *time.Time `json:"created_at"`
	Lat              float64    `json:"lat"`
	Lng              float64    `json:"lng"`
	ItemCount        int        `json:"item_count"`
	Status           string     `json:"status"`
	PartnerID        *int       `json:"partner_id"`
	EtaMinutes       *int       `json:"eta_minutes"`
	ReturnEtaMinutes *int       `json:"return_eta_minutes"`
	DeliverBy        *time.Time `json:"deliver_by"`
	ReturnBy         *time.Time `json:"return_by"`
}

// PartnerResponse is one partner with its current availability.
type PartnerResponse struct {
	ID        int        `json:"id"`
	Available bool       `json:"available"`
	FreeAt    *time.Time `json:"free_at"`
}

// NewOrderRequest is the payload for registering an order manually.
// ID is optional; a UUID is generated when absent.
type NewOrderRequest struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	ItemCount int     `json:"item_count"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetOrders handles GET /api/v1/orders - retrieves all orders with their
// dispatch state.
func (s *Server) GetOrders(ctx echo.Context) error {
	query := queries.NewGetAllOrdersQuery()

	orders, err := s.getAllOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	response := make([]OrderResponse, len(orders))
	for i, o := range orders {
		response[i] = OrderResponse{
			ID:               o.ID,
			CreatedAt:        o.CreatedAt,
			Lat:              o.Lat,
			Lng:              o.Lng,
			ItemCount:        o.ItemCount,
			Status:           o.Status,
			PartnerID:        o.PartnerID,
			EtaMinutes:       o.EtaMinutes,
			ReturnEtaMinutes: o.ReturnEtaMinutes,
			DeliverBy:        o.DeliverBy,
			ReturnBy:         o.ReturnBy,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// CreateOrder handles POST /api/v1/orders - registers a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req NewOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	location, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	cmd, err := commands.NewCreateOrderCommand(req.ID, time.Now().UTC(), location, req.ItemCount)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		if errors.Is(handleErr, errs.ErrObjectAlreadyExists) {
			return ctx.JSON(http.StatusConflict, ErrorResponse{
				Code:    http.StatusConflict,
				Message: "Order already exists: " + req.ID,
			})
		}

		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create order",
		})
	}

	return ctx.NoContent(http.StatusCreated)
}

// GetPartners handles GET /api/v1/partners - reports the current pool
// state. The snapshot is not reconciled: a partner whose trip has ended
// shows as busy until the next dispatch cycle selects.
func (s *Server) GetPartners(ctx echo.Context) error {
	views := s.pool.Snapshot()

	response := make([]PartnerResponse, len(views))
	for i, v := range views {
		response[i] = PartnerResponse{
			ID:        v.ID,
			Available: v.Available,
			FreeAt:    v.FreeAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}
