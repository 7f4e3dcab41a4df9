package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetAllOrdersQueryHandler reads all orders from the database, oldest
// arrival first. The handler returns rows as stored and performs no
// domain validation; monitoring should see malformed rows too.
type GetAllOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetAllOrdersQueryHandler creates a handler for order listing queries.
func NewGetAllOrdersQueryHandler(db *gorm.DB) GetAllOrdersQueryHandler {
	return GetAllOrdersQueryHandler{db: db}
}

// Handle executes the query and returns every order in arrival order.
func (h GetAllOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetAllOrdersQuery,
) ([]GetAllOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetAllOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			created_at,
			lat,
			lng,
			item_count,
			status,
			partner_id,
			eta_minutes,
			return_eta_minutes,
			deliver_by,
			return_by
		FROM orders
		ORDER BY row_num
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetAllOrdersQueryResponse

		err = rows.Scan(
			&resp.ID,
			&resp.CreatedAt,
			&resp.Lat,
			&resp.Lng,
			&resp.ItemCount,
			&resp.Status,
			&resp.PartnerID,
			&resp.EtaMinutes,
			&resp.ReturnEtaMinutes,
			&resp.DeliverBy,
			&resp.ReturnBy,
		)
		if err != nil {
			return nil, err
		}

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
