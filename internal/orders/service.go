package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/dvalenzuela/retrade-backend/internal/quotecart"
	"github.com/dvalenzuela/retrade-backend/pkg/db/models"
	"github.com/dvalenzuela/retrade-backend/pkg/enums"
	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/pagination"
)

// maxNumberAttempts bounds retries when a generated order number collides.
const maxNumberAttempts = 5

const (
	accessoryOriginalBox     = "original_box"
	accessoryOriginalCharger = "original_charger"
)

// statusTransitions is the allowed lifecycle graph. Paid and rejected are
// terminal.
var statusTransitions = map[enums.SellOrderStatus][]enums.SellOrderStatus{
	enums.SellOrderStatusSubmitted:  {enums.SellOrderStatusKitSent},
	enums.SellOrderStatusKitSent:    {enums.SellOrderStatusReceived},
	enums.SellOrderStatusReceived:   {enums.SellOrderStatusInspecting},
	enums.SellOrderStatusInspecting: {enums.SellOrderStatusApproved, enums.SellOrderStatusRejected},
	enums.SellOrderStatusApproved:   {enums.SellOrderStatusPaid},
}

// CartSource hands out the session's quote cart store.
type CartSource interface {
	Get(ctx context.Context, sessionID string) (*quotecart.Store, error)
}

// SubmitInput carries everything needed to turn a cart into a sell order.
type SubmitInput struct {
	SessionID     string
	CustomerName  string
	CustomerEmail string
	PayoutMethod  enums.PayoutMethod
	PayoutDetail  *string
}

// ListInput carries the admin listing filters.
type ListInput struct {
	Status string
	Limit  int
	Cursor string
}

// OrderPage is one page of sell orders plus the cursor for the next one.
type OrderPage struct {
	Orders     []models.SellOrder
	NextCursor string
}

// Service owns sell order submission, tracking and lifecycle management.
type Service struct {
	repo         Repository
	carts        CartSource
	numberPrefix string
	now          func() time.Time
}

func NewService(repo Repository, carts CartSource, numberPrefix string) *Service {
	if numberPrefix == "" {
		numberPrefix = "RT"
	}
	return &Service{
		repo:         repo,
		carts:        carts,
		numberPrefix: numberPrefix,
		now:          time.Now,
	}
}

// Submit freezes the session's cart into a sell order. The cart is cleared
// only after the order row is committed, so a failed submit leaves the cart
// intact for a retry.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*models.SellOrder, error) {
	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	store, err := s.carts.Get(ctx, input.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote cart")
	}
	items := store.Items()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	now := s.now().UTC()
	order := &models.SellOrder{
		ID:            uuid.New(),
		SessionID:     input.SessionID,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: normalizeEmail(input.CustomerEmail),
		PayoutMethod:  input.PayoutMethod,
		PayoutDetail:  input.PayoutDetail,
		Status:        enums.SellOrderStatusSubmitted,
		StatusAt:      now,
	}

	total := decimal.Zero
	for _, item := range items {
		order.Items = append(order.Items, snapshotItem(order.ID, item))
		total = total.Add(item.QuotedPrice)
	}
	order.TotalPayout = total

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := GenerateOrderNumber(s.numberPrefix)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		order.OrderNumber = number

		err = s.repo.Create(ctx, order)
		if err == nil {
			store.Clear(ctx)
			return order, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sell order")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate an order number")
}

// Track looks up an order for the customer. The email must match what was
// submitted; a mismatch reads the same as a missing order.
func (s *Service) Track(ctx context.Context, orderNumber, email string) (*models.SellOrder, error) {
	order, err := s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(orderNumber)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get sell order")
	}
	if order.CustomerEmail != normalizeEmail(email) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// GetByNumber is the admin lookup; no email check.
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*models.SellOrder, error) {
	order, err := s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(orderNumber)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get sell order")
	}
	return order, nil
}

// UpdateStatus advances an order along the lifecycle graph. Invalid jumps and
// moves out of a terminal state are rejected with the allowed next states.
func (s *Service) UpdateStatus(ctx context.Context, orderNumber string, next enums.SellOrderStatus) (*models.SellOrder, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(order.Status, next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{
				"current": order.Status.String(),
				"allowed": allowedNext(order.Status),
			})
	}

	statusAt := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, order.ID, next, statusAt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}

	order.Status = next
	order.StatusAt = statusAt
	return order, nil
}

// List returns one cursor page of orders for the admin dashboard.
func (s *Service) List(ctx context.Context, input ListInput) (*OrderPage, error) {
	filter := ListFilter{}
	if strings.TrimSpace(input.Status) != "" {
		status, err := enums.ParseSellOrderStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor

	limit := pagination.NormalizeLimit(input.Limit)
	filter.Limit = limit + 1

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sell orders")
	}

	page := &OrderPage{Orders: list}
	if len(list) > limit {
		page.Orders = list[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func validateSubmit(input SubmitInput) error {
	if strings.TrimSpace(input.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if normalizeEmail(input.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if !input.PayoutMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payout method")
	}
	if input.PayoutMethod != enums.PayoutMethodStoreCredit {
		if input.PayoutDetail == nil || strings.TrimSpace(*input.PayoutDetail) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "payout detail is required for this payout method")
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func snapshotItem(orderID uuid.UUID, item quotecart.QuoteItem) models.SellOrderItem {
	var accessories pq.StringArray
	if item.HasOriginalBox {
		accessories = append(accessories, accessoryOriginalBox)
	}
	if item.HasOriginalCharger {
		accessories = append(accessories, accessoryOriginalCharger)
	}

	return models.SellOrderItem{
		ID:            uuid.New(),
		OrderID:       orderID,
		ModelID:       item.ModelID,
		ModelName:     item.ModelName,
		BrandName:     item.BrandName,
		CategoryName:  item.CategoryName,
		ConditionID:   item.ConditionID,
		ConditionName: item.ConditionName,
		CarrierName:   item.CarrierName,
		StorageName:   item.StorageName,
		Accessories:   accessories,
		QuotedPrice:   item.QuotedPrice,
		ImageURL:      item.ImageURL,
		QuotedAt:      item.AddedAt,
	}
}

func transitionAllowed(current, next enums.SellOrderStatus) bool {
	for _, candidate := range statusTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func allowedNext(current enums.SellOrderStatus) []string {
	var out []string
	for _, candidate := range statusTransitions[current] {
		out = append(out, candidate.String())
	}
	return out
}
