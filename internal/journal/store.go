package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trade-journal-go/internal/economics"
	"trade-journal-go/internal/models"
)

// Store owns the trade record lifecycle. It is the sole producer of the
// derived economics fields: every mutation that touches a price, the
// quantity, the instrument or the status recomputes charges and P&L from
// scratch through the calculator.
type Store struct {
	db       *gorm.DB
	logger   *zap.Logger
	schedule economics.ChargeSchedule

	// blocklist holds psychology states under which Create refuses to
	// log a new trade.
	blocklist map[string]struct{}
}

// NewStore creates a new trade store.
func NewStore(db *gorm.DB, logger *zap.Logger, schedule economics.ChargeSchedule, psychologyBlocklist []string) *Store {
	blocklist := make(map[string]struct{}, len(psychologyBlocklist))
	for _, state := range psychologyBlocklist {
		blocklist[state] = struct{}{}
	}

	return &Store{
		db:        db,
		logger:    logger,
		schedule:  schedule,
		blocklist: blocklist,
	}
}

// TradeInput carries the raw form fields for a new trade. Quantity may be
// zero, in which case Capital and RiskPercent must be set and the size is
// derived by the calculator.
type TradeInput struct {
	Symbol     string               `json:"symbol"`
	Direction  economics.Direction  `json:"direction"`
	Instrument economics.Instrument `json:"instrument"`

	EntryPrice  float64  `json:"entry_price"`
	ExitPrice   *float64 `json:"exit_price,omitempty"`
	StopLoss    float64  `json:"stop_loss"`
	TargetPrice float64  `json:"target_price"`

	Quantity    int64   `json:"quantity"`
	Capital     float64 `json:"capital"`
	RiskPercent float64 `json:"risk_percent"`

	Status   models.Status `json:"status"`
	OpenedAt time.Time     `json:"opened_at"`

	SetupType       string `json:"setup_type"`
	MarketCondition string `json:"market_condition"`
	PsychologyState string `json:"psychology_state"`
	Notes           string `json:"notes"`
}

// Create validates the input, assigns identity and entry time, derives
// the position size when none was supplied, computes economics for trades
// submitted already closed, and persists the record.
func (s *Store) Create(ctx context.Context, ownerID uint, input TradeInput) (*models.Trade, error) {
	if _, blocked := s.blocklist[input.PsychologyState]; blocked {
		return nil, ErrPsychologyBlocked
	}

	if input.Symbol == "" {
		return nil, invalidField("symbol", "is required")
	}
	if input.Direction != economics.DirectionLong && input.Direction != economics.DirectionShort {
		return nil, invalidField("direction", "must be LONG or SHORT")
	}
	instrument := input.Instrument
	if instrument == "" {
		instrument = economics.InstrumentEquity
	}
	if instrument != economics.InstrumentEquity && instrument != economics.InstrumentOption {
		return nil, invalidField("instrument", "must be EQUITY or OPTION")
	}
	if input.EntryPrice <= 0 {
		return nil, invalidField("entry_price", "must be positive")
	}
	if input.StopLoss < 0 {
		return nil, invalidField("stop_loss", "must not be negative")
	}
	if input.TargetPrice < 0 {
		return nil, invalidField("target_price", "must not be negative")
	}
	if input.ExitPrice != nil && *input.ExitPrice < 0 {
		return nil, invalidField("exit_price", "must not be negative")
	}

	quantity := input.Quantity
	if quantity < 0 {
		return nil, invalidField("quantity", "must be positive")
	}
	if quantity == 0 {
		if input.Capital <= 0 || input.RiskPercent <= 0 {
			return nil, invalidField("quantity", "either quantity or capital with risk percent is required")
		}
		derived, err := economics.PositionSize(input.Capital, input.RiskPercent, input.EntryPrice, input.StopLoss, input.Direction)
		if err != nil {
			return nil, err
		}
		quantity = derived
	}
	if quantity <= 0 {
		return nil, invalidField("quantity", "must be positive")
	}

	status := input.Status
	if status == "" {
		status = models.StatusOpen
	}
	if status != models.StatusOpen && status != models.StatusClosed {
		return nil, invalidField("status", "must be OPEN or CLOSED")
	}
	if status == models.StatusClosed && input.ExitPrice == nil {
		return nil, invalidField("exit_price", "is required to close a trade")
	}

	openedAt := input.OpenedAt
	if openedAt.IsZero() {
		openedAt = time.Now()
	}

	trade := models.Trade{
		OwnerID:         ownerID,
		OpenedAt:        openedAt,
		Symbol:          input.Symbol,
		Direction:       input.Direction,
		Instrument:      instrument,
		EntryPrice:      input.EntryPrice,
		ExitPrice:       input.ExitPrice,
		StopLoss:        input.StopLoss,
		TargetPrice:     input.TargetPrice,
		Quantity:        quantity,
		Status:          status,
		SetupType:       input.SetupType,
		MarketCondition: input.MarketCondition,
		PsychologyState: input.PsychologyState,
		Notes:           input.Notes,
	}
	s.recompute(&trade)

	if err := s.db.WithContext(ctx).Create(&trade).Error; err != nil {
		return nil, err
	}

	s.logger.Info("Trade created",
		zap.Uint("trade_id", trade.ID),
		zap.Uint("owner_id", ownerID),
		zap.String("symbol", trade.Symbol),
		zap.Int64("quantity", trade.Quantity))

	return &trade, nil
}

// TradePatch holds the mutable trade fields for an update. Derived fields
// are not representable here; any patch touching a price, the quantity,
// the instrument or the status forces a full recomputation.
type TradePatch struct {
	Symbol      *string               `json:"symbol,omitempty"`
	Direction   *economics.Direction  `json:"direction,omitempty"`
	Instrument  *economics.Instrument `json:"instrument,omitempty"`
	EntryPrice  *float64              `json:"entry_price,omitempty"`
	ExitPrice   *float64              `json:"exit_price,omitempty"`
	StopLoss    *float64              `json:"stop_loss,omitempty"`
	TargetPrice *float64              `json:"target_price,omitempty"`
	Quantity    *int64                `json:"quantity,omitempty"`
	Status      *models.Status        `json:"status,omitempty"`

	SetupType       *string `json:"setup_type,omitempty"`
	MarketCondition *string `json:"market_condition,omitempty"`
	PsychologyState *string `json:"psychology_state,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// Update applies the patch to the trade identified by (id, ownerID) and
// recomputes the derived fields. Applying the same patch twice yields the
// same record.
func (s *Store) Update(ctx context.Context, ownerID, id uint, patch TradePatch) (*models.Trade, error) {
	trade, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Symbol != nil {
		if *patch.Symbol == "" {
			return nil, invalidField("symbol", "is required")
		}
		trade.Symbol = *patch.Symbol
	}
	if patch.Direction != nil {
		if *patch.Direction != economics.DirectionLong && *patch.Direction != economics.DirectionShort {
			return nil, invalidField("direction", "must be LONG or SHORT")
		}
		trade.Direction = *patch.Direction
	}
	if patch.Instrument != nil {
		if *patch.Instrument != economics.InstrumentEquity && *patch.Instrument != economics.InstrumentOption {
			return nil, invalidField("instrument", "must be EQUITY or OPTION")
		}
		trade.Instrument = *patch.Instrument
	}
	if patch.EntryPrice != nil {
		if *patch.EntryPrice <= 0 {
			return nil, invalidField("entry_price", "must be positive")
		}
		trade.EntryPrice = *patch.EntryPrice
	}
	if patch.ExitPrice != nil {
		if *patch.ExitPrice < 0 {
			return nil, invalidField("exit_price", "must not be negative")
		}
		exit := *patch.ExitPrice
		trade.ExitPrice = &exit
	}
	if patch.StopLoss != nil {
		if *patch.StopLoss < 0 {
			return nil, invalidField("stop_loss", "must not be negative")
		}
		trade.StopLoss = *patch.StopLoss
	}
	if patch.TargetPrice != nil {
		if *patch.TargetPrice < 0 {
			return nil, invalidField("target_price", "must not be negative")
		}
		trade.TargetPrice = *patch.TargetPrice
	}
	if patch.Quantity != nil {
		if *patch.Quantity <= 0 {
			return nil, invalidField("quantity", "must be positive")
		}
		trade.Quantity = *patch.Quantity
	}
	if patch.Status != nil {
		if *patch.Status != models.StatusOpen && *patch.Status != models.StatusClosed {
			return nil, invalidField("status", "must be OPEN or CLOSED")
		}
		trade.Status = *patch.Status
	}
	if trade.Status == models.StatusClosed && trade.ExitPrice == nil {
		return nil, invalidField("exit_price", "is required to close a trade")
	}

	if patch.SetupType != nil {
		trade.SetupType = *patch.SetupType
	}
	if patch.MarketCondition != nil {
		trade.MarketCondition = *patch.MarketCondition
	}
	if patch.PsychologyState != nil {
		trade.PsychologyState = *patch.PsychologyState
	}
	if patch.Notes != nil {
		trade.Notes = *patch.Notes
	}

	// Derived fields are always rebuilt from the current inputs, never
	// patched incrementally.
	s.recompute(trade)

	if err := s.db.WithContext(ctx).Save(trade).Error; err != nil {
		return nil, err
	}

	s.logger.Info("Trade updated",
		zap.Uint("trade_id", trade.ID),
		zap.Uint("owner_id", ownerID),
		zap.String("status", string(trade.Status)))

	return trade, nil
}

// Close marks the trade as closed at the given exit price. It is a thin
// wrapper over Update.
func (s *Store) Close(ctx context.Context, ownerID, id uint, exitPrice float64) (*models.Trade, error) {
	closed := models.StatusClosed
	return s.Update(ctx, ownerID, id, TradePatch{
		ExitPrice: &exitPrice,
		Status:    &closed,
	})
}

// Delete permanently removes the trade and its attachment rows. There is
// no soft-delete or undo.
func (s *Store) Delete(ctx context.Context, ownerID, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Trade{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	if err := s.db.WithContext(ctx).Unscoped().
		Where("trade_id = ?", id).
		Delete(&models.Attachment{}).Error; err != nil {
		return err
	}

	s.logger.Info("Trade deleted", zap.Uint("trade_id", id), zap.Uint("owner_id", ownerID))
	return nil
}

// Get retrieves a single trade scoped to its owner.
func (s *Store) Get(ctx context.Context, ownerID, id uint) (*models.Trade, error) {
	var trade models.Trade
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// QueryFilter narrows a trade listing. Zero values mean "no constraint".
type QueryFilter struct {
	From   *time.Time    // inclusive lower bound on OpenedAt
	To     *time.Time    // inclusive upper bound on OpenedAt
	Symbol string        // case-insensitive substring match
	Status models.Status // exact match when set
}

// Query returns the owner's trades matching the filter, ordered by
// OpenedAt ascending with the id as a deterministic tie-breaker, so that
// downstream equity-curve computation is reproducible.
func (s *Store) Query(ctx context.Context, ownerID uint, filter QueryFilter) ([]models.Trade, error) {
	q := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	if filter.From != nil {
		q = q.Where("opened_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("opened_at <= ?", *filter.To)
	}
	if filter.Symbol != "" {
		q = q.Where("LOWER(symbol) LIKE ?", "%"+strings.ToLower(filter.Symbol)+"%")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var trades []models.Trade
	if err := q.Order("opened_at ASC, id ASC").Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// recompute rebuilds every derived field from the trade's inputs. Open
// trades carry zeroed economics.
func (s *Store) recompute(trade *models.Trade) {
	if !trade.IsClosed() || trade.ExitPrice == nil {
		trade.Charges = economics.ChargeBreakdown{}
		trade.GrossPNL = 0
		trade.NetPNL = 0
		return
	}

	exit := *trade.ExitPrice
	trade.Charges = economics.Charges(trade.Quantity, trade.EntryPrice, exit, trade.Instrument, s.schedule)
	trade.GrossPNL = economics.GrossPNL(trade.Quantity, trade.EntryPrice, exit, trade.Direction)
	trade.NetPNL = economics.NetPNL(trade.GrossPNL, trade.Charges.Total)
}
