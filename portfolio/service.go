// Package portfolio has the ledger and valuation business logic
package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"paper-trader/models"
	"paper-trader/quotes"
)

var (
	// ErrValidation reports missing or malformed order input.
	ErrValidation = errors.New("invalid input")
	// ErrInsufficientFunds reports a purchase costing more than the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientShares reports a sale of more shares than held.
	ErrInsufficientShares = errors.New("insufficient shares")
)

// Position is one valued holding.
type Position struct {
	Symbol string
	Name   string
	Shares int64
	Price  decimal.Decimal
	Total  decimal.Decimal
}

// Valuation is a user's cash balance plus every holding at live prices.
type Valuation struct {
	Balance   decimal.Decimal
	Positions []Position
	Overall   decimal.Decimal
}

// Service executes orders against the ledger and values portfolios.
type Service struct {
	db       *gorm.DB
	provider quotes.Provider
}

// NewService is constructor
func NewService(db *gorm.DB, provider quotes.Provider) *Service {
	return &Service{db: db, provider: provider}
}

func validateOrder(symbol string, shares int64) error {
	if symbol == "" {
		return fmt.Errorf("%w: must provide symbol", ErrValidation)
	}
	if shares <= 0 {
		return fmt.Errorf("%w: shares must be a positive whole number", ErrValidation)
	}
	return nil
}

// Buy debits the cost and appends a positive-share row. The conditional
// cash update enforces the non-negative balance in SQL and takes the user
// row lock, so concurrent orders for one user serialize.
func (s *Service) Buy(ctx context.Context, userID uint, symbol string, shares int64) (*quotes.Quote, error) {
	if err := validateOrder(symbol, shares); err != nil {
		return nil, err
	}
	q, err := s.provider.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND cash >= ?", userID, cost).
			Update("cash", gorm.Expr("cash - ?", cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var user models.User
			if err := tx.First(&user, userID).Error; err != nil {
				return err
			}
			short := cost.Sub(user.Cash)
			return fmt.Errorf("%w: short by $%s for this purchase", ErrInsufficientFunds, short.StringFixed(2))
		}
		return tx.Create(&models.Purchase{
			Symbol: q.Symbol,
			Shares: shares,
			Price:  q.Price,
			UserID: userID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Sell credits the proceeds and appends a negative-share row. The cash
// update runs first so the user row lock is held while holdings are
// summed; an oversell rolls the credit back.
func (s *Service) Sell(ctx context.Context, userID uint, symbol string, shares int64) (*quotes.Quote, error) {
	if err := validateOrder(symbol, shares); err != nil {
		return nil, err
	}
	q, err := s.provider.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("cash", gorm.Expr("cash + ?", proceeds))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		held, err := heldShares(tx, userID, q.Symbol)
		if err != nil {
			return err
		}
		if shares > held {
			return fmt.Errorf("%w: you only have %d share(s) of %s", ErrInsufficientShares, held, q.Symbol)
		}
		return tx.Create(&models.Purchase{
			Symbol: q.Symbol,
			Shares: -shares,
			Price:  q.Price,
			UserID: userID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Holdings derives the current position per symbol. Fully liquidated
// symbols drop out.
func (s *Service) Holdings(ctx context.Context, userID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("user_id = ?", userID).
		Select("symbol, SUM(shares) AS shares").
		Group("symbol").
		Having("SUM(shares) > 0").
		Order("symbol").
		Scan(&holdings).Error
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

// Valuate prices every holding at its live quote. Any lookup failure
// fails the whole valuation; no partial result is returned.
func (s *Service) Valuate(ctx context.Context, userID uint) (*Valuation, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	holdings, err := s.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := &Valuation{Balance: user.Cash, Overall: user.Cash}
	for _, h := range holdings {
		q, err := s.provider.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, fmt.Errorf("quote %s: %w", h.Symbol, err)
		}
		total := q.Price.Mul(decimal.NewFromInt(h.Shares))
		v.Positions = append(v.Positions, Position{
			Symbol: h.Symbol,
			Name:   q.Name,
			Shares: h.Shares,
			Price:  q.Price,
			Total:  total,
		})
		v.Overall = v.Overall.Add(total)
	}
	return v, nil
}

// History returns the user's ledger rows, oldest first.
func (s *Service) History(ctx context.Context, userID uint) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("transacted_on, txn_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func heldShares(tx *gorm.DB, userID uint, symbol string) (int64, error) {
	var held int64
	err := tx.Model(&models.Purchase{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Select("COALESCE(SUM(shares), 0)").
		Scan(&held).Error
	return held, err
}
