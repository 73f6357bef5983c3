package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/events"
	"github.com/oceanz0604/gamecafe/internal/model"
	"github.com/oceanz0604/gamecafe/internal/money"
	"github.com/oceanz0604/gamecafe/internal/store"
)

// BillingService — журнал списаний/пополнений. Единственная точка, через
// которую меняется баланс участника.
type BillingService struct {
	gate         *Gate
	members      store.MemberRepo
	transactions store.TransactionRepo
	bus          events.Bus
	logger       *zap.Logger
	now          func() time.Time
}

func NewBillingService(gate *Gate, members store.MemberRepo, transactions store.TransactionRepo, bus events.Bus, logger *zap.Logger) *BillingService {
	return &BillingService{
		gate:         gate,
		members:      members,
		transactions: transactions,
		bus:          bus,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Recharge пополняет баланс участника.
func (s *BillingService) Recharge(ctx context.Context, memberID string, amount float64, method, note string) (*model.Member, *model.Transaction, error) {
	if amount <= 0 {
		return nil, nil, errs.Validationf("recharge amount must be positive, got %v", amount)
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	member, txn, err := s.append(ctx, memberID, model.TransactionRecharge, amount, nil, method, note)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Member recharged",
		zap.String("member_id", member.ID),
		zap.Float64("amount", amount),
		zap.Float64("balance", member.Balance),
	)
	s.bus.Emit(events.MemberRecharged, RechargeEvent{Member: member, Transaction: txn})

	return member, txn, nil
}

// Refund возвращает деньги участнику, опционально со ссылкой на сессию.
func (s *BillingService) Refund(ctx context.Context, memberID string, amount float64, relatedSessionID *string, note string) (*model.Member, *model.Transaction, error) {
	if amount <= 0 {
		return nil, nil, errs.Validationf("refund amount must be positive, got %v", amount)
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	member, txn, err := s.append(ctx, memberID, model.TransactionRefund, amount, relatedSessionID, "", note)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Refund issued",
		zap.String("member_id", member.ID),
		zap.Float64("amount", amount),
	)
	s.bus.Emit(events.MemberUpdated, RechargeEvent{Member: member, Transaction: txn})

	return member, txn, nil
}

// Adjust — ручная корректировка баланса со знаком. Ноль не принимается.
func (s *BillingService) Adjust(ctx context.Context, memberID string, amount float64, note string) (*model.Member, *model.Transaction, error) {
	if amount == 0 {
		return nil, nil, errs.Validationf("adjustment amount must be non-zero")
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	member, txn, err := s.append(ctx, memberID, model.TransactionAdjustment, amount, nil, "", note)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Balance adjusted",
		zap.String("member_id", member.ID),
		zap.Float64("amount", amount),
	)
	s.bus.Emit(events.MemberUpdated, RechargeEvent{Member: member, Transaction: txn})

	return member, txn, nil
}

// append пишет транзакцию и новый баланс. Вызывается с уже захваченным gate.
func (s *BillingService) append(ctx context.Context, memberID string, txnType model.TransactionType, amount float64, relatedSessionID *string, method, note string) (*model.Member, *model.Transaction, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, nil, errs.Storage(err)
	}
	if member == nil {
		return nil, nil, errs.NotFound("member", memberID)
	}

	now := s.now()
	member.Balance = money.Add(member.Balance, amount)
	member.UpdatedAt = now

	txn := &model.Transaction{
		ID:               uuid.NewString(),
		MemberID:         member.ID,
		Type:             txnType,
		Amount:           amount,
		BalanceAfter:     member.Balance,
		RelatedSessionID: relatedSessionID,
		Method:           method,
		Note:             note,
		CreatedAt:        now,
	}

	if err := s.transactions.Append(ctx, txn, member); err != nil {
		return nil, nil, errs.Storage(err)
	}

	return member, txn, nil
}

// settle списывает стоимость завершённой сессии и обновляет накопительную
// статистику участника. Вызывается движком сессий под gate.
func (s *BillingService) settle(ctx context.Context, memberID string, session *model.Session, now time.Time) (*model.Member, *model.Transaction, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, nil, errs.Storage(err)
	}
	if member == nil {
		return nil, nil, errs.NotFound("member", memberID)
	}

	member.Balance = money.Sub(member.Balance, session.Cost)
	member.TotalMinutes += session.DurationMinutes
	member.TotalSpent = money.Add(member.TotalSpent, session.Cost)
	member.SessionsCount++
	member.UpdatedAt = now

	txn := &model.Transaction{
		ID:               uuid.NewString(),
		MemberID:         member.ID,
		Type:             model.TransactionSessionCharge,
		Amount:           -session.Cost,
		BalanceAfter:     member.Balance,
		RelatedSessionID: &session.ID,
		CreatedAt:        now,
	}

	if err := s.transactions.Append(ctx, txn, member); err != nil {
		return nil, nil, errs.Storage(err)
	}

	return member, txn, nil
}

// Transactions — журнал участника.
func (s *BillingService) Transactions(ctx context.Context, memberID string) ([]*model.Transaction, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if member == nil {
		return nil, errs.NotFound("member", memberID)
	}

	txns, err := s.transactions.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	return txns, nil
}

// ReconcileReport — результат сверки баланса по журналу.
type ReconcileReport struct {
	MemberID   string  `json:"member_id"`
	Balance    float64 `json:"balance"`
	LedgerSum  float64 `json:"ledger_sum"`
	Consistent bool    `json:"consistent"`
}

// Reconcile сверяет баланс участника с суммой его транзакций.
func (s *BillingService) Reconcile(ctx context.Context, memberID string) (*ReconcileReport, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if member == nil {
		return nil, errs.NotFound("member", memberID)
	}

	txns, err := s.transactions.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, errs.Storage(err)
	}

	amounts := make([]float64, 0, len(txns))
	for _, txn := range txns {
		amounts = append(amounts, txn.Amount)
	}
	sum := money.Sum(amounts)

	return &ReconcileReport{
		MemberID:   member.ID,
		Balance:    member.Balance,
		LedgerSum:  sum,
		Consistent: sum == member.Balance,
	}, nil
}
