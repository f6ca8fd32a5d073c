package handler

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/finance-account-api/internal/apperr"
    "github.com/iliyamo/finance-account-api/internal/model"
    "github.com/iliyamo/finance-account-api/internal/repository"
)

// CardStore is implemented by repository.CardRepo.
type CardStore interface {
    Create(ctx context.Context, c *model.Card) error
    ListByUser(ctx context.Context, userID string) ([]*model.Card, error)
    Delete(ctx context.Context, id, userID string) error
}

// AccountOwnership is implemented by repository.AccountRepo.
type AccountOwnership interface {
    Owned(ctx context.Context, id, userID string) (bool, error)
}

type CardHandler struct {
    Cards    CardStore
    Accounts AccountOwnership
}

func NewCardHandler(s CardStore, a AccountOwnership) *CardHandler {
    return &CardHandler{Cards: s, Accounts: a}
}

type createCardReq struct {
    UserID         string  `json:"user_id"`
    AccountID      *string `json:"account_id"`
    CardType       string  `json:"card_type"`
    CardName       string  `json:"card_name"`
    CreditLimit    float64 `json:"credit_limit"`
    CurrentBalance float64 `json:"current_balance"`
    DueDate        string  `json:"due_date"` // YYYY-MM-DD, optional
}

func (h *CardHandler) Create(c echo.Context) error {
    owner, err := callerID(c)
    if err != nil {
        return err
    }
    var req createCardReq
    if err := c.Bind(&req); err != nil {
        return apperr.BadRequest("invalid body")
    }
    if err := ownedBy(req.UserID, owner); err != nil {
        return err
    }
    req.CardName = strings.TrimSpace(req.CardName)
    req.CardType = strings.TrimSpace(req.CardType)
    if req.CardName == "" || req.CardType == "" {
        return apperr.BadRequest("card_name and card_type are required")
    }

    card := &model.Card{
        ID:             uuid.NewString(),
        UserID:         owner,
        CardType:       req.CardType,
        CardName:       req.CardName,
        CreditLimit:    req.CreditLimit,
        CurrentBalance: req.CurrentBalance,
    }
    if d := strings.TrimSpace(req.DueDate); d != "" {
        t, err := time.Parse(model.DueDateLayout, d)
        if err != nil {
            return apperr.BadRequest("due_date must be YYYY-MM-DD")
        }
        card.DueDate = &t
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if req.AccountID != nil && strings.TrimSpace(*req.AccountID) != "" {
        accID := strings.TrimSpace(*req.AccountID)
        ok, err := h.Accounts.Owned(ctx, accID, owner)
        if err != nil {
            return apperr.Internal(err, "failed to create card")
        }
        if !ok {
            return apperr.NotFound("account not found")
        }
        card.AccountID = &accID
    }

    if err := h.Cards.Create(ctx, card); err != nil {
        return apperr.Internal(err, "failed to create card")
    }
    return success(c, echo.Map{"message": "card created", "cardId": card.ID})
}

// List serves both GET /cards and GET /cards/user/:userId.
func (h *CardHandler) List(c echo.Context) error {
    owner, err := callerID(c)
    if err != nil {
        return err
    }
    if err := ownedBy(c.Param("userId"), owner); err != nil {
        return err
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    items, err := h.Cards.ListByUser(ctx, owner)
    if err != nil {
        return apperr.Internal(err, "failed to list cards")
    }
    return successList(c, items)
}

func (h *CardHandler) Delete(c echo.Context) error {
    owner, err := callerID(c)
    if err != nil {
        return err
    }
    id := strings.TrimSpace(c.Param("cardId"))
    if id == "" {
        return apperr.BadRequest("card id is required")
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Cards.Delete(ctx, id, owner); err != nil {
        if errors.Is(err, repository.ErrCardNotFound) {
            return apperr.NotFound("card not found")
        }
        return apperr.Internal(err, "failed to delete card")
    }
    return success(c, echo.Map{"message": "card deleted"})
}
