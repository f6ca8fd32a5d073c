package handler

import (
    "context"
    "errors"
    "strings"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/finance-account-api/internal/apperr"
    "github.com/iliyamo/finance-account-api/internal/model"
    "github.com/iliyamo/finance-account-api/internal/repository"
)

// AccountStore is implemented by repository.AccountRepo.
type AccountStore interface {
    Create(ctx context.Context, a *model.Account) error
    ListByUser(ctx context.Context, userID string) ([]*model.Account, error)
    Delete(ctx context.Context, id, userID string) error
}

type AccountHandler struct {
    Accounts AccountStore
}

func NewAccountHandler(s AccountStore) *AccountHandler { return &AccountHandler{Accounts: s} }

type createAccountReq struct {
    UserID      string  `json:"user_id"`
    AccountName string  `json:"account_name"`
    AccountType string  `json:"account_type"`
    Balance     float64 `json:"balance"`
}

func (h *AccountHandler) Create(c echo.Context) error {
    owner, err := callerID(c)
    if err != nil {
        return err
    }
    var req createAccountReq
    if err := c.Bind(&req); err != nil {
        return apperr.BadRequest("invalid body")
    }
    if err := ownedBy(req.UserID, owner); err != nil {
        return err
    }
    req.AccountName = strings.TrimSpace(req.AccountName)
    req.AccountType = strings.TrimSpace(req.AccountType)
    if req.AccountName == "" || req.AccountType == "" {
        return apperr.BadRequest("account_name and account_type are required")
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    a := &model.Account{
        ID:          uuid.NewString(),
        UserID:      owner,
        AccountName: req.AccountName,
        AccountType: req.AccountType,
        Balance:     req.Balance,
    }
    if err := h.Accounts.Create(ctx, a); err != nil {
        return apperr.Internal(err, "failed to create account")
    }
    return success(c, echo.Map{"message": "account created", "accountId": a.ID})
}

// List serves both GET /accounts and GET /accounts/user/:userId.
func (h *AccountHandler) List(c echo.Context) error {
    owner, err := callerID(c)
    if err != nil {
        return err
    }
    if err := ownedBy(c.Param("userId"), owner); err != nil {
        return err
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    items, err := h.Accounts.ListByUser(ctx, owner)
    if err != nil {
        return apperr.Internal(err, "failed to list accounts")
    }
    return successList(c, items)
}

func (h *AccountHandler) Delete(c echo.Context) error {
    owner, err := callerID(c)
    if err != nil {
        return err
    }
    id := strings.TrimSpace(c.Param("accountId"))
    if id == "" {
        return apperr.BadRequest("account id is required")
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Accounts.Delete(ctx, id, owner); err != nil {
        if errors.Is(err, repository.ErrAccountNotFound) {
            return apperr.NotFound("account not found")
        }
        return apperr.Internal(err, "failed to delete account")
    }
    return success(c, echo.Map{"message": "account deleted"})
}

// ownedBy rejects a request that names a user other than the caller.  An
// empty requested id means the caller.
func ownedBy(requested, caller string) error {
    if requested != "" && requested != caller {
        return apperr.Forbidden("cannot access another user's resources")
    }
    return nil
}
